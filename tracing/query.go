// SPDX-License-Identifier: GPL-2.0-or-later

package tracing

import (
	"ufo2map/bsp"
	"ufo2map/math/vec"
)

// segments that touch a split plane by less than this stay on one side
const onEpsilon = 0.1

// trace walks the segment start-end through the subtree c.
// It reports whether a blocking leaf was reached and, if wantHit is set,
// the point where the segment entered that leaf. The side of a split that
// contains start is always checked first, so the first block found is the
// nearest one.
func (t *Tree) trace(c Child, start, end vec.Vec3, wantHit bool) (bool, vec.Vec3) {
	for {
		switch c {
		case Pass:
			return false, end
		case Block:
			return true, start
		}
		n := &t.Nodes[c]
		if n.Kind == Unseparated {
			return t.traceBoth(n, start, end, wantHit)
		}
		front := n.distance(start)
		back := n.distance(end)
		if front >= -onEpsilon && back >= -onEpsilon {
			c = n.Children[0]
			continue
		}
		if front < onEpsilon && back < onEpsilon {
			c = n.Children[1]
			continue
		}
		side := 0
		if front < 0 {
			side = 1
		}
		frac := front / (front - back)
		mid := vec.Lerp(start, end, frac)
		if n.Kind == AxisSplit {
			// keep round off from moving the split point off the plane
			mid[n.Axis] = n.Dist
		}
		if blocked, hit := t.trace(n.Children[side], start, mid, wantHit); blocked {
			return true, hit
		}
		c = n.Children[side^1]
		start = mid
	}
}

// traceBoth handles nodes without a plane. Both children see the whole
// segment. If both block, the strictly nearer impact wins, on a tie child 0.
func (t *Tree) traceBoth(n *Node, start, end vec.Vec3, wantHit bool) (bool, vec.Vec3) {
	b0, hit0 := t.trace(n.Children[0], start, end, wantHit)
	if b0 && !wantHit {
		return true, hit0
	}
	b1, hit1 := t.trace(n.Children[1], start, end, wantHit)
	switch {
	case b0 && b1:
		if vec.Nearer(hit1, hit0, start) {
			return true, hit1
		}
		return true, hit0
	case b0:
		return true, hit0
	case b1:
		return true, hit1
	}
	return false, end
}

func (t *Tree) pointBlocked(c Child, p vec.Vec3) bool {
	for !c.IsLeaf() {
		n := &t.Nodes[c]
		if n.Kind == Unseparated {
			return t.pointBlocked(n.Children[0], p) || t.pointBlocked(n.Children[1], p)
		}
		if n.distance(p) >= 0 {
			c = n.Children[0]
		} else {
			c = n.Children[1]
		}
	}
	return c == Block
}

// TestLineNode checks a single subtree.
func (t *Tree) TestLineNode(root Child, start, end vec.Vec3) bool {
	blocked, _ := t.trace(root, start, end, false)
	return blocked
}

// TestLine reports whether the visible map geometry blocks the segment.
func (t *Tree) TestLine(start, end vec.Vec3) bool {
	return t.TestLineMask(start, end, 0)
}

// TestLineMask is TestLine with the extra levels above the last visible one
// included: 1 adds weapon clip, 2 actor clip, 3 step-on.
func (t *Tree) TestLineMask(start, end vec.Vec3, extra int) bool {
	last := bsp.LevelLastVisible + extra
	for _, h := range t.Heads {
		if h.Level > last {
			continue
		}
		if blocked, _ := t.trace(h.Root, start, end, false); blocked {
			return true
		}
	}
	return false
}

// TestLineWithHit returns the obstruction nearest to start over all
// selected levels and whether there was one at all. An unobstructed segment
// returns end.
func (t *Tree) TestLineWithHit(start, end vec.Vec3, extra int) (vec.Vec3, bool) {
	last := bsp.LevelLastVisible + extra
	best := end
	clipped := false
	for _, h := range t.Heads {
		if h.Level > last {
			continue
		}
		blocked, hit := t.trace(h.Root, start, end, true)
		if !blocked {
			continue
		}
		if !clipped || vec.Nearer(hit, best, start) {
			best = hit
			clipped = true
		}
	}
	return best, clipped
}

// TestPointContents reports whether p is inside a step-on volume.
func (t *Tree) TestPointContents(p vec.Vec3) bool {
	for _, h := range t.Heads {
		if h.Level != bsp.LevelStepOn {
			continue
		}
		if t.pointBlocked(h.Root, p) {
			return true
		}
	}
	return false
}

// PointInSolid reports whether p is inside blocking visible geometry.
func (t *Tree) PointInSolid(p vec.Vec3) bool {
	for _, h := range t.Heads {
		if h.Level > bsp.LevelLastVisible {
			continue
		}
		if t.pointBlocked(h.Root, p) {
			return true
		}
	}
	return false
}
