// SPDX-License-Identifier: GPL-2.0-or-later

// Package tracing builds the trace tree, a compact binary tree made from the
// map tree that only answers "does something block this segment" style
// questions. It is used by the light compiler and by line of sight checks.
package tracing

import (
	"github.com/pkg/errors"

	"ufo2map/bsp"
	"ufo2map/math/vec"
)

const MaxTraceNodes = 1 << 20

// Child is either a node index (>= 0) or one of the leaf markers.
type Child int32

const (
	Pass  Child = -1
	Block Child = -2
)

func (c Child) IsLeaf() bool {
	return c < 0
}

type SplitKind uint8

const (
	// AxisSplit splits along Axis at Dist
	AxisSplit SplitKind = iota
	// GeneralSplit splits along Normal at Dist
	GeneralSplit
	// Unseparated has no plane, both children need to be visited
	Unseparated
)

// Node of the trace tree. Points with a distance >= 0 to the plane
// belong to Children[0].
type Node struct {
	Kind     SplitKind
	Axis     int
	Normal   vec.Vec3
	Dist     float32
	Children [2]Child
}

// distance returns the signed distance of p to the split plane.
// Must not be called for Unseparated nodes.
func (n *Node) distance(p vec.Vec3) float32 {
	if n.Kind == AxisSplit {
		return p[n.Axis] - n.Dist
	}
	return vec.DoublePrecDot(n.Normal, p) - n.Dist
}

// LevelHead is the root of one map level inside the shared node array.
type LevelHead struct {
	Level int
	Root  Child
}

// LeafPolicy decides which leafs block. A leaf blocks if it has any of
// the Needed contents and none of the Forbidden ones.
type LeafPolicy struct {
	Needed    uint32
	Forbidden uint32
}

var DefaultLeafPolicy = LeafPolicy{
	Needed:    bsp.ContentsSolid | bsp.ContentsWeaponClip | bsp.ContentsActorClip | bsp.ContentsStepOn,
	Forbidden: bsp.ContentsPassable,
}

func (p LeafPolicy) classify(contents uint32) Child {
	if contents&p.Needed != 0 && contents&p.Forbidden == 0 {
		return Block
	}
	return Pass
}

// Tree holds the nodes of all levels. It must not be changed after it was
// built, queries do not lock.
type Tree struct {
	Nodes  []Node
	Heads  []LevelHead
	policy LeafPolicy
	limit  int
}

func NewTree(policy LeafPolicy) *Tree {
	return &Tree{
		policy: policy,
		limit:  MaxTraceNodes,
	}
}

// Build creates the trace tree for every level model of the map.
// Levels that can not block anything get no head.
func Build(m *bsp.Map, policy LeafPolicy) (*Tree, error) {
	t := NewTree(policy)
	for level, mo := range m.Models {
		if level >= bsp.NumLevels || level == bsp.LevelTracing {
			break
		}
		if mo.HeadNode == bsp.NoChild {
			continue
		}
		root, err := t.BuildLevel(level, m, mo.HeadNode)
		if err != nil {
			return nil, err
		}
		if root == Pass {
			continue
		}
		t.Heads = append(t.Heads, LevelHead{Level: level, Root: root})
	}
	return t, nil
}

// BuildLevel converts the subtree starting at headnode and returns its root.
// The caller decides whether to register it as a level head.
func (t *Tree) BuildLevel(level int, m *bsp.Map, headnode int32) (Child, error) {
	root, err := t.build(m, headnode)
	if err != nil {
		return Pass, errors.Wrapf(err, "level %d", level)
	}
	return root, nil
}

func (t *Tree) alloc() (int, error) {
	if len(t.Nodes) >= t.limit {
		return 0, errors.Errorf("too many trace nodes: %d, limit %d", len(t.Nodes)+1, t.limit)
	}
	t.Nodes = append(t.Nodes, Node{})
	return len(t.Nodes) - 1, nil
}

func (t *Tree) build(m *bsp.Map, num int32) (Child, error) {
	if num == bsp.NoChild {
		// a missing side must never turn into an invisible wall
		return Block, nil
	}
	if num < 0 {
		l := bsp.LeafNum(num)
		if l >= len(m.Leafs) {
			return Pass, errors.Errorf("bad leaf number %d", l)
		}
		return t.policy.classify(m.Leafs[l].Contents), nil
	}
	if int(num) >= len(m.Nodes) {
		return Pass, errors.Errorf("bad node number %d", num)
	}
	src := &m.Nodes[num]
	idx, err := t.alloc()
	if err != nil {
		return Pass, err
	}
	var n Node
	if src.PlaneNum >= 0 {
		p := &m.Planes[src.PlaneNum]
		n.Normal = p.Normal
		n.Dist = p.Dist
		n.Kind = GeneralSplit
		if p.Type < 3 && p.Normal[p.Type] == 1 {
			n.Kind = AxisSplit
			n.Axis = p.Type
		}
		n.Children = [2]Child{Pass, Pass}
		for i := 0; i < 2; i++ {
			c, err := t.build(m, src.Children[i])
			if err != nil {
				return Pass, err
			}
			n.Children[i] = c
		}
		t.Nodes[idx] = n
		return Child(idx), nil
	}

	// grouping node: look for an axis where the children do not overlap
	n = separate(m, src.Children)
	for i := 0; i < 2; i++ {
		c, err := t.build(m, src.Children[n.Children[i]])
		if err != nil {
			return Pass, err
		}
		n.Children[i] = c
	}
	t.Nodes[idx] = n
	return Child(idx), nil
}

// separate returns a node whose Children hold the indexes 0/1 into the
// source children, ordered front first.
func separate(m *bsp.Map, children [2]int32) Node {
	n := Node{Kind: Unseparated, Children: [2]Child{0, 1}}
	min0, max0, ok0 := m.ChildBounds(children[0])
	min1, max1, ok1 := m.ChildBounds(children[1])
	if !ok0 || !ok1 {
		return n
	}
	for axis := 0; axis < 3; axis++ {
		if max0[axis] <= min1[axis] {
			return Node{
				Kind:     AxisSplit,
				Axis:     axis,
				Dist:     (max0[axis] + min1[axis]) / 2,
				Children: [2]Child{1, 0},
			}
		}
		if max1[axis] <= min0[axis] {
			return Node{
				Kind:     AxisSplit,
				Axis:     axis,
				Dist:     (max1[axis] + min0[axis]) / 2,
				Children: [2]Child{0, 1},
			}
		}
	}
	return n
}
