// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"ufo2map/math/vec"
)

const (
	MaxTriPoints = 1024
	MaxTriEdges  = MaxTriPoints * 6
	MaxTriTris   = MaxTriPoints * 2

	onEpsilon = 0.1
	noTri     = -1
)

type triPoint struct {
	origin vec.Vec3
	light  vec.Vec3
}

// triEdge is a directed edge. The inside of its triangle is on the front of
// the plane through the edge that is perpendicular to the face.
type triEdge struct {
	p0, p1 int
	normal vec.Vec3
	dist   float32
	// triangle the edge belongs to or noTri for exterior edges
	tri int
}

func (e *triEdge) distance(p vec.Vec3) float32 {
	return vec.Dot(p, e.normal) - e.dist
}

type triangle struct {
	edges [3]int
}

// Triangulation interpolates the bounced light of a set of coplanar patches.
type Triangulation struct {
	normal vec.Vec3
	points []triPoint
	edges  []triEdge
	tris   []triangle
	// edge index by its directed point pair
	edgeMatrix map[[2]int]int
}

// NewTriangulation returns an empty triangulation on a plane with the
// given normal.
func NewTriangulation(normal vec.Vec3) *Triangulation {
	return &Triangulation{
		normal:     normal,
		edgeMatrix: make(map[[2]int]int),
	}
}

// AddPoint adds a point carrying light. A point at the position of an
// earlier one is ignored.
func (t *Triangulation) AddPoint(origin, light vec.Vec3) error {
	for _, p := range t.points {
		if p.origin == origin {
			return nil
		}
	}
	if len(t.points) == MaxTriPoints {
		return errors.Errorf("too many triangulation points: %d, limit %d", len(t.points)+1, MaxTriPoints)
	}
	t.points = append(t.points, triPoint{origin: origin, light: light})
	return nil
}

func (t *Triangulation) NumPoints() int {
	return len(t.points)
}

// findEdge returns the edge from p0 to p1, creating it and its opposite if
// needed.
func (t *Triangulation) findEdge(p0, p1 int) (int, error) {
	if e, ok := t.edgeMatrix[[2]int{p0, p1}]; ok {
		return e, nil
	}
	if len(t.edges)+2 > MaxTriEdges {
		return 0, errors.Errorf("too many triangulation edges: %d, limit %d", len(t.edges)+2, MaxTriEdges)
	}
	d, _ := vec.Sub(t.points[p1].origin, t.points[p0].origin).Normalize()
	normal := vec.Cross(d, t.normal)
	dist := vec.Dot(t.points[p0].origin, normal)

	e := len(t.edges)
	t.edges = append(t.edges,
		triEdge{p0: p0, p1: p1, normal: normal, dist: dist, tri: noTri},
		triEdge{p0: p1, p1: p0, normal: normal.Scale(-1), dist: -dist, tri: noTri})
	t.edgeMatrix[[2]int{p0, p1}] = e
	t.edgeMatrix[[2]int{p1, p0}] = e + 1
	return e, nil
}

func (t *Triangulation) allocTriangle() (int, error) {
	if len(t.tris) == MaxTriTris {
		return 0, errors.Errorf("too many triangles: %d, limit %d", len(t.tris)+1, MaxTriTris)
	}
	t.tris = append(t.tris, triangle{})
	return len(t.tris) - 1, nil
}

// extend closes edge e with the point in front of it that forms the widest
// angle and continues with the two new outer edges.
func (t *Triangulation) extend(e int) error {
	if t.edges[e].tri != noTri {
		return nil
	}
	edge := t.edges[e]
	p0 := t.points[edge.p0].origin
	p1 := t.points[edge.p1].origin
	best := float32(1.1)
	bestp := -1
	for i, p := range t.points {
		// points on the edge line would form degenerate triangles
		if edge.distance(p.origin) <= onEpsilon {
			continue
		}
		v1, l1 := vec.Sub(p0, p.origin).Normalize()
		v2, l2 := vec.Sub(p1, p.origin).Normalize()
		if l1 == 0 || l2 == 0 {
			continue
		}
		if a := vec.Dot(v1, v2); a < best {
			best = a
			bestp = i
		}
	}
	if bestp < 0 || best >= 1 {
		return nil
	}

	nt, err := t.allocTriangle()
	if err != nil {
		return err
	}
	e1, err := t.findEdge(edge.p1, bestp)
	if err != nil {
		return err
	}
	e2, err := t.findEdge(bestp, edge.p0)
	if err != nil {
		return err
	}
	t.tris[nt].edges = [3]int{e, e1, e2}
	for _, te := range t.tris[nt].edges {
		t.edges[te].tri = nt
	}

	o1, err := t.findEdge(bestp, edge.p1)
	if err != nil {
		return err
	}
	if err := t.extend(o1); err != nil {
		return err
	}
	o2, err := t.findEdge(edge.p0, bestp)
	if err != nil {
		return err
	}
	return t.extend(o2)
}

// Triangulate connects the points, starting with the closest pair.
func (t *Triangulation) Triangulate() error {
	if len(t.points) < 2 {
		return nil
	}
	bp1, bp2 := 0, 1
	bestd := float32(math32.MaxFloat32)
	for i := range t.points {
		for j := i + 1; j < len(t.points); j++ {
			if d := vec.Distance(t.points[i].origin, t.points[j].origin); d < bestd {
				bestd = d
				bp1, bp2 = i, j
			}
		}
	}
	e, err := t.findEdge(bp1, bp2)
	if err != nil {
		return err
	}
	if err := t.extend(e); err != nil {
		return err
	}
	return t.extend(e + 1)
}

func (t *Triangulation) pointInTriangle(p vec.Vec3, tri *triangle) bool {
	for _, e := range tri.edges {
		if t.edges[e].distance(p) < 0 {
			return false
		}
	}
	return true
}

// lerpTriangle blends the light of the triangle corners using the distances
// to two of its edges as coordinates.
func (t *Triangulation) lerpTriangle(p vec.Vec3, tri *triangle) vec.Vec3 {
	e0 := &t.edges[tri.edges[0]]
	e2 := &t.edges[tri.edges[2]]
	p1 := &t.points[e0.p0]
	p2 := &t.points[t.edges[tri.edges[1]].p0]
	p3 := &t.points[e2.p0]

	base := p1.light
	d1 := vec.Sub(p2.light, base)
	d2 := vec.Sub(p3.light, base)

	x := e0.distance(p)
	y := e2.distance(p)
	y1 := e2.distance(p2.origin)
	x2 := e0.distance(p3.origin)
	if math32.Abs(y1) < onEpsilon || math32.Abs(x2) < onEpsilon {
		return base
	}
	c := vec.MA(base, x/x2, d2)
	return vec.MA(c, y/y1, d1)
}

// Sample returns the interpolated light at p.
func (t *Triangulation) Sample(p vec.Vec3) vec.Vec3 {
	switch len(t.points) {
	case 0:
		return vec.Vec3{}
	case 1:
		return t.points[0].light
	}
	for i := range t.points {
		if t.points[i].origin == p {
			return t.points[i].light
		}
	}
	for i := range t.tris {
		if t.pointInTriangle(p, &t.tris[i]) {
			return t.lerpTriangle(p, &t.tris[i])
		}
	}
	for i := range t.edges {
		e := &t.edges[i]
		if e.tri != noTri || e.distance(p) < 0 {
			continue
		}
		a := &t.points[e.p0]
		b := &t.points[e.p1]
		dir, length := vec.Sub(b.origin, a.origin).Normalize()
		if length == 0 {
			continue
		}
		d := vec.Dot(vec.Sub(p, a.origin), dir)
		if d < 0 || d > length {
			continue
		}
		return vec.Lerp(a.light, b.light, d/length)
	}
	best := float32(math32.MaxFloat32)
	nearest := 0
	for i := range t.points {
		if d := vec.DistanceSquared(p, t.points[i].origin); d < best {
			best = d
			nearest = i
		}
	}
	return t.points[nearest].light
}
