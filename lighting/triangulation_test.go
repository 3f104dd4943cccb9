// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"math/rand"
	"strings"
	"testing"

	"ufo2map/math/vec"
)

var up = vec.Vec3{0, 0, 1}

func gray(v float32) vec.Vec3 {
	return vec.Vec3{v, v, v}
}

func triangulate(t *testing.T, points []vec.Vec3, lights []vec.Vec3) *Triangulation {
	t.Helper()
	tri := NewTriangulation(up)
	for i := range points {
		if err := tri.AddPoint(points[i], lights[i]); err != nil {
			t.Fatalf("AddPoint: %v", err)
		}
	}
	if err := tri.Triangulate(); err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	return tri
}

func TestSampleFewPoints(t *testing.T) {
	tri := NewTriangulation(up)
	if got := tri.Sample(vec.Vec3{1, 2, 3}); got != (vec.Vec3{}) {
		t.Errorf("Sample(empty) = %v, want black", got)
	}
	tri = triangulate(t, []vec.Vec3{{0, 0, 0}}, []vec.Vec3{{1, 2, 3}})
	if got := tri.Sample(vec.Vec3{500, 500, 0}); got != (vec.Vec3{1, 2, 3}) {
		t.Errorf("Sample(single point) = %v, want (1,2,3)", got)
	}
}

func TestSampleEdgeMidpoint(t *testing.T) {
	a := vec.Vec3{10, 20, 30}
	b := vec.Vec3{30, 40, 50}
	tri := triangulate(t, []vec.Vec3{{0, 0, 0}, {64, 0, 0}}, []vec.Vec3{a, b})
	got := tri.Sample(vec.Vec3{32, 0, 0})
	want := vec.Lerp(a, b, 0.5)
	if !near(got, want, 1e-4) {
		t.Errorf("Sample(midpoint) = %v, want %v", got, want)
	}
	got = tri.Sample(vec.Vec3{16, 5, 0})
	if want := vec.Lerp(a, b, 0.25); !near(got, want, 1e-4) {
		t.Errorf("Sample(quarter) = %v, want %v", got, want)
	}
}

func TestSampleInsideTriangle(t *testing.T) {
	tri := triangulate(t,
		[]vec.Vec3{{0, 0, 0}, {64, 0, 0}, {0, 64, 0}},
		[]vec.Vec3{gray(0), gray(30), gray(60)})
	if len(tri.tris) != 1 {
		t.Fatalf("got %d triangles, want 1", len(tri.tris))
	}
	// the light is linear in x and y
	for _, p := range []vec.Vec3{{16, 16, 0}, {1, 1, 0}, {32, 8, 0}} {
		want := gray(30*p[0]/64 + 60*p[1]/64)
		if got := tri.Sample(p); !near(got, want, 1e-3) {
			t.Errorf("Sample(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestSampleOutside(t *testing.T) {
	tri := triangulate(t,
		[]vec.Vec3{{0, 0, 0}, {64, 0, 0}, {0, 64, 0}},
		[]vec.Vec3{gray(0), gray(30), gray(60)})
	// beyond the corner no edge projection matches
	if got := tri.Sample(vec.Vec3{-10, -10, 0}); got != gray(0) {
		t.Errorf("Sample(outside corner) = %v, want nearest %v", got, gray(0))
	}
	// in front of the x axis edge
	if got := tri.Sample(vec.Vec3{32, -10, 0}); !near(got, gray(15), 1e-3) {
		t.Errorf("Sample(outside edge) = %v, want %v", got, gray(15))
	}
}

func TestSampleAtPointIsExact(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var points, lights []vec.Vec3
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			points = append(points, vec.Vec3{float32(x)*32 + r.Float32()*8, float32(y)*32 + r.Float32()*8, 0})
			lights = append(lights, vec.Vec3{r.Float32() * 100, r.Float32() * 100, r.Float32() * 100})
		}
	}
	tri := triangulate(t, points, lights)
	if len(tri.tris) == 0 {
		t.Fatalf("no triangles")
	}
	for i, p := range points {
		if got := tri.Sample(p); got != lights[i] {
			t.Errorf("Sample(%v) = %v, want %v", p, got, lights[i])
		}
	}
}

func TestTriangleEdges(t *testing.T) {
	tri := triangulate(t,
		[]vec.Vec3{{0, 0, 0}, {64, 0, 0}, {0, 64, 0}, {64, 64, 0}},
		[]vec.Vec3{gray(0), gray(0), gray(0), gray(0)})
	if len(tri.tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tri.tris))
	}
	// every edge of a triangle is inside, its reverse is outside or part of
	// the other triangle
	used := map[int]int{}
	for ti, tr := range tri.tris {
		for _, e := range tr.edges {
			if tri.edges[e].tri != ti {
				t.Errorf("edge %d of triangle %d points to triangle %d", e, ti, tri.edges[e].tri)
			}
			used[e]++
		}
	}
	for e, n := range used {
		if n != 1 {
			t.Errorf("edge %d used by %d triangles", e, n)
		}
	}
}

func TestCollinearPoints(t *testing.T) {
	tri := triangulate(t,
		[]vec.Vec3{{0, 0, 0}, {32, 0, 0}, {64, 0, 0}},
		[]vec.Vec3{gray(0), gray(10), gray(20)})
	if len(tri.tris) != 0 {
		t.Errorf("collinear points formed %d triangles", len(tri.tris))
	}
	if got := tri.Sample(vec.Vec3{16, 0, 0}); !near(got, gray(5), 1e-4) {
		t.Errorf("Sample(16,0,0) = %v, want %v", got, gray(5))
	}
}

func TestDuplicatePoints(t *testing.T) {
	tri := triangulate(t,
		[]vec.Vec3{{0, 0, 0}, {0, 0, 0}, {64, 0, 0}},
		[]vec.Vec3{gray(1), gray(2), gray(3)})
	if n := tri.NumPoints(); n != 2 {
		t.Errorf("NumPoints = %d, want 2", n)
	}
}

func TestTooManyPoints(t *testing.T) {
	tri := NewTriangulation(up)
	var err error
	for i := 0; i <= MaxTriPoints && err == nil; i++ {
		err = tri.AddPoint(vec.Vec3{float32(i), 0, 0}, vec.Vec3{})
	}
	if err == nil || !strings.Contains(err.Error(), "too many triangulation points") {
		t.Errorf("AddPoint = %v, want point limit error", err)
	}
}
