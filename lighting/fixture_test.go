// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"testing"

	"ufo2map/bsp"
	"ufo2map/math/vec"
	"ufo2map/tracing"
)

const (
	leafEmpty = iota
	leafSolid
)

// floorMap has a single upward facing square face of the given size at
// z=0 with everything below it solid. If slab is set the space between
// z=50 and z=60 is solid as well.
func floorMap(size float32, slab bool) *bsp.Map {
	m := &bsp.Map{
		Planes: []bsp.Plane{
			bsp.NewPlane(vec.Vec3{0, 0, 1}, 0),
			bsp.NewPlane(vec.Vec3{0, 0, 1}, 50),
			bsp.NewPlane(vec.Vec3{0, 0, 1}, 60),
		},
		Leafs: []bsp.Leaf{
			leafEmpty: {Contents: 0},
			leafSolid: {Contents: bsp.ContentsSolid},
		},
		Vertexes: []vec.Vec3{
			{0, 0, 0}, {size, 0, 0}, {size, size, 0}, {0, size, 0},
		},
		Edges:        []bsp.Edge{{}, {V: [2]int{0, 1}}, {V: [2]int{1, 2}}, {V: [2]int{2, 3}}, {V: [2]int{3, 0}}},
		SurfaceEdges: []int32{1, 2, 3, 4},
		TexInfos: []bsp.TexInfo{{
			Vecs: [2]bsp.TexInfoPos{{Pos: vec.Vec3{1, 0, 0}}, {Pos: vec.Vec3{0, 1, 0}}},
		}},
		Faces: []bsp.Face{{PlaneNum: 0, NumEdges: 4}},
		Entities: []*bsp.Entity{
			bsp.EntityFromProperties(map[string]string{"classname": "worldspawn"}),
		},
	}
	if slab {
		m.Nodes = []bsp.Node{
			{PlaneNum: 0, Children: [2]int32{1, bsp.LeafChild(leafSolid)}},
			{PlaneNum: 1, Children: [2]int32{2, bsp.LeafChild(leafEmpty)}},
			{PlaneNum: 2, Children: [2]int32{bsp.LeafChild(leafEmpty), bsp.LeafChild(leafSolid)}},
		}
	} else {
		m.Nodes = []bsp.Node{
			{PlaneNum: 0, Children: [2]int32{bsp.LeafChild(leafEmpty), bsp.LeafChild(leafSolid)}},
		}
	}
	m.Models = []bsp.Model{{HeadNode: 0, FirstFace: 0, NumFaces: 1}}
	return m
}

func addLight(m *bsp.Map, props map[string]string) {
	m.Entities = append(m.Entities, bsp.EntityFromProperties(props))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Threads = 2
	// 4 texels per sample
	cfg.LightQuant = 2
	return cfg
}

// newTestCompiler returns a compiler for m with its catalog built, ready to
// sample faces.
func newTestCompiler(t *testing.T, m *bsp.Map, cfg Config) *Compiler {
	t.Helper()
	tree, err := tracing.Build(m, tracing.DefaultLeafPolicy)
	if err != nil {
		t.Fatalf("tracing.Build: %v", err)
	}
	c := NewCompiler(m, tree, MakePatches(m, modelOffsets(m)), cfg)
	c.lights = BuildCatalog(m, c.patches, c.cfg)
	c.ambient = c.cfg.Ambient
	return c
}

func near(a, b vec.Vec3, eps float32) bool {
	return vec.Distance(a, b) <= eps
}
