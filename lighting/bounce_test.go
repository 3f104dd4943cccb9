// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"context"
	"testing"

	"github.com/chewxy/math32"

	"ufo2map/bsp"
	"ufo2map/math/vec"
	"ufo2map/tracing"
)

func bounceCompiler(tree *tracing.Tree, cfg Config) *Compiler {
	m := &bsp.Map{Faces: make([]bsp.Face, 2)}
	ps := NewPatchSet(2)
	ps.Add(Patch{Face: 0, Origin: vec.Vec3{0, 0, 0}, Normal: vec.Vec3{0, 0, 1}, Area: 64, SampleLight: gray(100)})
	ps.Add(Patch{Face: 1, Origin: vec.Vec3{0, 0, 10}, Normal: vec.Vec3{0, 0, -1}, Area: 64})
	return NewCompiler(m, tree, ps, cfg)
}

func TestBouncePatches(t *testing.T) {
	c := bounceCompiler(tracing.NewTree(tracing.DefaultLeafPolicy), testConfig())
	if err := c.BouncePatches(context.Background()); err != nil {
		t.Fatalf("BouncePatches: %v", err)
	}
	ff := 64 / (math32.Pi*100 + 64) * c.cfg.Reflectivity
	if got, want := c.patches.Patches[1].Bounced, gray(100*ff); !near(got, want, 1e-3) {
		t.Errorf("bounced onto the ceiling = %v, want %v", got, want)
	}
	// the ceiling has no light to give back
	if got := c.patches.Patches[0].Bounced; got != (vec.Vec3{}) {
		t.Errorf("bounced onto the floor = %v, want black", got)
	}
}

func TestBounceOccluded(t *testing.T) {
	tree := &tracing.Tree{
		Nodes: []tracing.Node{{Kind: tracing.AxisSplit, Axis: 2, Dist: 5, Children: [2]tracing.Child{tracing.Pass, tracing.Block}}},
		Heads: []tracing.LevelHead{{Level: 0, Root: 0}},
	}
	c := bounceCompiler(tree, testConfig())
	if err := c.BouncePatches(context.Background()); err != nil {
		t.Fatalf("BouncePatches: %v", err)
	}
	if got := c.patches.Patches[1].Bounced; got != (vec.Vec3{}) {
		t.Errorf("bounced through a wall = %v", got)
	}
}

func TestBounceDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Bounce = 0
	c := bounceCompiler(tracing.NewTree(tracing.DefaultLeafPolicy), cfg)
	if err := c.BouncePatches(context.Background()); err != nil {
		t.Fatalf("BouncePatches: %v", err)
	}
	if got := c.patches.Patches[1].Bounced; got != (vec.Vec3{}) {
		t.Errorf("bounce count 0 bounced %v", got)
	}
}

func TestBounceCountClamped(t *testing.T) {
	cfg := testConfig()
	cfg.Bounce = 8
	c := bounceCompiler(tracing.NewTree(tracing.DefaultLeafPolicy), cfg)
	if c.Config().Bounce != 1 {
		t.Errorf("Bounce = %d, want 1", c.Config().Bounce)
	}
}
