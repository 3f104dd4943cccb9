// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"strings"
	"testing"

	"ufo2map/bsp"
	"ufo2map/conlog"
	"ufo2map/cvar"
	"ufo2map/cvars"
	"ufo2map/math/vec"
)

func TestBoolInt(t *testing.T) {
	var flags flag.FlagSet
	flags.Init("test", flag.ContinueOnError)
	a := boolInt{false, 4}
	b := boolInt{false, 5}
	c := boolInt{true, 6}
	d := boolInt{false, 7}
	e := boolInt{false, 8}
	f := boolInt{true, 9}
	flags.Var(&a, "a", "usage")
	flags.Var(&b, "b", "usage")
	flags.Var(&c, "c", "usage")
	flags.Var(&d, "d", "usage")
	flags.Var(&e, "e", "usage")
	flags.Var(&f, "f", "usage")
	if err := flags.Parse([]string{"-a", "-b=3", "-e=true", "-f=false"}); err != nil {
		t.Error(err)
	}
	if a.set != true {
		t.Errorf("a.set = %v", a.set)
	}
	if b.set != true {
		t.Errorf("b.set = %v", b.set)
	}
	if c.set != true {
		t.Errorf("c.set = %v", c.set)
	}
	if d.set != false {
		t.Errorf("d.set = %v", d.set)
	}
	if e.set != true {
		t.Errorf("e.set = %v", e.set)
	}
	if f.set != false {
		t.Errorf("f.set = %v", f.set)
	}
	if a.num != 4 {
		t.Errorf("a.num = %v", a.num)
	}
	if b.num != 3 {
		t.Errorf("b.num = %v", b.num)
	}
	if c.num != 6 {
		t.Errorf("c.num = %v", c.num)
	}
	if d.num != 7 {
		t.Errorf("d.num = %v", d.num)
	}
}

func TestParse(t *testing.T) {
	defer cvar.ResetAll()
	args, err := Parse([]string{
		"-ambient", "0.1,0.2,0.3",
		"-bounce", "0",
		"-extra",
		"-quant=8",
		"-maxlight", "200",
		"-v",
		"maps/base.bsp",
	}, io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(args) != 1 || args[0] != "maps/base.bsp" {
		t.Errorf("args = %v", args)
	}
	cfg := cvars.LightConfig()
	if cfg.Ambient != (vec.Vec3{0.1, 0.2, 0.3}) {
		t.Errorf("Ambient = %v", cfg.Ambient)
	}
	if cfg.Bounce != 0 || !cfg.ExtraSamples || cfg.LightQuant != 8 || cfg.MaxLight != 200 {
		t.Errorf("config = %+v", cfg)
	}
	if !conlog.Verbose() {
		t.Errorf("-v did not enable verbose output")
	}
}

func TestParseErrors(t *testing.T) {
	defer cvar.ResetAll()
	for _, args := range [][]string{
		{"-scale", "bright"},
		{"-ambient", "1 2 3 4"},
		{"-ambient", "1 x"},
		{"-extra=maybe"},
		{"-nosuchflag"},
	} {
		if _, err := Parse(args, io.Discard); err == nil {
			t.Errorf("Parse(%q) succeeded", args)
		}
	}
}

// floorMap has a single upward facing 128x128 face at z=0 with everything
// below it solid.
func floorMap() *bsp.Map {
	return &bsp.Map{
		Planes: []bsp.Plane{bsp.NewPlane(vec.Vec3{0, 0, 1}, 0)},
		Leafs: []bsp.Leaf{
			{Contents: 0},
			{Contents: bsp.ContentsSolid},
		},
		Nodes: []bsp.Node{
			{PlaneNum: 0, Children: [2]int32{bsp.LeafChild(0), bsp.LeafChild(1)}},
		},
		Models:       []bsp.Model{{HeadNode: 0, FirstFace: 0, NumFaces: 1}},
		Vertexes:     []vec.Vec3{{0, 0, 0}, {128, 0, 0}, {128, 128, 0}, {0, 128, 0}},
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
}

func TestRun(t *testing.T) {
	defer cvar.ResetAll()
	var buf bytes.Buffer
	conlog.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer conlog.SetLogger(nil)

	m := floorMap()
	args, err := Run(context.Background(), m, []string{
		"-ambient", "10 20 30",
		"-bounce", "0",
		"-quant", "3",
		"-threads", "2",
		"maps/floor.bsp",
	}, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(args) != 1 || args[0] != "maps/floor.bsp" {
		t.Errorf("args = %v", args)
	}
	// 8 texels per sample on a 128 unit face
	if len(m.LightData) != 17*17*3 {
		t.Fatalf("got %d bytes of light data, want %d", len(m.LightData), 17*17*3)
	}
	for i := 0; i < len(m.LightData); i += 3 {
		if m.LightData[i] != 10 || m.LightData[i+1] != 20 || m.LightData[i+2] != 30 {
			t.Fatalf("sample %d = %v, want the ambient light", i/3, m.LightData[i:i+3])
		}
	}
	for _, want := range []string{`ambient \"10 20 30\"`, `quant \"3\"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("changed settings not printed, missing %s in %q", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), `threads \"2\"`) {
		t.Errorf("threads is not a notify setting but was printed")
	}
}

func TestRunBadOption(t *testing.T) {
	defer cvar.ResetAll()
	m := floorMap()
	if _, err := Run(context.Background(), m, []string{"-bounce", "many"}, io.Discard); err == nil {
		t.Errorf("Run with a bad option succeeded")
	}
	if m.LightData != nil {
		t.Errorf("the map was lit after an option error")
	}
}
