// SPDX-License-Identifier: GPL-2.0-or-later

// Package lighting bakes the static lightmaps of a compiled map. Direct
// light is sampled per face, reflected once between patches and the
// reflected light is interpolated over the lightmap samples.
package lighting

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"ufo2map/bsp"
	"ufo2map/conlog"
	"ufo2map/crc"
	"ufo2map/math/vec"
	"ufo2map/tracing"
)

// patches further away from a face's bounds do not take part in its
// triangulation
const TriangulationRadius = 128

// MaxLightQuant is the largest accepted LightQuant, 256 texels per sample
const MaxLightQuant = 8

type faceState uint8

const (
	faceUnprocessed faceState = iota
	faceSampled
	faceTriangulated
	faceFinalized
)

type planeSide struct {
	plane int
	side  int
}

// faceOutput is the lightmap of one face before it is put into the map.
type faceOutput struct {
	data   []byte
	styles [bsp.MaxFaceStyles]byte
}

// Compiler holds the state of one lighting run over a map.
type Compiler struct {
	cfg     Config
	bsp     *bsp.Map
	tree    *tracing.Tree
	patches *PatchSet
	lights  *Catalog
	ambient vec.Vec3

	// brush model origin of every face
	offsets    []vec.Vec3
	planeFaces map[planeSide][]int

	faceLights []*FaceLight
	outputs    []faceOutput
	states     []faceState

	log *slog.Logger
}

// NewCompiler prepares a lighting run. patches may be nil, the map then has
// no surface lights and no bounced light.
func NewCompiler(m *bsp.Map, tree *tracing.Tree, patches *PatchSet, cfg Config) *Compiler {
	id := uuid.Must(uuid.NewV7())
	c := &Compiler{
		bsp:        m,
		tree:       tree,
		patches:    patches,
		planeFaces: make(map[planeSide][]int),
		faceLights: make([]*FaceLight, len(m.Faces)),
		outputs:    make([]faceOutput, len(m.Faces)),
		states:     make([]faceState, len(m.Faces)),
		log:        conlog.Logger().With("compile", id.String()),
	}
	if c.patches == nil {
		c.patches = NewPatchSet(len(m.Faces))
	}
	if cfg.Bounce > 1 {
		conlog.Warnf("only one light bounce is supported, got %d\n", cfg.Bounce)
		cfg.Bounce = 1
	}
	if cfg.Bounce < 0 {
		cfg.Bounce = 0
	}
	if cfg.LightQuant < 0 || cfg.LightQuant > MaxLightQuant {
		conlog.Warnf("invalid light quant %d, using %d\n", cfg.LightQuant, DefaultConfig().LightQuant)
		cfg.LightQuant = DefaultConfig().LightQuant
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	c.cfg = cfg
	c.offsets = modelOffsets(m)
	for f := range m.Faces {
		k := planeSide{m.Faces[f].PlaneNum, m.Faces[f].Side}
		c.planeFaces[k] = append(c.planeFaces[k], f)
	}
	return c
}

// modelOffsets returns the origin of the brush model every face belongs to.
// Brush models with an origin key are compiled around the world origin.
func modelOffsets(m *bsp.Map) []vec.Vec3 {
	offsets := make([]vec.Vec3, len(m.Faces))
	for _, e := range m.Entities {
		name := e.ValueForKey("model")
		if !strings.HasPrefix(name, "*") {
			continue
		}
		if _, ok := e.Property("origin"); !ok {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil || n < 0 || n >= len(m.Models) {
			conlog.Warnf("entity with invalid model %q\n", name)
			continue
		}
		o := e.VectorForKey("origin")
		mo := &m.Models[n]
		for f := mo.FirstFace; f < mo.FirstFace+mo.NumFaces && f < len(offsets); f++ {
			offsets[f] = o
		}
	}
	return offsets
}

func (c *Compiler) Config() Config {
	return c.cfg
}

// Catalog returns the direct lights. It is nil before Run.
func (c *Compiler) Catalog() *Catalog {
	return c.lights
}

// FaceLight returns the direct light of a face after it was sampled.
func (c *Compiler) FaceLight(f int) *FaceLight {
	return c.faceLights[f]
}

// faceTriangulation collects the patches on the plane of face f that are
// close to it.
func (c *Compiler) faceTriangulation(f int) (*Triangulation, error) {
	face := &c.bsp.Faces[f]
	plane := c.bsp.FacePlane(f)
	mins, maxs := vec.ClearBounds()
	for _, v := range c.bsp.FaceWinding(f) {
		vec.AddToBounds(vec.Add(v, c.offsets[f]), &mins, &maxs)
	}
	for i := 0; i < 3; i++ {
		mins[i] -= TriangulationRadius
		maxs[i] += TriangulationRadius
	}
	t := NewTriangulation(plane.Normal)
	for _, other := range c.planeFaces[planeSide{face.PlaneNum, face.Side}] {
		for p := c.patches.First(other); p >= 0; p = c.patches.Patches[p].Next {
			patch := &c.patches.Patches[p]
			if !inBounds(patch.Origin, mins, maxs) {
				continue
			}
			if err := t.AddPoint(patch.Origin, patch.Bounced); err != nil {
				return nil, errors.Wrapf(err, "face %d", f)
			}
		}
	}
	if err := t.Triangulate(); err != nil {
		return nil, errors.Wrapf(err, "face %d", f)
	}
	return t, nil
}

func inBounds(p, mins, maxs vec.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < mins[i] || p[i] > maxs[i] {
			return false
		}
	}
	return true
}

func (c *Compiler) sampleFace(f int) error {
	fl, err := c.BuildFaceLight(f)
	if err != nil {
		return errors.Wrap(err, "direct light")
	}
	c.faceLights[f] = fl
	c.states[f] = faceSampled
	return nil
}

func (c *Compiler) finalFace(f int) error {
	fl := c.faceLights[f]
	if fl == nil {
		return nil
	}
	var tri *Triangulation
	if c.cfg.Bounce > 0 {
		t, err := c.faceTriangulation(f)
		if err != nil {
			return err
		}
		tri = t
		c.states[f] = faceTriangulated
	}
	data, styles := c.FinalizeFace(fl, tri)
	c.outputs[f] = faceOutput{data: data, styles: styles}
	c.states[f] = faceFinalized
	return nil
}

// forEachFace runs fn for every face on a limited number of workers.
func (c *Compiler) forEachFace(ctx context.Context, fn func(f int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Threads)
	for f := range c.bsp.Faces {
		if ctx.Err() != nil {
			break
		}
		f := f // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(f)
		})
	}
	return g.Wait()
}

// Run lights every face and writes the lightmaps into the map.
func (c *Compiler) Run(ctx context.Context) error {
	c.lights = BuildCatalog(c.bsp, c.patches, c.cfg)
	c.ambient = c.cfg.Ambient
	if c.ambient == (vec.Vec3{}) {
		c.ambient = c.lights.Ambient
	}
	c.log.Info("lighting", "faces", len(c.bsp.Faces), "lights", len(c.lights.Lights),
		"patches", len(c.patches.Patches), "threads", c.cfg.Threads)

	start := time.Now()
	if err := c.forEachFace(ctx, c.sampleFace); err != nil {
		return err
	}
	c.log.Debug("direct light done", "took", time.Since(start))
	if err := c.BouncePatches(ctx); err != nil {
		return err
	}
	if err := c.forEachFace(ctx, c.finalFace); err != nil {
		return err
	}
	if err := c.assemble(); err != nil {
		return err
	}
	c.log.Info("lighting done", "bytes", len(c.bsp.LightData),
		"crc", crc.Checksum(c.bsp.LightData), "took", time.Since(start))
	return nil
}

// assemble copies the face lightmaps into the map in face order.
func (c *Compiler) assemble() error {
	size := 0
	for f := range c.outputs {
		size += len(c.outputs[f].data)
	}
	if size > bsp.MaxMapLighting {
		return errors.Errorf("too much light data: %d, limit %d", size, bsp.MaxMapLighting)
	}
	data := make([]byte, 0, size)
	for f := range c.bsp.Faces {
		face := &c.bsp.Faces[f]
		o := &c.outputs[f]
		if c.states[f] != faceFinalized {
			face.LightOfs = -1
			for i := range face.Styles {
				face.Styles[i] = bsp.NoStyle
			}
			continue
		}
		face.LightOfs = int32(len(data))
		face.Styles = o.styles
		data = append(data, o.data...)
	}
	c.bsp.LightData = data
	return nil
}

// LightWorld builds the trace tree and the patches of the map and lights it.
func LightWorld(ctx context.Context, m *bsp.Map, cfg Config) error {
	tree, err := tracing.Build(m, tracing.DefaultLeafPolicy)
	if err != nil {
		return err
	}
	patches := MakePatches(m, modelOffsets(m))
	return NewCompiler(m, tree, patches, cfg).Run(ctx)
}
