// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"ufo2map/bsp"
	"ufo2map/conlog"
	"ufo2map/math/vec"
)

const (
	MaxFaceSamples = 256 * 256 * 4
	// attempts to move a sample out of solid space
	maxNudges = 6
	// texture units a sample moves toward the face middle per attempt
	nudgeStep = 4
)

// sub sample positions in sample units, the first is the sample itself
var extraSampleOffsets = [5][2]float32{
	{0, 0}, {-0.4, -0.4}, {0.4, -0.4}, {0.4, 0.4}, {-0.4, 0.4},
}

// StyleLight is the light of one style at every sample of a face.
type StyleLight struct {
	Style int
	Light []vec.Vec3
}

// FaceLight is the direct light of one face.
type FaceLight struct {
	Face   int
	Points []vec.Vec3
	Styles []StyleLight

	droppedStyle bool
}

// styleLight returns the buffer for the style, allocating it on first use.
// It returns nil if the face already has the maximum number of styles.
func (fl *FaceLight) styleLight(style int) *StyleLight {
	for i := range fl.Styles {
		if fl.Styles[i].Style == style {
			return &fl.Styles[i]
		}
	}
	if len(fl.Styles) == bsp.MaxFaceStyles {
		return nil
	}
	fl.Styles = append(fl.Styles, StyleLight{
		Style: style,
		Light: make([]vec.Vec3, len(fl.Points)),
	})
	return &fl.Styles[len(fl.Styles)-1]
}

// lightInfo is the scratch data of one face while it is sampled.
type lightInfo struct {
	face     int
	plane    bsp.Plane
	modelOrg vec.Vec3

	worldToTex [2]bsp.TexInfoPos
	texToWorld [2]vec.Vec3
	texOrg     vec.Vec3

	exactMins [2]float32
	exactMaxs [2]float32
	texMins   [2]int
	texSize   [2]int
	step      float32

	faceMid vec.Vec3
}

func (l *lightInfo) calcFaceExtents(m *bsp.Map) error {
	face := &m.Faces[l.face]
	l.exactMins = [2]float32{999999, 999999}
	l.exactMaxs = [2]float32{-99999, -99999}
	for i := 0; i < face.NumEdges; i++ {
		v := m.FaceVertex(l.face, i)
		for j := 0; j < 2; j++ {
			val := vec.Dot(v, l.worldToTex[j].Pos) + l.worldToTex[j].Offset
			if val < l.exactMins[j] {
				l.exactMins[j] = val
			}
			if val > l.exactMaxs[j] {
				l.exactMaxs[j] = val
			}
		}
	}
	for i := 0; i < 2; i++ {
		mins := math32.Floor(l.exactMins[i] / l.step)
		maxs := math32.Ceil(l.exactMaxs[i] / l.step)
		l.texMins[i] = int(mins)
		l.texSize[i] = int(maxs - mins)
	}
	samples := (l.texSize[0] + 1) * (l.texSize[1] + 1)
	if samples > MaxFaceSamples {
		return errors.Errorf("face %d: too many light samples: %d, limit %d (extents %d x %d)",
			l.face, samples, MaxFaceSamples, l.texSize[0], l.texSize[1])
	}
	return nil
}

var errDegenerateTexture = errors.New("degenerate texture axis")

// calcFaceVectors fills the texture to world transformation. The texture
// origin is moved one unit off the face.
func (l *lightInfo) calcFaceVectors() error {
	for i := 0; i < 2; i++ {
		if l.worldToTex[i].Pos.Length() == 0 {
			return errDegenerateTexture
		}
	}
	texNormal, _ := vec.Cross(l.worldToTex[1].Pos, l.worldToTex[0].Pos).Normalize()
	distScale := vec.Dot(texNormal, l.plane.Normal)
	if distScale == 0 {
		conlog.Warnf("face %d: texture axis perpendicular to face\n", l.face)
		distScale = 1
	}
	if distScale < 0 {
		distScale = -distScale
		texNormal = texNormal.Scale(-1)
	}
	distScale = 1 / distScale

	for i := 0; i < 2; i++ {
		axis := l.worldToTex[i].Pos
		length := axis.Length()
		dist := vec.Dot(axis, l.plane.Normal) * distScale
		l.texToWorld[i] = vec.MA(axis, -dist, texNormal).Scale(1 / (length * length))
	}
	for i := 0; i < 3; i++ {
		l.texOrg[i] = -l.worldToTex[0].Offset*l.texToWorld[0][i] - l.worldToTex[1].Offset*l.texToWorld[1][i]
	}
	dist := (vec.Dot(l.texOrg, l.plane.Normal) - l.plane.Dist - 1) * distScale
	l.texOrg = vec.MA(l.texOrg, -dist, texNormal)
	if !l.texOrg.IsFinite() || !l.texToWorld[0].IsFinite() || !l.texToWorld[1].IsFinite() {
		return errDegenerateTexture
	}
	return nil
}

// texPoint returns the world position of the texture coordinates.
func (l *lightInfo) texPoint(us, ut float32) vec.Vec3 {
	p := vec.MA(l.texOrg, us, l.texToWorld[0])
	p = vec.MA(p, ut, l.texToWorld[1])
	return vec.Add(p, l.modelOrg)
}

func nudge(v, mid float32) float32 {
	switch {
	case v > mid:
		v -= nudgeStep
		if v < mid {
			v = mid
		}
	case v < mid:
		v += nudgeStep
		if v > mid {
			v = mid
		}
	}
	return v
}

// samplePoint returns the world position for the texture coordinates. If
// that is inside solid or can not see the face middle it is moved toward
// the middle to keep light from leaking through walls.
func (c *Compiler) samplePoint(l *lightInfo, us, ut float32) vec.Vec3 {
	mids := (l.exactMaxs[0] + l.exactMins[0]) / 2
	midt := (l.exactMaxs[1] + l.exactMins[1]) / 2
	var p vec.Vec3
	for i := 0; i < maxNudges; i++ {
		p = l.texPoint(us, ut)
		if !c.tree.PointInSolid(p) && !c.tree.TestLine(l.faceMid, p) {
			return p
		}
		if i&1 != 0 {
			us = nudge(us, mids)
		} else {
			ut = nudge(ut, midt)
		}
	}
	return p
}

// gatherSampleLight adds the light of every direct light at pos, scaled by
// weight, to sample i of the face light.
func (c *Compiler) gatherSampleLight(fl *FaceLight, i int, pos, normal vec.Vec3, weight float32) {
	for li := range c.lights.Lights {
		l := &c.lights.Lights[li]
		scale, target, ok := l.contribution(pos, normal)
		if !ok {
			continue
		}
		if c.tree.TestLine(pos, target) {
			continue
		}
		sl := fl.styleLight(l.Style)
		if sl == nil {
			if !fl.droppedStyle {
				conlog.Warnf("face %d: more than %d light styles, style %d dropped\n", fl.Face, bsp.MaxFaceStyles, l.Style)
				fl.droppedStyle = true
			}
			continue
		}
		sl.Light[i] = vec.MA(sl.Light[i], scale*weight, l.Color)
	}
}

// unlit reports faces that get no lightmap.
func unlit(tex *bsp.TexInfo) bool {
	return tex.Flags&(bsp.SurfWarp|bsp.SurfSky|bsp.SurfNoDraw) != 0
}

// BuildFaceLight samples the direct light of a face and feeds it into the
// face's patches. It returns nil for faces without lightmap.
func (c *Compiler) BuildFaceLight(f int) (*FaceLight, error) {
	m := c.bsp
	face := &m.Faces[f]
	if face.TexInfo < 0 || face.TexInfo >= len(m.TexInfos) {
		return nil, nil
	}
	tex := &m.TexInfos[face.TexInfo]
	if unlit(tex) || face.NumEdges < 3 {
		return nil, nil
	}

	l := &lightInfo{
		face:       f,
		plane:      m.FacePlane(f),
		modelOrg:   c.offsets[f],
		worldToTex: tex.Vecs,
		step:       float32(int(1) << c.cfg.LightQuant),
	}
	if err := l.calcFaceVectors(); err != nil {
		conlog.Warnf("face %d: %v, not lit\n", f, err)
		return nil, nil
	}
	if err := l.calcFaceExtents(m); err != nil {
		return nil, err
	}
	l.faceMid = l.texPoint((l.exactMaxs[0]+l.exactMins[0])/2, (l.exactMaxs[1]+l.exactMins[1])/2)

	offsets := extraSampleOffsets[:1]
	if c.cfg.ExtraSamples {
		offsets = extraSampleOffsets[:]
	}
	weight := 1 / float32(len(offsets))

	width := l.texSize[0] + 1
	height := l.texSize[1] + 1
	fl := &FaceLight{
		Face:   f,
		Points: make([]vec.Vec3, width*height),
	}
	// style 0 always comes first
	fl.styleLight(0)
	starts := float32(l.texMins[0]) * l.step
	startt := float32(l.texMins[1]) * l.step
	for t := 0; t < height; t++ {
		for s := 0; s < width; s++ {
			i := t*width + s
			us := starts + float32(s)*l.step
			ut := startt + float32(t)*l.step
			for k, o := range offsets {
				p := c.samplePoint(l, us+o[0]*l.step, ut+o[1]*l.step)
				if k == 0 {
					fl.Points[i] = p
				}
				c.gatherSampleLight(fl, i, p, l.plane.Normal, weight)
			}
		}
	}

	if c.cfg.Bounce > 0 && c.patches != nil {
		for i, p := range fl.Points {
			var total vec.Vec3
			for _, sl := range fl.Styles {
				total = vec.Add(total, sl.Light[i])
			}
			c.patches.AddSample(f, p, total)
		}
		c.patches.AverageSamples(f)
	}

	// the emitted light was sent out as surface lights, the face itself
	// still shows it
	if p := c.patches.First(f); p >= 0 {
		if base := c.patches.Patches[p].BaseLight; emits(base) {
			sl := fl.Styles[0].Light
			for i := range sl {
				sl[i] = vec.Add(sl[i], base)
			}
		}
	}
	return fl, nil
}
