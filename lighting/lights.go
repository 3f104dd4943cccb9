// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"strings"

	"github.com/chewxy/math32"

	"ufo2map/bsp"
	"ufo2map/conlog"
	qmath "ufo2map/math"
	"ufo2map/math/vec"
)

const (
	// a patch becomes a light if any channel of its emission reaches this
	directLight        = 3
	defaultEntityLight = 300
	defaultSpotCone    = 10
	// worldspawn ambient is given as a fraction of this
	ambientScale = 128
	// the sun is tested with a ray of this length
	sunDistance = 8192

	angleUp   = -1
	angleDown = -2
)

type LightKind uint8

const (
	PointLight LightKind = iota
	SpotLight
	SurfaceLight
	SunLight
)

func (k LightKind) String() string {
	switch k {
	case PointLight:
		return "point"
	case SpotLight:
		return "spot"
	case SurfaceLight:
		return "surface"
	case SunLight:
		return "sun"
	}
	return "unknown"
}

// DirectLight is a light source visible from the samples.
// Normal is the spot axis, the emitting surface normal or for the sun the
// direction its light travels.
type DirectLight struct {
	Kind      LightKind
	Origin    vec.Vec3
	Normal    vec.Vec3
	Intensity float32
	Color     vec.Vec3
	// StopDot is the cosine of the spot cone half angle
	StopDot float32
	Style   int
}

// Catalog is the list of direct lights of a map. It is read only once built.
type Catalog struct {
	Lights []DirectLight
	// Ambient from the worldspawn, used if the configuration has none
	Ambient vec.Vec3
}

func emits(c vec.Vec3) bool {
	return c[0] >= directLight || c[1] >= directLight || c[2] >= directLight
}

// colorNormalize scales c so the brightest channel is 1 and returns that
// channel's original value.
func colorNormalize(c vec.Vec3) (vec.Vec3, float32) {
	m := c.Max()
	if m <= 0 {
		return vec.Vec3{}, 0
	}
	return c.Scale(1 / m), m
}

// BuildCatalog collects the surface lights from the patches and the light
// entities of the map. Emitting patches lose their TotalLight.
func BuildCatalog(m *bsp.Map, patches *PatchSet, cfg Config) *Catalog {
	c := &Catalog{}
	if patches != nil {
		c.addSurfaceLights(patches, cfg)
	}
	c.addEntityLights(m, cfg)
	c.addSun(m)
	return c
}

func (c *Catalog) addSurfaceLights(patches *PatchSet, cfg Config) {
	for i := range patches.Patches {
		p := &patches.Patches[i]
		if !emits(p.TotalLight) {
			continue
		}
		color, intensity := colorNormalize(p.TotalLight)
		c.Lights = append(c.Lights, DirectLight{
			Kind:      SurfaceLight,
			Origin:    p.Origin,
			Normal:    p.Normal,
			Intensity: intensity * p.Area * cfg.DirectScale,
			Color:     color,
		})
		// sent as light, must not show up again in the final lightmap
		p.TotalLight = vec.Vec3{}
	}
}

func lightColor(e *bsp.Entity, keys ...string) vec.Vec3 {
	for _, k := range keys {
		if _, ok := e.Property(k); !ok {
			continue
		}
		if c, m := colorNormalize(e.VectorForKey(k)); m > 0 {
			return c
		}
	}
	return vec.Vec3{1, 1, 1}
}

func (c *Catalog) addEntityLights(m *bsp.Map, cfg Config) {
	for _, e := range m.Entities {
		name, _ := e.Name()
		if !strings.HasPrefix(name, "light") {
			continue
		}
		l := DirectLight{
			Kind:   PointLight,
			Origin: e.VectorForKey("origin"),
			Color:  lightColor(e, "_color", "color"),
		}
		l.Style = int(e.FloatForKey("_style"))
		if l.Style == 0 {
			l.Style = int(e.FloatForKey("style"))
		}
		if l.Style < 0 || l.Style >= bsp.MaxLightStyles {
			conlog.Warnf("light at %v: bad style %d\n", l.Origin, l.Style)
			l.Style = 0
		}
		intensity := e.FloatForKey("light")
		if intensity == 0 {
			intensity = e.FloatForKey("_light")
		}
		if intensity == 0 {
			intensity = defaultEntityLight
		}
		l.Intensity = intensity * cfg.EntityScale

		target := e.ValueForKey("target")
		_, hasCone := e.Property("_cone")
		if name == "light_spot" || target != "" || hasCone {
			l.Kind = SpotLight
			cone := e.FloatForKey("_cone")
			if cone <= 0 {
				cone = defaultSpotCone
			}
			l.StopDot = math32.Cos(qmath.DegToRad(cone))
			l.Normal = spotDirection(m, e, l.Origin, target)
		}
		c.Lights = append(c.Lights, l)
	}
}

func spotDirection(m *bsp.Map, e *bsp.Entity, origin vec.Vec3, target string) vec.Vec3 {
	down := vec.Vec3{0, 0, -1}
	if target != "" {
		t := bsp.FindEntity(m.Entities, "targetname", target)
		if t == nil {
			conlog.Warnf("light at %v has missing target %q\n", origin, target)
			return down
		}
		d, l := vec.Sub(t.VectorForKey("origin"), origin).Normalize()
		if l == 0 {
			conlog.Warnf("light at %v targets its own origin\n", origin)
			return down
		}
		return d
	}
	if _, ok := e.Property("angles"); ok {
		forward, _, _ := vec.AngleVectors(e.VectorForKey("angles"))
		return forward
	}
	if _, ok := e.Property("angle"); !ok {
		return down
	}
	angle := e.FloatForKey("angle")
	switch angle {
	case angleUp:
		return vec.Vec3{0, 0, 1}
	case angleDown:
		return down
	}
	s, co := math32.Sincos(qmath.DegToRad(angle))
	return vec.Vec3{co, s, 0}
}

// addSun reads the sun and the ambient light of the worldspawn. The
// angles key points from the world toward the sun. The ambient key is in
// 1/128 units of the final light values.
func (c *Catalog) addSun(m *bsp.Map) {
	w := m.WorldSpawn()
	if w == nil {
		return
	}
	if _, ok := w.Property("ambient"); ok {
		c.Ambient = w.VectorForKey("ambient").Scale(ambientScale)
	}
	intensity := w.FloatForKey("light")
	if intensity <= 0 {
		return
	}
	dir := vec.Vec3{0, 0, -1}
	if _, ok := w.Property("angles"); ok {
		forward, _, _ := vec.AngleVectors(w.VectorForKey("angles"))
		dir = forward.Scale(-1)
	}
	c.Lights = append(c.Lights, DirectLight{
		Kind:      SunLight,
		Normal:    dir,
		Intensity: intensity,
		Color:     lightColor(w, "color", "_color"),
	})
}

// contribution returns the unshadowed light scale of l at pos on a surface
// with the given normal and the point to trace against. ok is false if the
// light can not reach the point at all.
func (l *DirectLight) contribution(pos, normal vec.Vec3) (float32, vec.Vec3, bool) {
	if l.Kind == SunLight {
		dot := -vec.Dot(l.Normal, normal)
		if dot <= 0 {
			return 0, pos, false
		}
		return l.Intensity * dot, vec.MA(pos, -sunDistance, l.Normal), true
	}
	delta, dist := vec.Sub(l.Origin, pos).Normalize()
	if dist == 0 {
		return 0, pos, false
	}
	dot := vec.Dot(delta, normal)
	if dot <= 0.001 {
		// behind the sample
		return 0, pos, false
	}
	var scale float32
	switch l.Kind {
	case PointLight:
		scale = (l.Intensity - dist) * dot
	case SurfaceLight:
		dot2 := -vec.Dot(delta, l.Normal)
		if dot2 <= 0.001 {
			return 0, pos, false
		}
		scale = l.Intensity / (dist * dist) * dot * dot2
	case SpotLight:
		dot2 := -vec.Dot(delta, l.Normal)
		if dot2 <= l.StopDot {
			return 0, pos, false
		}
		scale = (l.Intensity - dist) * dot
	}
	if scale <= 0 || math32.IsNaN(scale) {
		return 0, pos, false
	}
	return scale, l.Origin, true
}
