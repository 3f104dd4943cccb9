// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"github.com/chewxy/math32"

	"ufo2map/bsp"
	qmath "ufo2map/math"
	"ufo2map/math/vec"
)

// below this a channel maximum is treated as black
const clampEpsilon = 1e-6

// clampHue scales c down so that no channel exceeds ceiling. All channels
// are scaled by the same factor so the hue does not change. Negative
// channels become 0.
func clampHue(c vec.Vec3, ceiling float32) vec.Vec3 {
	for i := range c {
		if c[i] < 0 || math32.IsNaN(c[i]) {
			c[i] = 0
		}
	}
	m := c.Max()
	if m < clampEpsilon {
		return vec.Vec3{}
	}
	if m > ceiling {
		c = c.Scale(ceiling / m)
	}
	return c
}

func quantize(v float32) byte {
	return byte(qmath.Clamp(0, math32.Floor(v), 255))
}

// orderStyles puts style 0 first, adding an empty one if the face has none.
func orderStyles(fl *FaceLight) []StyleLight {
	styles := make([]StyleLight, 0, len(fl.Styles)+1)
	for _, s := range fl.Styles {
		if s.Style == 0 {
			styles = append(styles, s)
		}
	}
	if len(styles) == 0 {
		styles = append(styles, StyleLight{Style: 0, Light: make([]vec.Vec3, len(fl.Points))})
	}
	for _, s := range fl.Styles {
		if s.Style != 0 {
			styles = append(styles, s)
		}
	}
	if len(styles) > bsp.MaxFaceStyles {
		styles = styles[:bsp.MaxFaceStyles]
	}
	return styles
}

// FinalizeFace turns the face light into lightmap bytes, 3 per sample and
// style, and returns the style table of the face. tri may be nil if there
// is no bounced light.
func (c *Compiler) FinalizeFace(fl *FaceLight, tri *Triangulation) ([]byte, [bsp.MaxFaceStyles]byte) {
	var table [bsp.MaxFaceStyles]byte
	for i := range table {
		table[i] = bsp.NoStyle
	}
	styles := orderStyles(fl)
	ceiling := c.cfg.MaxLight
	if ceiling > 255 || ceiling <= 0 {
		ceiling = 255
	}

	out := make([]byte, 0, len(styles)*len(fl.Points)*3)
	for si, s := range styles {
		table[si] = byte(s.Style)
		for i, p := range fl.Points {
			l := s.Light[i]
			if s.Style == 0 && tri != nil && c.cfg.Bounce > 0 {
				l = vec.Add(l, tri.Sample(p))
			}
			l = vec.Add(l, c.ambient)
			l = clampHue(l.Scale(c.cfg.LightScale), ceiling)
			out = append(out, quantize(l[0]), quantize(l[1]), quantize(l[2]))
		}
	}
	return out, table
}
