// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/chewxy/math32"

	"ufo2map/math/vec"
)

// PlaneTypeForNormal classifies a normal as axial or by its dominant axis.
func PlaneTypeForNormal(n vec.Vec3) int {
	switch {
	case n[0] == 1 || n[0] == -1:
		return PlaneX
	case n[1] == 1 || n[1] == -1:
		return PlaneY
	case n[2] == 1 || n[2] == -1:
		return PlaneZ
	}
	ax := math32.Abs(n[0])
	ay := math32.Abs(n[1])
	az := math32.Abs(n[2])
	if ax >= ay && ax >= az {
		return PlaneAnyX
	}
	if ay >= ax && ay >= az {
		return PlaneAnyY
	}
	return PlaneAnyZ
}

// Distance returns the signed distance of p to the plane.
func (p *Plane) Distance(v vec.Vec3) float32 {
	if p.Type < 3 {
		return v[p.Type]*p.Normal[p.Type] - p.Dist
	}
	return vec.DoublePrecDot(p.Normal, v) - p.Dist
}

// NewPlane builds a plane and classifies its type.
func NewPlane(normal vec.Vec3, dist float32) Plane {
	return Plane{
		Normal: normal,
		Dist:   dist,
		Type:   PlaneTypeForNormal(normal),
	}
}
