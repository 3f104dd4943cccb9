// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"ufo2map/bsp"
	"ufo2map/math/vec"
)

// samples are accepted by a patch if they are within this distance of its
// bounds
const patchSampleTolerance = 16

// samples with less total light are not added to patches
const minSampleLight = 3

// Patch is a piece of a face carrying radiosity energy.
type Patch struct {
	Face   int
	Origin vec.Vec3
	Normal vec.Vec3
	Mins   vec.Vec3
	Maxs   vec.Vec3
	Area   float32

	// TotalLight is the light the patch emits by itself. The light catalog
	// turns it into a surface light and clears it.
	TotalLight vec.Vec3
	// BaseLight is the emission of the face's texture, it stays set
	BaseLight vec.Vec3

	// SampleLight is the direct light that reached the patch, summed over
	// Samples samples until AverageSamples divides it.
	SampleLight vec.Vec3
	Samples     int

	// Bounced is the light reflected onto the patch by other patches
	Bounced vec.Vec3

	// Next patch of the same face, -1 ends the list
	Next int
}

// PatchSet stores all patches and a list of patches per face.
type PatchSet struct {
	Patches  []Patch
	faceHead []int
}

func NewPatchSet(numFaces int) *PatchSet {
	ps := &PatchSet{
		faceHead: make([]int, numFaces),
	}
	for i := range ps.faceHead {
		ps.faceHead[i] = -1
	}
	return ps
}

// Add appends the patch and links it to its face.
func (ps *PatchSet) Add(p Patch) int {
	idx := len(ps.Patches)
	p.Next = ps.faceHead[p.Face]
	ps.Patches = append(ps.Patches, p)
	ps.faceHead[p.Face] = idx
	return idx
}

// First returns the first patch of the face or -1.
func (ps *PatchSet) First(face int) int {
	if face < 0 || face >= len(ps.faceHead) {
		return -1
	}
	return ps.faceHead[face]
}

// AddSample adds color to every patch of face whose bounds contain pos.
// Samples too dark to matter are skipped.
func (ps *PatchSet) AddSample(face int, pos, color vec.Vec3) {
	if color[0]+color[1]+color[2] < minSampleLight {
		return
	}
	for i := ps.First(face); i >= 0; i = ps.Patches[i].Next {
		p := &ps.Patches[i]
		if !p.near(pos) {
			continue
		}
		p.SampleLight = vec.Add(p.SampleLight, color)
		p.Samples++
	}
}

func (p *Patch) near(pos vec.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p.Mins[i] > pos[i]+patchSampleTolerance {
			return false
		}
		if p.Maxs[i] < pos[i]-patchSampleTolerance {
			return false
		}
	}
	return true
}

// AverageSamples turns the summed sample light of every patch of face into
// the mean. It must run exactly once per face, after all samples of the
// face were added.
func (ps *PatchSet) AverageSamples(face int) {
	for i := ps.First(face); i >= 0; i = ps.Patches[i].Next {
		p := &ps.Patches[i]
		if p.Samples == 0 {
			continue
		}
		p.SampleLight = p.SampleLight.Scale(1 / float32(p.Samples))
	}
}

// windingArea returns the area of a convex polygon.
func windingArea(w []vec.Vec3) float32 {
	var total vec.Vec3
	for i := 2; i < len(w); i++ {
		d1 := vec.Sub(w[i-1], w[0])
		d2 := vec.Sub(w[i], w[0])
		total = vec.Add(total, vec.Cross(d1, d2))
	}
	return total.Length() / 2
}

func windingCenter(w []vec.Vec3) vec.Vec3 {
	var c vec.Vec3
	if len(w) == 0 {
		return c
	}
	for _, v := range w {
		c = vec.Add(c, v)
	}
	return c.Scale(1 / float32(len(w)))
}

// MakePatches creates one patch per lit face. Faces with a light emitting
// texture start with TotalLight set to the texture's light value.
func MakePatches(m *bsp.Map, offsets []vec.Vec3) *PatchSet {
	ps := NewPatchSet(len(m.Faces))
	for f := range m.Faces {
		face := &m.Faces[f]
		if face.TexInfo < 0 || face.TexInfo >= len(m.TexInfos) || face.NumEdges < 3 {
			continue
		}
		tex := &m.TexInfos[face.TexInfo]
		if unlit(tex) {
			continue
		}
		w := m.FaceWinding(f)
		for i := range w {
			w[i] = vec.Add(w[i], offsets[f])
		}
		plane := m.FacePlane(f)
		p := Patch{
			Face:   f,
			Normal: plane.Normal,
			Area:   windingArea(w),
		}
		// keep the origin off the face so traces do not start in solid
		p.Origin = vec.MA(windingCenter(w), 1, plane.Normal)
		p.Mins, p.Maxs = vec.ClearBounds()
		for _, v := range w {
			vec.AddToBounds(v, &p.Mins, &p.Maxs)
		}
		if tex.Flags&bsp.SurfLight != 0 && tex.Value > 0 {
			v := float32(tex.Value)
			p.TotalLight = vec.Vec3{v, v, v}
			p.BaseLight = p.TotalLight
		}
		ps.Add(p)
	}
	return ps
}
