// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"ufo2map/math/vec"
)

// Leaf contents. A leaf may carry several of them.
const (
	ContentsSolid       = 0x0001
	ContentsWindow      = 0x0002
	ContentsLadder      = 0x0004
	ContentsWater       = 0x0020
	ContentsLevel1      = 0x0100 // level bits 0x0100 - 0x8000
	ContentsActorClip   = 0x0001_0000
	ContentsPassable    = 0x0002_0000
	ContentsTerrain     = 0x0004_0000
	ContentsLight       = 0x0008_0000
	ContentsOrigin      = 0x0100_0000
	ContentsWeaponClip  = 0x0200_0000
	ContentsDetail      = 0x0800_0000
	ContentsTranslucent = 0x1000_0000
	ContentsStepOn      = 0x4000_0000
)

// Surface flags of a texinfo.
const (
	SurfLight   = 0x0001 // value holds the emitted light
	SurfSlick   = 0x0002
	SurfSky     = 0x0004
	SurfWarp    = 0x0008 // turbulent water, not lit
	SurfTrans33 = 0x0010
	SurfTrans66 = 0x0020
	SurfFlowing = 0x0040
	SurfNoDraw  = 0x0080
)

// Map levels. Every level is a model with its own head node.
const (
	LevelLastVisible = 255
	LevelWeaponClip  = 256
	LevelActorClip   = 257
	LevelStepOn      = 258
	LevelTracing     = 259
	NumLevels        = 260
)

const (
	MaxMapLighting = 0x800000
	MaxLightStyles = 32
	MaxFaceStyles  = 4
	// NoStyle marks an unused entry of Face.Styles
	NoStyle = 255
)

// NoChild marks a missing node child in malformed trees.
const NoChild = int32(-1 << 31)

// Plane types
const (
	PlaneX = iota
	PlaneY
	PlaneZ
	PlaneAnyX
	PlaneAnyY
	PlaneAnyZ
)

type Plane struct {
	Normal vec.Vec3
	Dist   float32
	Type   int
}

// Node of the map tree. Children >= 0 are node numbers, negative children
// are leafs stored as -1-leafnum.
// A node with a negative PlaneNum does not split space, it only groups
// its children (like the roots of the combined level models).
type Node struct {
	PlaneNum  int
	Children  [2]int32
	Mins      vec.Vec3
	Maxs      vec.Vec3
	FirstFace int
	NumFaces  int
}

type Leaf struct {
	Contents uint32
	Mins     vec.Vec3
	Maxs     vec.Vec3
}

// TexInfo maps world positions into texture space:
// s = dot(p, Vecs[0].Pos) + Vecs[0].Offset
type TexInfo struct {
	Vecs    [2]TexInfoPos
	Flags   uint32
	Value   int // light emission for SurfLight
	Texture string
}

type TexInfoPos struct {
	Pos    vec.Vec3
	Offset float32
}

type Face struct {
	PlaneNum  int
	Side      int
	FirstEdge int
	NumEdges  int
	TexInfo   int
	Styles    [MaxFaceStyles]byte
	LightOfs  int32
}

type Edge struct {
	V [2]int
}

// Model of the map. The first NumLevels models are the level models.
type Model struct {
	Mins      vec.Vec3
	Maxs      vec.Vec3
	Origin    vec.Vec3
	HeadNode  int32
	FirstFace int
	NumFaces  int
}

// Map holds everything the light compiler reads from a compiled map.
type Map struct {
	Planes       []Plane
	Nodes        []Node
	Leafs        []Leaf
	Vertexes     []vec.Vec3
	Edges        []Edge
	SurfaceEdges []int32
	TexInfos     []TexInfo
	Faces        []Face
	Models       []Model
	Entities     []*Entity

	LightData []byte
}

// LeafNum converts a negative child reference to the leaf number.
func LeafNum(child int32) int {
	return int(-1 - child)
}

// LeafChild converts a leaf number to a child reference.
func LeafChild(leaf int) int32 {
	return int32(-1 - leaf)
}

// ChildBounds returns the bounding box of a node child.
func (m *Map) ChildBounds(child int32) (vec.Vec3, vec.Vec3, bool) {
	if child == NoChild {
		return vec.Vec3{}, vec.Vec3{}, false
	}
	if child >= 0 {
		if int(child) >= len(m.Nodes) {
			return vec.Vec3{}, vec.Vec3{}, false
		}
		n := &m.Nodes[child]
		return n.Mins, n.Maxs, true
	}
	l := LeafNum(child)
	if l >= len(m.Leafs) {
		return vec.Vec3{}, vec.Vec3{}, false
	}
	return m.Leafs[l].Mins, m.Leafs[l].Maxs, true
}

// FacePlane returns the plane of the face, flipped for back side faces.
func (m *Map) FacePlane(f int) Plane {
	face := &m.Faces[f]
	p := m.Planes[face.PlaneNum]
	if face.Side != 0 {
		p.Normal = p.Normal.Scale(-1)
		p.Dist = -p.Dist
		p.Type = PlaneTypeForNormal(p.Normal)
	}
	return p
}

// FaceVertex returns the i-th vertex of face f.
func (m *Map) FaceVertex(f, i int) vec.Vec3 {
	face := &m.Faces[f]
	se := m.SurfaceEdges[face.FirstEdge+i]
	if se < 0 {
		return m.Vertexes[m.Edges[-se].V[1]]
	}
	return m.Vertexes[m.Edges[se].V[0]]
}

// FaceWinding returns the vertexes of face f in order.
func (m *Map) FaceWinding(f int) []vec.Vec3 {
	face := &m.Faces[f]
	w := make([]vec.Vec3, face.NumEdges)
	for i := range w {
		w[i] = m.FaceVertex(f, i)
	}
	return w
}

// FaceModels returns for every face the model it belongs to.
func (m *Map) FaceModels() []int {
	r := make([]int, len(m.Faces))
	for mi, mo := range m.Models {
		for f := mo.FirstFace; f < mo.FirstFace+mo.NumFaces && f < len(r); f++ {
			r[f] = mi
		}
	}
	return r
}

// WorldSpawn returns the first entity, which must be the worldspawn.
func (m *Map) WorldSpawn() *Entity {
	if len(m.Entities) == 0 {
		return nil
	}
	e := m.Entities[0]
	if n, _ := e.Name(); n != "worldspawn" {
		return nil
	}
	return e
}
