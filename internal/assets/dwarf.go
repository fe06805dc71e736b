package assets

import (
	"github.com/Faultbox/dwarfhorde/internal/engine/instancing"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// binding returns the bone indices and weights for a vertex position.
type binding func(p math.Vec3) (indices, weights [4]float32)

func rigid(b int) binding {
	return func(math.Vec3) (indices, weights [4]float32) {
		return [4]float32{float32(b)}, [4]float32{1}
	}
}

// blend fades from bone lo at height y0 to bone hi at height y1.
func blend(lo, hi int, y0, y1 float32) binding {
	return func(p math.Vec3) (indices, weights [4]float32) {
		w := math.Clamp((p.Y-y0)/(y1-y0), 0, 1)
		return [4]float32{float32(lo), float32(hi)}, [4]float32{1 - w, w}
	}
}

// boxFaces lists each face normal with two tangents whose cross product is
// the normal, so corners walked (-,-) (+,-) (+,+) (-,+) wind outward.
var boxFaces = [6][3]math.Vec3{
	{{X: 1}, {Y: 1}, {Z: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {Z: 1}, {X: 1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {Y: 1}, {X: 1}},
}

var boxCorners = [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// meshBuilder appends boxes to a geometry, grouping them into sub-meshes.
// Indices are relative to each sub-mesh's base vertex.
type meshBuilder struct {
	g          *instancing.Geometry
	baseVertex int
	startIndex int
}

func newMeshBuilder(name string, tint [3]float32) *meshBuilder {
	return &meshBuilder{g: &instancing.Geometry{Name: name, Tint: tint}}
}

func (b *meshBuilder) box(lo, hi math.Vec3, bind binding) *meshBuilder {
	center := lo.Add(hi).Scale(0.5)
	half := hi.Sub(lo).Scale(0.5)

	for _, face := range boxFaces {
		n, u, v := face[0], face[1], face[2]
		first := len(b.g.Vertices) - b.baseVertex
		for _, c := range boxCorners {
			dir := n.Add(u.Scale(c[0])).Add(v.Scale(c[1]))
			pos := math.Vec3{
				X: center.X + dir.X*half.X,
				Y: center.Y + dir.Y*half.Y,
				Z: center.Z + dir.Z*half.Z,
			}
			indices, weights := bind(pos)
			b.g.Vertices = append(b.g.Vertices, instancing.Vertex{
				Position:    [3]float32{pos.X, pos.Y, pos.Z},
				Normal:      [3]float32{n.X, n.Y, n.Z},
				TexCoord:    [2]float32{(c[0] + 1) / 2, (c[1] + 1) / 2},
				BoneIndices: indices,
				BoneWeights: weights,
			})
		}
		for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
			b.g.Indices = append(b.g.Indices, uint16(first+i))
		}
	}
	return b
}

// subMesh closes the boxes added since the last call into a sub-mesh.
func (b *meshBuilder) subMesh() *meshBuilder {
	count := len(b.g.Indices) - b.startIndex
	if count == 0 {
		return b
	}
	b.g.SubMeshes = append(b.g.SubMeshes, instancing.SubMesh{
		BaseVertex:     b.baseVertex,
		StartIndex:     b.startIndex,
		PrimitiveCount: count / 3,
	})
	b.baseVertex = len(b.g.Vertices)
	b.startIndex = len(b.g.Indices)
	return b
}

func (b *meshBuilder) build() *instancing.Geometry {
	b.subMesh()
	return b.g
}

func v3(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

var (
	skinTint  = [3]float32{0.93, 0.72, 0.58}
	ironTint  = [3]float32{0.55, 0.57, 0.62}
	beardTint = [3]float32{0.62, 0.32, 0.12}
)

func head(name string, tint [3]float32, extra func(b *meshBuilder)) *instancing.Geometry {
	b := newMeshBuilder(name, tint)
	b.box(v3(-0.18, 1.5, -0.18), v3(0.18, 1.86, 0.18), rigid(BoneHead)).subMesh()
	extra(b)
	return b.build()
}

func body(name string, tint [3]float32, halfWidth, depth float32, extra func(b *meshBuilder)) *instancing.Geometry {
	b := newMeshBuilder(name, tint)
	b.box(v3(-halfWidth, 0.8, -depth), v3(halfWidth, 1.5, depth), blend(BoneHips, BoneSpine, 0.8, 1.2)).subMesh()
	b.box(v3(-0.46, 0.86, -0.08), v3(-0.3, 1.46, 0.08), rigid(BoneLeftArm)).
		box(v3(0.3, 0.86, -0.08), v3(0.46, 1.46, 0.08), rigid(BoneRightArm)).subMesh()
	if extra != nil {
		extra(b)
	}
	return b.build()
}

func legs(name string, tint [3]float32, extra func(b *meshBuilder)) *instancing.Geometry {
	b := newMeshBuilder(name, tint)
	b.box(v3(-0.27, 0, -0.12), v3(-0.03, 0.82, 0.12), rigid(BoneLeftLeg)).subMesh()
	b.box(v3(0.03, 0, -0.12), v3(0.27, 0.82, 0.12), rigid(BoneRightLeg)).subMesh()
	if extra != nil {
		extra(b)
	}
	return b.build()
}

// DwarfParts builds the nine dwarf mesh parts in model order: heads at 0-2,
// bodies at 3, 7 and 8, legs at 4-6.
func DwarfParts() []*instancing.Geometry {
	return []*instancing.Geometry{
		head("head_bald", skinTint, func(b *meshBuilder) {
			b.box(v3(-0.04, 1.62, 0.18), v3(0.04, 1.7, 0.26), rigid(BoneHead))
		}),
		head("head_helmet", ironTint, func(b *meshBuilder) {
			b.box(v3(-0.21, 1.78, -0.21), v3(0.21, 1.95, 0.21), rigid(BoneHead)).
				box(v3(-0.03, 1.95, -0.03), v3(0.03, 2.08, 0.03), rigid(BoneHead))
		}),
		head("head_bearded", beardTint, func(b *meshBuilder) {
			b.box(v3(-0.16, 1.32, 0.1), v3(0.16, 1.6, 0.24), blend(BoneSpine, BoneHead, 1.35, 1.55))
		}),
		body("body_tunic", [3]float32{0.2, 0.45, 0.2}, 0.3, 0.2, nil),
		legs("legs_plain", [3]float32{0.4, 0.3, 0.2}, nil),
		legs("legs_boots", [3]float32{0.25, 0.2, 0.15}, func(b *meshBuilder) {
			b.box(v3(-0.29, 0, -0.14), v3(-0.01, 0.25, 0.2), rigid(BoneLeftLeg)).
				box(v3(0.01, 0, -0.14), v3(0.29, 0.25, 0.2), rigid(BoneRightLeg))
		}),
		legs("legs_kilt", [3]float32{0.5, 0.1, 0.1}, func(b *meshBuilder) {
			b.box(v3(-0.3, 0.5, -0.15), v3(0.3, 0.85, 0.15), rigid(BoneHips))
		}),
		body("body_armour", ironTint, 0.33, 0.22, func(b *meshBuilder) {
			b.box(v3(-0.5, 1.38, -0.12), v3(-0.26, 1.52, 0.12), rigid(BoneLeftArm)).
				box(v3(0.26, 1.38, -0.12), v3(0.5, 1.52, 0.12), rigid(BoneRightArm))
		}),
		body("body_barrel", [3]float32{0.45, 0.25, 0.5}, 0.36, 0.28, func(b *meshBuilder) {
			b.box(v3(-0.3, 0.9, 0.28), v3(0.3, 1.3, 0.36), blend(BoneHips, BoneSpine, 0.9, 1.3))
		}),
	}
}
