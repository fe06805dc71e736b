// Package instancing draws many copies of a skinned mesh part per draw
// call using vertex texture fetch: per-instance transforms and animation
// frames travel as small uniform arrays, bone poses are read from the
// animation texture in the vertex shader.
package instancing

import (
	"errors"

	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// DefaultShaderInstanceLimit is the instance array size compiled into the
// vertex shader. Changing the shader means changing this value.
const DefaultShaderInstanceLimit = 47

// maxIndexValue is the largest vertex index a 16-bit index buffer can address.
const maxIndexValue = 65535

// Instancing errors.
var (
	ErrLengthMismatch  = errors.New("transforms and animation frames must have the same length")
	ErrInvalidGeometry = errors.New("invalid instancing geometry")
)

// Vertex is one skinned vertex. The layout is sixteen float32 values so the
// device can expose it to the shader as four RGBA texels.
type Vertex struct {
	Position    [3]float32
	Normal      [3]float32
	TexCoord    [2]float32
	BoneIndices [4]float32
	BoneWeights [4]float32
}

// SubMesh is a contiguous triangle-list range of a part's index buffer.
type SubMesh struct {
	BaseVertex     int
	StartIndex     int
	PrimitiveCount int
}

// IndexCount returns the number of indices in the range.
func (s SubMesh) IndexCount() int {
	return s.PrimitiveCount * 3
}

// Geometry is the source mesh of one part as produced by the asset side.
type Geometry struct {
	Name      string
	Vertices  []Vertex
	Indices   []uint16
	SubMeshes []SubMesh
	Tint      [3]float32
}

// VertexCount returns the number of vertices one instance contributes.
func (g *Geometry) VertexCount() int {
	return len(g.Vertices)
}

// DrawCall carries everything the device needs for one batched draw.
// Transforms and Frames alias renderer staging memory and are only valid
// for the duration of Device.DrawInstanced.
type DrawCall struct {
	View       math.Mat4
	Projection math.Mat4

	Texture   *skinning.AnimationTexture
	BoneDelta float32
	RowDelta  float32

	VertexCount int
	Transforms  []math.Mat4
	Frames      []int32
	Tint        [3]float32

	SubMesh        int
	BaseVertex     int
	NumVertices    int
	StartIndex     int
	PrimitiveCount int
}

// InstanceCount returns the number of instances in the call.
func (c *DrawCall) InstanceCount() int {
	return len(c.Transforms)
}

// MeshBuffer is a device-side copy of a part's vertices and replicated indices.
type MeshBuffer interface {
	Release()
}

// Device is the GPU binding used by PartRenderer.
type Device interface {
	// UploadMesh creates device buffers for a part. indices is the
	// replicated index buffer.
	UploadMesh(name string, vertices []Vertex, indices []uint16) (MeshBuffer, error)

	// DrawInstanced issues one indexed draw for call.InstanceCount() instances.
	DrawInstanced(buf MeshBuffer, call *DrawCall)
}
