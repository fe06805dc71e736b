package instancing

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/internal/logger"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// PartRenderer draws any number of instances of one mesh part.
//
// The index buffer holds maxInstances copies of every sub-mesh so a single
// draw covers a whole batch; the input is split into batches of at most
// maxInstances and each batch is staged into fixed-size arrays that are
// reused every frame. A PartRenderer is used from one goroutine.
type PartRenderer struct {
	name    string
	device  Device
	texture *skinning.AnimationTexture
	tint    [3]float32
	limit   int

	vertexCount  int
	maxInstances int
	indices      []uint16
	ranges       []SubMesh
	buffer       MeshBuffer

	// Staging arrays, capacity maxInstances.
	transforms []math.Mat4
	frames     []int32
	call       DrawCall

	lastDrawCalls int
}

// NewPartRenderer validates geom, replicates its indices for the largest
// batch the shader and the index format allow, and uploads it to device.
func NewPartRenderer(device Device, geom *Geometry, texture *skinning.AnimationTexture, shaderLimit int) (*PartRenderer, error) {
	if texture == nil {
		return nil, fmt.Errorf("part %s: nil animation texture", geom.Name)
	}

	r := &PartRenderer{
		name:    geom.Name,
		device:  device,
		texture: texture,
		limit:   shaderLimit,
	}
	if err := r.SetGeometry(geom); err != nil {
		return nil, err
	}
	return r, nil
}

// SetGeometry replaces the source mesh and rebuilds the replicated index
// buffer. It is the only point where the index buffer is rebuilt.
func (r *PartRenderer) SetGeometry(geom *Geometry) error {
	if err := validateGeometry(geom); err != nil {
		return err
	}

	vertexCount := geom.VertexCount()
	maxInstances := MaxInstancesPerBatch(vertexCount, r.limit)
	if maxInstances == 0 {
		return fmt.Errorf("%w: %s cannot fit one instance (shader limit %d)", ErrInvalidGeometry, geom.Name, r.limit)
	}

	indices, ranges := ReplicateIndices(geom, maxInstances)

	buffer, err := r.device.UploadMesh(geom.Name, geom.Vertices, indices)
	if err != nil {
		return fmt.Errorf("uploading part %s: %w", geom.Name, err)
	}

	if r.buffer != nil {
		r.buffer.Release()
	}

	r.name = geom.Name
	r.tint = geom.Tint
	r.vertexCount = vertexCount
	r.maxInstances = maxInstances
	r.indices = indices
	r.ranges = ranges
	r.buffer = buffer
	r.transforms = make([]math.Mat4, maxInstances)
	r.frames = make([]int32, maxInstances)

	logger.Debug("instanced part built",
		zap.String("part", geom.Name),
		zap.Int("vertices", vertexCount),
		zap.Int("maxInstances", maxInstances),
		zap.Int("replicatedIndices", len(indices)),
	)
	return nil
}

// Draw renders one instance per (transform, frame) pair. Instance i of the
// input is drawn with transforms[i] and frames[i]. Frame numbers are not
// range checked.
func (r *PartRenderer) Draw(transforms []math.Mat4, frames []int32, view, projection math.Mat4) error {
	if len(transforms) != len(frames) {
		return fmt.Errorf("part %s: %w (%d transforms, %d frames)", r.name, ErrLengthMismatch, len(transforms), len(frames))
	}

	r.lastDrawCalls = 0
	if len(transforms) == 0 {
		return nil
	}

	call := &r.call
	*call = DrawCall{
		View:        view,
		Projection:  projection,
		Texture:     r.texture,
		BoneDelta:   r.texture.BoneDelta(),
		RowDelta:    r.texture.RowDelta(),
		VertexCount: r.vertexCount,
		Tint:        r.tint,
	}

	for i, sm := range r.ranges {
		call.SubMesh = i
		call.BaseVertex = sm.BaseVertex
		call.StartIndex = sm.StartIndex

		for start := 0; start < len(transforms); start += r.maxInstances {
			n := min(len(transforms)-start, r.maxInstances)

			copy(r.transforms[:n], transforms[start:start+n])
			copy(r.frames[:n], frames[start:start+n])

			call.Transforms = r.transforms[:n]
			call.Frames = r.frames[:n]
			call.NumVertices = r.vertexCount * n
			call.PrimitiveCount = sm.PrimitiveCount * n

			r.device.DrawInstanced(r.buffer, call)
			r.lastDrawCalls++
		}
	}

	return nil
}

// Name returns the part name.
func (r *PartRenderer) Name() string { return r.name }

// VertexCount returns the vertices one instance contributes.
func (r *PartRenderer) VertexCount() int { return r.vertexCount }

// MaxInstances returns the batch capacity.
func (r *PartRenderer) MaxInstances() int { return r.maxInstances }

// Indices returns the replicated index buffer.
func (r *PartRenderer) Indices() []uint16 { return r.indices }

// SubMeshes returns the sub-mesh ranges inside the replicated buffer.
func (r *PartRenderer) SubMeshes() []SubMesh { return r.ranges }

// LastDrawCalls returns how many device draws the last Draw issued.
func (r *PartRenderer) LastDrawCalls() int { return r.lastDrawCalls }

// Release frees the device buffers.
func (r *PartRenderer) Release() {
	if r.buffer != nil {
		r.buffer.Release()
		r.buffer = nil
	}
}
