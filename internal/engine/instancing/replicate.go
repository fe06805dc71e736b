package instancing

import "fmt"

// MaxInstancesPerBatch returns how many copies of a mesh with vertexCount
// vertices one draw can address: bounded by the shader's instance array and
// by the 16-bit index range.
func MaxInstancesPerBatch(vertexCount, shaderLimit int) int {
	if vertexCount <= 0 || shaderLimit <= 0 {
		return 0
	}
	return min(shaderLimit, maxIndexValue/vertexCount)
}

// validateGeometry checks that every sub-mesh range lies inside the index
// buffer and every index addresses an existing vertex.
func validateGeometry(g *Geometry) error {
	vertexCount := g.VertexCount()
	if vertexCount == 0 {
		return fmt.Errorf("%w: %s has no vertices", ErrInvalidGeometry, g.Name)
	}
	if vertexCount > maxIndexValue {
		return fmt.Errorf("%w: %s has %d vertices, 16-bit indices address at most %d",
			ErrInvalidGeometry, g.Name, vertexCount, maxIndexValue)
	}
	if len(g.SubMeshes) == 0 {
		return fmt.Errorf("%w: %s has no sub-meshes", ErrInvalidGeometry, g.Name)
	}

	for i, sm := range g.SubMeshes {
		end := sm.StartIndex + sm.IndexCount()
		if sm.StartIndex < 0 || sm.PrimitiveCount <= 0 || end > len(g.Indices) {
			return fmt.Errorf("%w: %s sub-mesh %d range [%d,%d) outside %d indices",
				ErrInvalidGeometry, g.Name, i, sm.StartIndex, end, len(g.Indices))
		}
		if sm.BaseVertex < 0 || sm.BaseVertex >= vertexCount {
			return fmt.Errorf("%w: %s sub-mesh %d base vertex %d", ErrInvalidGeometry, g.Name, i, sm.BaseVertex)
		}
		for _, idx := range g.Indices[sm.StartIndex:end] {
			if sm.BaseVertex+int(idx) >= vertexCount {
				return fmt.Errorf("%w: %s sub-mesh %d index %d past %d vertices",
					ErrInvalidGeometry, g.Name, i, idx, vertexCount)
			}
		}
	}
	return nil
}

// ReplicateIndices repeats each sub-mesh's index range instances times,
// offsetting copy k by k*vertexCount, and keeps every sub-mesh's copies
// contiguous: <part0 x N><part1 x N>... A draw of n instances of a
// sub-mesh then reads the first n copies of that sub-mesh's range.
//
// The returned sub-meshes describe the ranges in the replicated buffer;
// PrimitiveCount stays per instance.
func ReplicateIndices(g *Geometry, instances int) ([]uint16, []SubMesh) {
	vertexCount := g.VertexCount()

	total := 0
	for _, sm := range g.SubMeshes {
		total += sm.IndexCount() * instances
	}

	indices := make([]uint16, 0, total)
	ranges := make([]SubMesh, len(g.SubMeshes))

	for i, sm := range g.SubMeshes {
		ranges[i] = SubMesh{
			BaseVertex:     sm.BaseVertex,
			StartIndex:     len(indices),
			PrimitiveCount: sm.PrimitiveCount,
		}

		src := g.Indices[sm.StartIndex : sm.StartIndex+sm.IndexCount()]
		for k := 0; k < instances; k++ {
			offset := uint16(k * vertexCount)
			for _, idx := range src {
				indices = append(indices, idx+offset)
			}
		}
	}

	return indices, ranges
}
