package instancing

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/internal/logger"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// Model is an instanced skinned model: shared skinning data plus one
// PartRenderer per mesh part.
type Model struct {
	Skinning *skinning.Data
	Parts    []*PartRenderer
}

// NewModel builds a renderer for every part geometry.
func NewModel(device Device, skin *skinning.Data, parts []*Geometry, shaderLimit int) (*Model, error) {
	m := &Model{Skinning: skin}

	for _, g := range parts {
		pr, err := NewPartRenderer(device, g, skin.Texture, shaderLimit)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("building model: %w", err)
		}
		m.Parts = append(m.Parts, pr)
	}

	logger.Info("instanced model ready",
		zap.Int("parts", len(m.Parts)),
		zap.Int("bones", skin.Texture.Width),
		zap.Int("frameRows", skin.Texture.Height),
	)
	return m, nil
}

// Draw renders the same instance list through every part. A failing part
// does not stop the others; all failures are returned together.
func (m *Model) Draw(transforms []math.Mat4, frames []int32, view, projection math.Mat4) error {
	var errs []error
	for _, p := range m.Parts {
		if err := p.Draw(transforms, frames, view, projection); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Release frees every part's device buffers.
func (m *Model) Release() {
	for _, p := range m.Parts {
		p.Release()
	}
}
