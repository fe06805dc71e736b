package skinning

import (
	"fmt"

	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// AnimationTexture stores one bone transform per texel.
// Columns are bones, rows are animation frames across all clips.
type AnimationTexture struct {
	Width  int         // bone count
	Height int         // total frame rows
	Texels []math.Mat4 // row-major: Texels[row*Width+bone]
}

// NewAnimationTexture wraps texel data, validating its dimensions.
func NewAnimationTexture(width, height int, texels []math.Mat4) (*AnimationTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: animation texture %dx%d", ErrInvalidTexture, width, height)
	}
	if len(texels) != width*height {
		return nil, fmt.Errorf("%w: %d texels for %dx%d", ErrInvalidTexture, len(texels), width, height)
	}
	return &AnimationTexture{Width: width, Height: height, Texels: texels}, nil
}

// Bake builds an animation texture from per-frame bone palettes.
// Every frame must hold the same number of bones.
func Bake(frames [][]math.Mat4) (*AnimationTexture, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidTexture)
	}
	bones := len(frames[0])
	texels := make([]math.Mat4, 0, bones*len(frames))
	for row, palette := range frames {
		if len(palette) != bones {
			return nil, fmt.Errorf("%w: row %d has %d bones, want %d", ErrInvalidTexture, row, len(palette), bones)
		}
		texels = append(texels, palette...)
	}
	return NewAnimationTexture(bones, len(frames), texels)
}

// Bone returns the transform of bone in the given row.
func (t *AnimationTexture) Bone(row, bone int) math.Mat4 {
	return t.Texels[row*t.Width+bone]
}

// BoneDelta returns the width of one texel in texture coordinates.
func (t *AnimationTexture) BoneDelta() float32 {
	return 1 / float32(t.Width)
}

// RowDelta returns the height of one texel in texture coordinates.
func (t *AnimationTexture) RowDelta() float32 {
	return 1 / float32(t.Height)
}
