package skinning

import (
	"errors"
	"fmt"
	"sort"
)

// Skinning data errors.
var (
	ErrInvalidTexture = errors.New("invalid animation texture")
	ErrMissingClip    = errors.New("required animation clip missing")
	ErrClipOutOfRange = errors.New("animation clip outside texture rows")
)

// Data combines the animation texture with the clips baked into it.
// One Data is shared read-only by every instance of a model.
type Data struct {
	Texture    *AnimationTexture
	Animations map[string]*AnimationClip

	clips [ClipCount]*AnimationClip
}

// New validates the clip table against the texture and resolves the
// required clips. A model missing any required clip is rejected here
// rather than at playback.
func New(texture *AnimationTexture, animations map[string]*AnimationClip) (*Data, error) {
	if texture == nil {
		return nil, fmt.Errorf("%w: nil texture", ErrInvalidTexture)
	}

	d := &Data{
		Texture:    texture,
		Animations: animations,
	}

	for name, clip := range animations {
		if clip.StartRow < 0 || clip.EndRow <= clip.StartRow || clip.EndRow > texture.Height {
			return nil, fmt.Errorf("%w: %s rows [%d,%d) in %d-row texture",
				ErrClipOutOfRange, name, clip.StartRow, clip.EndRow, texture.Height)
		}
		if clip.FrameRate <= 0 {
			return nil, fmt.Errorf("%w: %s has frame rate %v", ErrClipOutOfRange, name, clip.FrameRate)
		}
	}

	var missing []string
	for id := ClipID(0); id < ClipCount; id++ {
		clip, ok := animations[id.String()]
		if !ok {
			missing = append(missing, id.String())
			continue
		}
		d.clips[id] = clip
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %v", ErrMissingClip, missing)
	}

	return d, nil
}

// Clip returns the resolved clip for id.
func (d *Data) Clip(id ClipID) *AnimationClip {
	return d.clips[id]
}
