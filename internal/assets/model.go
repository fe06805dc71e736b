package assets

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/dwarfhorde/internal/engine/instancing"
	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/internal/logger"
	"github.com/Faultbox/dwarfhorde/pkg/formats"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// ErrSkeletonMismatch is returned when a baked animation texture has fewer
// bones than the dwarf meshes reference.
var ErrSkeletonMismatch = errors.New("animation texture does not match the dwarf skeleton")

// Model is a set of mesh parts sharing one skinning table.
type Model struct {
	Parts    []*instancing.Geometry
	Skinning *skinning.Data
}

// DwarfModel builds the procedural dwarf with freshly baked animations.
func DwarfModel() (*Model, error) {
	skin, err := BakeDwarfAnimations()
	if err != nil {
		return nil, fmt.Errorf("baking dwarf animations: %w", err)
	}
	return &Model{Parts: DwarfParts(), Skinning: skin}, nil
}

// LoadDwarf returns the dwarf model animated by the baked texture and clip
// manifest at the given asset paths. With both paths empty the procedural
// animations are used.
func (m *Manager) LoadDwarf(texturePath, manifestPath string) (*Model, error) {
	if texturePath == "" && manifestPath == "" {
		logger.Info("using procedural dwarf animations")
		return DwarfModel()
	}
	if texturePath == "" || manifestPath == "" {
		return nil, fmt.Errorf("animation texture and clip manifest must be set together (texture %q, manifest %q)",
			texturePath, manifestPath)
	}

	skin, err := m.LoadAnimations(texturePath, manifestPath)
	if err != nil {
		return nil, err
	}
	if skin.Texture.Width < BoneCount {
		return nil, fmt.Errorf("%w: %s has %d bones, need %d",
			ErrSkeletonMismatch, texturePath, skin.Texture.Width, BoneCount)
	}
	return &Model{Parts: DwarfParts(), Skinning: skin}, nil
}

// LoadAnimations reads a VTFA animation texture and its clip manifest.
func (m *Manager) LoadAnimations(texturePath, manifestPath string) (*skinning.Data, error) {
	data, err := m.Load(texturePath)
	if err != nil {
		return nil, err
	}
	vtfa, err := formats.ParseVTFA(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", texturePath, err)
	}
	tex, err := TextureFromVTFA(vtfa)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", texturePath, err)
	}

	data, err = m.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	clips, err := skinning.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifestPath, err)
	}

	skin, err := skinning.New(tex, clips)
	if err != nil {
		return nil, fmt.Errorf("loading animations %s: %w", texturePath, err)
	}

	logger.Info("animations loaded",
		zap.String("texture", texturePath),
		zap.Int("bones", tex.Width),
		zap.Int("rows", tex.Height),
		zap.Int("clips", len(clips)))
	return skin, nil
}

// LoadPlacements reads a placement list.
func (m *Manager) LoadPlacements(path string) ([]formats.Placement, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	placements, err := formats.ParsePlacements(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	logger.Info("placements loaded", zap.String("path", path), zap.Int("count", len(placements)))
	return placements, nil
}

// TextureFromVTFA converts a decoded VTFA file to an animation texture.
func TextureFromVTFA(v *formats.VTFA) (*skinning.AnimationTexture, error) {
	texels := make([]math.Mat4, len(v.Matrices))
	for i, mat := range v.Matrices {
		texels[i] = math.Mat4(mat)
	}
	return skinning.NewAnimationTexture(int(v.Bones), int(v.Rows), texels)
}

// VTFAFromTexture converts an animation texture for encoding.
func VTFAFromTexture(t *skinning.AnimationTexture) *formats.VTFA {
	v := &formats.VTFA{
		Version:  formats.VTFAVersion,
		Bones:    uint32(t.Width),
		Rows:     uint32(t.Height),
		Matrices: make([][16]float32, len(t.Texels)),
	}
	for i, mat := range t.Texels {
		v.Matrices[i] = [16]float32(mat)
	}
	return v
}

// ExportAnimations writes skin's texture and clip table into dir.
func ExportAnimations(dir, textureName, manifestName string, skin *skinning.Data) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := VTFAFromTexture(skin.Texture).Encode()
	if err != nil {
		return fmt.Errorf("encoding animation texture: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, textureName), data, 0644); err != nil {
		return err
	}

	manifest, err := skinning.MarshalManifest(skin.Animations)
	if err != nil {
		return fmt.Errorf("encoding clip manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, manifestName), manifest, 0644)
}
