package skinning

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/dwarfhorde/pkg/math"
)

func testTexture(t *testing.T, bones, rows int) *AnimationTexture {
	t.Helper()
	texels := make([]math.Mat4, bones*rows)
	for i := range texels {
		texels[i] = math.Translate(float32(i), 0, 0)
	}
	tex, err := NewAnimationTexture(bones, rows, texels)
	if err != nil {
		t.Fatalf("NewAnimationTexture failed: %v", err)
	}
	return tex
}

func requiredClips() map[string]*AnimationClip {
	clips := make(map[string]*AnimationClip)
	for id := ClipID(0); id < ClipCount; id++ {
		start := int(id) * 10
		clips[id.String()] = &AnimationClip{
			Name:      id.String(),
			StartRow:  start,
			EndRow:    start + 10,
			FrameRate: 30,
		}
	}
	return clips
}

func TestNewResolvesRequiredClips(t *testing.T) {
	clips := requiredClips()
	clips["Walk"] = &AnimationClip{Name: "Walk", StartRow: 60, EndRow: 70, FrameRate: 30}

	d, err := New(testTexture(t, 4, 70), clips)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for id := ClipID(0); id < ClipCount; id++ {
		c := d.Clip(id)
		if c == nil {
			t.Fatalf("clip %s not resolved", id)
		}
		if c != clips[id.String()] {
			t.Errorf("clip %s resolved to a different value", id)
		}
	}
	if d.Clip(ClipJumpCheer).StartRow != 50 {
		t.Errorf("JumpCheer start row = %d, want 50", d.Clip(ClipJumpCheer).StartRow)
	}
}

func TestNewMissingClip(t *testing.T) {
	clips := requiredClips()
	delete(clips, "Cheer2")

	_, err := New(testTexture(t, 4, 60), clips)
	if !errors.Is(err, ErrMissingClip) {
		t.Fatalf("expected ErrMissingClip, got %v", err)
	}
}

func TestNewClipOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		clip AnimationClip
	}{
		{"past last row", AnimationClip{StartRow: 55, EndRow: 61, FrameRate: 30}},
		{"negative start", AnimationClip{StartRow: -1, EndRow: 5, FrameRate: 30}},
		{"empty range", AnimationClip{StartRow: 5, EndRow: 5, FrameRate: 30}},
		{"zero frame rate", AnimationClip{StartRow: 0, EndRow: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clips := requiredClips()
			c := tt.clip
			c.Name = "Idle1"
			clips["Idle1"] = &c

			if _, err := New(testTexture(t, 4, 60), clips); !errors.Is(err, ErrClipOutOfRange) {
				t.Errorf("expected ErrClipOutOfRange, got %v", err)
			}
		})
	}
}

func TestClipIDNames(t *testing.T) {
	for id := ClipID(0); id < ClipCount; id++ {
		got, ok := ParseClipID(id.String())
		if !ok || got != id {
			t.Errorf("ParseClipID(%q) = %v, %v", id.String(), got, ok)
		}
	}
	if _, ok := ParseClipID("Dance"); ok {
		t.Error("ParseClipID accepted an unknown clip")
	}
	if s := ClipCount.String(); s != "Clip(6)" {
		t.Errorf("out of range String() = %q", s)
	}
}

func TestTextureDeltas(t *testing.T) {
	tex := testTexture(t, 4, 8)
	if tex.BoneDelta() != 0.25 {
		t.Errorf("BoneDelta() = %v, want 0.25", tex.BoneDelta())
	}
	if tex.RowDelta() != 0.125 {
		t.Errorf("RowDelta() = %v, want 0.125", tex.RowDelta())
	}
	if got := tex.Bone(2, 3).Translation().X; got != 11 {
		t.Errorf("Bone(2,3) = %v, want texel 11", got)
	}
}

func TestBake(t *testing.T) {
	frames := [][]math.Mat4{
		{math.Identity(), math.Translate(1, 0, 0)},
		{math.Identity(), math.Translate(2, 0, 0)},
		{math.Identity(), math.Translate(3, 0, 0)},
	}
	tex, err := Bake(frames)
	if err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	if tex.Width != 2 || tex.Height != 3 {
		t.Fatalf("baked size = %dx%d, want 2x3", tex.Width, tex.Height)
	}
	if got := tex.Bone(2, 1).Translation().X; got != 3 {
		t.Errorf("Bone(2,1) translation = %v, want 3", got)
	}

	frames[1] = frames[1][:1]
	if _, err := Bake(frames); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("expected ErrInvalidTexture for ragged frames, got %v", err)
	}
}

func TestNewAnimationTextureInvalid(t *testing.T) {
	if _, err := NewAnimationTexture(0, 4, nil); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("expected ErrInvalidTexture for zero width, got %v", err)
	}
	if _, err := NewAnimationTexture(2, 2, make([]math.Mat4, 3)); !errors.Is(err, ErrInvalidTexture) {
		t.Errorf("expected ErrInvalidTexture for short texels, got %v", err)
	}
}

func TestParseManifest(t *testing.T) {
	yamlContent := `
clips:
  - name: Idle1
    start_row: 0
    end_row: 30
    frame_rate: 30
  - name: JumpCheer
    start_row: 30
    end_row: 90
    frame_rate: 60
    duration: 2s
`
	clips, err := ParseManifest([]byte(yamlContent))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}

	idle := clips["Idle1"]
	if idle.StartRow != 0 || idle.EndRow != 30 || idle.FrameRate != 30 {
		t.Errorf("unexpected Idle1: %+v", idle)
	}
	if idle.Duration != time.Second {
		t.Errorf("derived Idle1 duration = %v, want 1s", idle.Duration)
	}
	if clips["JumpCheer"].Duration != 2*time.Second {
		t.Errorf("JumpCheer duration = %v, want 2s", clips["JumpCheer"].Duration)
	}
}

func TestParseManifestDuplicate(t *testing.T) {
	yamlContent := `
clips:
  - {name: Idle1, start_row: 0, end_row: 5, frame_rate: 30}
  - {name: Idle1, start_row: 5, end_row: 9, frame_rate: 30}
`
	if _, err := ParseManifest([]byte(yamlContent)); err == nil {
		t.Error("expected error for duplicate clip")
	}
}

func TestManifestRoundTripThroughFile(t *testing.T) {
	clips := requiredClips()
	data, err := MarshalManifest(clips)
	if err != nil {
		t.Fatalf("MarshalManifest failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "clips.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	loaded, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if _, err := New(testTexture(t, 2, 60), loaded); err != nil {
		t.Errorf("loaded manifest rejected: %v", err)
	}
}
