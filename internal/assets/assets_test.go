package assets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/dwarfhorde/internal/engine/instancing"
	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/pkg/formats"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestManagerSearchesLastRootFirst(t *testing.T) {
	base, mod := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(base, "a.txt"), "base")
	writeFile(t, filepath.Join(base, "only/base.txt"), "base only")
	writeFile(t, filepath.Join(mod, "a.txt"), "mod")

	m := NewManager()
	for _, dir := range []string{base, mod} {
		if err := m.AddRoot(dir); err != nil {
			t.Fatalf("AddRoot failed: %v", err)
		}
	}

	data, err := m.Load("a.txt")
	if err != nil || string(data) != "mod" {
		t.Errorf("Load(a.txt) = %q, %v; want mod", data, err)
	}
	data, err = m.Load("only/base.txt")
	if err != nil || string(data) != "base only" {
		t.Errorf("Load(only/base.txt) = %q, %v", data, err)
	}

	if _, err := m.Load("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing.txt) error = %v, want ErrNotFound", err)
	}
}

func TestManagerCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clips.yaml")
	writeFile(t, path, "first")

	m := NewManager()
	if err := m.AddRoot(dir); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}
	if _, err := m.Load("clips.yaml"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	writeFile(t, path, "second")

	data, _ := m.Load("clips.yaml")
	if string(data) != "first" {
		t.Errorf("expected cached content, got %q", data)
	}
	if hits, misses := m.cache.Stats(); hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits %d misses, want 1/1", hits, misses)
	}

	m.Close()
	if _, err := m.Load("clips.yaml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Close = %v, want ErrNotFound", err)
	}
}

func TestAddRootRejectsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	writeFile(t, path, "x")

	m := NewManager()
	if err := m.AddRoot(path); err == nil {
		t.Error("AddRoot accepted a regular file")
	}
	if err := m.AddRoot(filepath.Join(path, "nope")); err == nil {
		t.Error("AddRoot accepted a missing directory")
	}
}

type nopBuffer struct{}

func (nopBuffer) Release() {}

type nopDevice struct{}

func (nopDevice) UploadMesh(string, []instancing.Vertex, []uint16) (instancing.MeshBuffer, error) {
	return nopBuffer{}, nil
}

func (nopDevice) DrawInstanced(instancing.MeshBuffer, *instancing.DrawCall) {}

func TestDwarfPartsLayout(t *testing.T) {
	parts := DwarfParts()
	if len(parts) != 9 {
		t.Fatalf("got %d parts, want 9", len(parts))
	}

	prefixes := map[int]string{0: "head", 1: "head", 2: "head", 3: "body", 7: "body", 8: "body", 4: "legs", 5: "legs", 6: "legs"}
	for i, g := range parts {
		if !strings.HasPrefix(g.Name, prefixes[i]) {
			t.Errorf("part %d is %s, want a %s", i, g.Name, prefixes[i])
		}
	}
}

func TestDwarfPartsAreValidSkinnedMeshes(t *testing.T) {
	skin, err := BakeDwarfAnimations()
	if err != nil {
		t.Fatalf("BakeDwarfAnimations failed: %v", err)
	}

	for _, g := range DwarfParts() {
		r, err := instancing.NewPartRenderer(nopDevice{}, g, skin.Texture, instancing.DefaultShaderInstanceLimit)
		if err != nil {
			t.Errorf("part %s rejected: %v", g.Name, err)
			continue
		}
		if r.MaxInstances() != instancing.DefaultShaderInstanceLimit {
			t.Errorf("part %s batches %d instances, want %d", g.Name, r.MaxInstances(), instancing.DefaultShaderInstanceLimit)
		}
		if len(g.SubMeshes) < 2 {
			t.Errorf("part %s has %d sub-meshes, want at least 2", g.Name, len(g.SubMeshes))
		}

		for i, v := range g.Vertices {
			var sum float32
			for j, w := range v.BoneWeights {
				sum += w
				if w > 0 && (v.BoneIndices[j] < 0 || int(v.BoneIndices[j]) >= BoneCount) {
					t.Errorf("part %s vertex %d uses bone %v", g.Name, i, v.BoneIndices[j])
				}
			}
			if sum < 0.999 || sum > 1.001 {
				t.Errorf("part %s vertex %d weights sum to %v", g.Name, i, sum)
			}
		}
	}
}

func TestBakeDwarfAnimations(t *testing.T) {
	skin, err := BakeDwarfAnimations()
	if err != nil {
		t.Fatalf("BakeDwarfAnimations failed: %v", err)
	}

	if skin.Texture.Width != BoneCount {
		t.Errorf("texture width = %d, want %d bones", skin.Texture.Width, BoneCount)
	}
	if skin.Texture.Height != 230 {
		t.Errorf("texture height = %d, want 230 rows", skin.Texture.Height)
	}
	if _, ok := skin.Animations["Walk"]; !ok {
		t.Error("Walk clip missing")
	}

	// Clips tile the texture without gaps.
	row := 0
	for _, def := range dwarfClips {
		c := skin.Animations[def.name]
		if c.StartRow != row || c.Rows() != def.frames {
			t.Errorf("%s rows [%d,%d), want start %d length %d", def.name, c.StartRow, c.EndRow, row, def.frames)
		}
		row = c.EndRow
	}

	jump := skin.Clip(skinning.ClipJumpCheer)
	if got := skin.Texture.Bone(jump.StartRow, BoneHips); got != math.Identity() {
		t.Errorf("jump starts off the ground: %v", got)
	}
	apex := skin.Texture.Bone(jump.StartRow+15, BoneHips).Translation()
	if apex.Y < 0.39 || apex.Y > 0.41 {
		t.Errorf("jump apex lift = %v, want 0.4", apex.Y)
	}
}

func TestArmRaisedInCheer(t *testing.T) {
	skin, err := BakeDwarfAnimations()
	if err != nil {
		t.Fatalf("BakeDwarfAnimations failed: %v", err)
	}

	hand := math.Vec3{X: 0.38, Y: 0.9}
	idle := skin.Texture.Bone(skin.Clip(skinning.ClipIdle1).StartRow, BoneRightArm).TransformVec3(hand)
	cheer := skin.Texture.Bone(skin.Clip(skinning.ClipCheer3).StartRow, BoneRightArm).TransformVec3(hand)

	if idle.Y > 1.0 {
		t.Errorf("idle hand at %v, want hanging", idle)
	}
	if cheer.Y < 1.8 {
		t.Errorf("cheering hand at %v, want above the head", cheer)
	}
}

func TestExportThenLoadDwarf(t *testing.T) {
	dir := t.TempDir()
	baked, err := BakeDwarfAnimations()
	if err != nil {
		t.Fatalf("BakeDwarfAnimations failed: %v", err)
	}
	if err := ExportAnimations(filepath.Join(dir, "anim"), "dwarf.vtfa", "dwarf.clips.yaml", baked); err != nil {
		t.Fatalf("ExportAnimations failed: %v", err)
	}

	m := NewManager()
	if err := m.AddRoot(dir); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}
	model, err := m.LoadDwarf("anim/dwarf.vtfa", "anim/dwarf.clips.yaml")
	if err != nil {
		t.Fatalf("LoadDwarf failed: %v", err)
	}

	if !reflect.DeepEqual(model.Skinning.Texture, baked.Texture) {
		t.Error("animation texture changed through export")
	}
	if !reflect.DeepEqual(model.Skinning.Animations, baked.Animations) {
		t.Error("clip table changed through export")
	}
	if len(model.Parts) != 9 {
		t.Errorf("got %d parts, want 9", len(model.Parts))
	}
}

func TestLoadDwarfProcedural(t *testing.T) {
	model, err := NewManager().LoadDwarf("", "")
	if err != nil {
		t.Fatalf("LoadDwarf failed: %v", err)
	}
	if model.Skinning.Clip(skinning.ClipIdle1) == nil {
		t.Error("procedural model lacks Idle1")
	}
}

func TestLoadDwarfErrors(t *testing.T) {
	dir := t.TempDir()

	// A three-bone texture with every required clip.
	frames := make([][]math.Mat4, 60)
	for i := range frames {
		frames[i] = []math.Mat4{math.Identity(), math.Identity(), math.Identity()}
	}
	tex, err := skinning.Bake(frames)
	if err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	clips := make(map[string]*skinning.AnimationClip)
	for id := skinning.ClipID(0); id < skinning.ClipCount; id++ {
		clips[id.String()] = &skinning.AnimationClip{Name: id.String(), StartRow: int(id) * 10, EndRow: int(id)*10 + 10, FrameRate: 30}
	}
	small, err := skinning.New(tex, clips)
	if err != nil {
		t.Fatalf("skinning.New failed: %v", err)
	}
	if err := ExportAnimations(dir, "small.vtfa", "small.yaml", small); err != nil {
		t.Fatalf("ExportAnimations failed: %v", err)
	}
	writeFile(t, filepath.Join(dir, "partial.yaml"), "clips:\n  - {name: Idle1, start_row: 0, end_row: 10, frame_rate: 30}\n")

	m := NewManager()
	if err := m.AddRoot(dir); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}

	if _, err := m.LoadDwarf("small.vtfa", ""); err == nil {
		t.Error("texture without manifest accepted")
	}
	if _, err := m.LoadDwarf("small.vtfa", "small.yaml"); !errors.Is(err, ErrSkeletonMismatch) {
		t.Errorf("three-bone texture: error = %v, want ErrSkeletonMismatch", err)
	}
	if _, err := m.LoadDwarf("small.vtfa", "partial.yaml"); !errors.Is(err, skinning.ErrMissingClip) {
		t.Errorf("partial manifest: error = %v, want ErrMissingClip", err)
	}
	if _, err := m.LoadDwarf("small.yaml", "small.yaml"); !errors.Is(err, formats.ErrInvalidVTFAMagic) {
		t.Errorf("yaml as texture: error = %v, want ErrInvalidVTFAMagic", err)
	}
}

func TestLoadPlacements(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Positions.txt"),
		"{1,0,0,0} {0,1,0,0} {0,0,1,0} {10,20,0,1}\n{1,0,0,0} {0,1,0,0} {0,0,1,0} {-5,3,0,1}\n")
	writeFile(t, filepath.Join(dir, "broken.txt"), "{1,0,0}\n")

	m := NewManager()
	if err := m.AddRoot(dir); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}

	placements, err := m.LoadPlacements("Positions.txt")
	if err != nil {
		t.Fatalf("LoadPlacements failed: %v", err)
	}
	if len(placements) != 2 || placements[1].Translation() != [3]float32{-5, 3, 0} {
		t.Errorf("placements = %v", placements)
	}

	if _, err := m.LoadPlacements("broken.txt"); !errors.Is(err, formats.ErrInvalidPlacement) {
		t.Errorf("broken file: error = %v, want ErrInvalidPlacement", err)
	}
}
