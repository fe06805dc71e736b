package skinning

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk clip table that accompanies an animation texture.
type Manifest struct {
	Clips []ClipEntry `yaml:"clips"`
}

// ClipEntry is one clip in a manifest.
type ClipEntry struct {
	Name      string        `yaml:"name"`
	StartRow  int           `yaml:"start_row"`
	EndRow    int           `yaml:"end_row"`
	FrameRate float32       `yaml:"frame_rate"`
	Duration  time.Duration `yaml:"duration"`
}

// ParseManifest decodes a YAML clip manifest into a clip table.
// A missing duration is derived from the row count and frame rate.
func ParseManifest(data []byte) (map[string]*AnimationClip, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding clip manifest: %w", err)
	}

	clips := make(map[string]*AnimationClip, len(m.Clips))
	for _, e := range m.Clips {
		if e.Name == "" {
			return nil, fmt.Errorf("clip manifest: entry without name")
		}
		if _, dup := clips[e.Name]; dup {
			return nil, fmt.Errorf("clip manifest: duplicate clip %q", e.Name)
		}

		duration := e.Duration
		if duration == 0 && e.FrameRate > 0 {
			duration = time.Duration(float64(e.EndRow-e.StartRow) / float64(e.FrameRate) * float64(time.Second))
		}

		clips[e.Name] = &AnimationClip{
			Name:      e.Name,
			Duration:  duration,
			StartRow:  e.StartRow,
			EndRow:    e.EndRow,
			FrameRate: e.FrameRate,
		}
	}
	return clips, nil
}

// LoadManifest reads and parses a clip manifest file.
func LoadManifest(path string) (map[string]*AnimationClip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// MarshalManifest encodes a clip table, ordered by start row.
func MarshalManifest(clips map[string]*AnimationClip) ([]byte, error) {
	m := Manifest{Clips: make([]ClipEntry, 0, len(clips))}
	for _, c := range clips {
		m.Clips = append(m.Clips, ClipEntry{
			Name:      c.Name,
			StartRow:  c.StartRow,
			EndRow:    c.EndRow,
			FrameRate: c.FrameRate,
			Duration:  c.Duration,
		})
	}
	sort.Slice(m.Clips, func(i, j int) bool {
		return m.Clips[i].StartRow < m.Clips[j].StartRow
	})
	return yaml.Marshal(&m)
}
