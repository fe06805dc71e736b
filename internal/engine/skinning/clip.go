// Package skinning holds the shared, read-only animation data of an
// instanced skinned model: the baked animation texture and its clips.
package skinning

import (
	"fmt"
	"time"
)

// ClipID identifies one of the clips the crowd behaviour plays.
type ClipID int

// Required clips. Every model driven by the crowd must provide all of them.
const (
	ClipIdle1 ClipID = iota
	ClipIdle2
	ClipCheer1
	ClipCheer2
	ClipCheer3
	ClipJumpCheer

	ClipCount
)

var clipNames = [ClipCount]string{
	ClipIdle1:     "Idle1",
	ClipIdle2:     "Idle2",
	ClipCheer1:    "Cheer1",
	ClipCheer2:    "Cheer2",
	ClipCheer3:    "Cheer3",
	ClipJumpCheer: "JumpCheer",
}

// String returns the clip name as stored in asset manifests.
func (id ClipID) String() string {
	if id < 0 || id >= ClipCount {
		return fmt.Sprintf("Clip(%d)", int(id))
	}
	return clipNames[id]
}

// ParseClipID maps a manifest clip name to its identifier.
func ParseClipID(name string) (ClipID, bool) {
	for i, n := range clipNames {
		if n == name {
			return ClipID(i), true
		}
	}
	return 0, false
}

// AnimationClip describes a named animation baked into the rows
// [StartRow, EndRow) of the animation texture.
// Clips are created once at load time and never modified afterwards.
type AnimationClip struct {
	Name      string
	Duration  time.Duration
	StartRow  int
	EndRow    int
	FrameRate float32 // rows per second
}

// Rows returns the number of texture rows the clip spans.
func (c *AnimationClip) Rows() int {
	return c.EndRow - c.StartRow
}

// LastRow returns the last row that still belongs to the clip.
func (c *AnimationClip) LastRow() int {
	return c.EndRow - 1
}
