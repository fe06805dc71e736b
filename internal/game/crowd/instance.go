// Package crowd animates and culls a large army of instanced characters and
// scatters the visible ones into per-part instance arrays.
package crowd

import (
	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// Slot is one of the three body parts every instance is made of.
type Slot int

const (
	SlotHead Slot = iota
	SlotBody
	SlotLegs

	slotCount
)

// Layout lists the mesh-part candidates for every slot.
type Layout [slotCount][3]int

// DefaultLayout is the dwarf model's part layout: meshes 0-2 are heads,
// 3, 7 and 8 bodies, 4-6 legs.
var DefaultLayout = Layout{
	SlotHead: {0, 1, 2},
	SlotBody: {3, 7, 8},
	SlotLegs: {4, 5, 6},
}

// DefaultBoundingRadius is the culling radius around an instance's spawn point.
const DefaultBoundingRadius = 1

// Instance is one animated character.
type Instance struct {
	parts            [slotCount]int
	position         math.Vec3
	scale            float32
	scaleTranslation math.Mat4
	transform        math.Mat4
	bounds           math.Sphere

	clip    *skinning.AnimationClip
	frame   float32
	lastRow int32
	repeats int

	visible bool
	// Write positions in the per-part arrays, reserved each Draw.
	slots [slotCount]int
}

// NewInstance spawns an instance at position with randomly chosen parts and
// a random scale in [0.8, 1.2).
func NewInstance(position math.Vec3, layout Layout, radius float32, rng Rand) *Instance {
	in := &Instance{position: position}

	// Body, legs, head. Seeded crowds depend on this draw order.
	in.parts[SlotBody] = layout[SlotBody][rng.Intn(3)]
	in.parts[SlotLegs] = layout[SlotLegs][rng.Intn(3)]
	in.parts[SlotHead] = layout[SlotHead][rng.Intn(3)]

	in.scale = float32(rng.Float64()*0.4) + 0.8
	in.scaleTranslation = math.Translate(position.X, position.Y, position.Z).Mul(math.UniformScale(in.scale))
	in.transform = in.scaleTranslation
	in.bounds = math.Sphere{Center: position, Radius: radius}

	return in
}

// Update advances the animation by elapsed seconds and turns the instance
// to face target.
func (in *Instance) Update(elapsed float32, target math.Vec3, skin *skinning.Data, policy Policy, rng Rand) {
	if in.clip == nil {
		in.startNextClip(target, skin, policy, rng)
	}

	in.frame += elapsed * in.clip.FrameRate
	if in.frame >= float32(in.clip.EndRow) {
		if in.repeats > 0 {
			in.repeats--
			in.frame = float32(in.clip.StartRow)
		} else {
			in.frame = float32(in.clip.EndRow)
			in.clip = nil
		}
	}

	rotation := math.RotateY(in.position.YawTowards(target))
	in.transform = in.scaleTranslation.Mul(rotation)
}

func (in *Instance) startNextClip(target math.Vec3, skin *skinning.Data, policy Policy, rng Rand) {
	id, repeats := policy.Next(in.position.DistanceSquared(target), rng)
	in.clip = skin.Clip(id)
	in.repeats = repeats
	in.frame = float32(in.clip.StartRow)
	in.lastRow = int32(in.clip.LastRow())
}

// AnimationFrame returns the texture row to render. A clip that just ended
// keeps showing its last row until the next one starts.
func (in *Instance) AnimationFrame() int32 {
	return min(int32(in.frame), in.lastRow)
}

// Part returns the mesh part used for slot.
func (in *Instance) Part(s Slot) int { return in.parts[s] }

// Head returns the head mesh part.
func (in *Instance) Head() int { return in.parts[SlotHead] }

// Body returns the body mesh part.
func (in *Instance) Body() int { return in.parts[SlotBody] }

// Legs returns the legs mesh part.
func (in *Instance) Legs() int { return in.parts[SlotLegs] }

// Position returns the spawn position.
func (in *Instance) Position() math.Vec3 { return in.position }

// Scale returns the spawn scale.
func (in *Instance) Scale() float32 { return in.scale }

// Transform returns the world transform computed by the last Update.
func (in *Instance) Transform() math.Mat4 { return in.transform }

// Bounds returns the culling sphere.
func (in *Instance) Bounds() math.Sphere { return in.bounds }

// Clip returns the playing clip, nil between clips.
func (in *Instance) Clip() *skinning.AnimationClip { return in.clip }

// Frame returns the fractional playback row.
func (in *Instance) Frame() float32 { return in.frame }

// RepeatsLeft returns how many more times the current clip replays.
func (in *Instance) RepeatsLeft() int { return in.repeats }

// Visible reports whether the instance passed culling in the last Draw.
// Instances outside the army's active count report false.
func (in *Instance) Visible() bool { return in.visible }
