// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// MaxPitch bounds how far the camera looks up or down, in radians.
const MaxPitch = 1.4

// FirstPersonCamera moves on the ground plane and looks around from its
// position.
type FirstPersonCamera struct {
	Position math.Vec3
	Yaw      float32 // radians around Y, 0 looks down +X
	Pitch    float32 // radians, clamped to [-MaxPitch, MaxPitch]

	// Start is where Reset puts the camera.
	Start math.Vec3

	// Units per second and radians per mouse count.
	MoveSpeed       float32
	LookSensitivity float32
}

// NewFirstPersonCamera creates a camera at start looking down +X.
func NewFirstPersonCamera(start math.Vec3) *FirstPersonCamera {
	return &FirstPersonCamera{
		Position:        start,
		Start:           start,
		MoveSpeed:       50,
		LookSensitivity: 0.005,
	}
}

// Look turns the camera by a mouse delta.
func (c *FirstPersonCamera) Look(dx, dy float32) {
	c.Yaw += dx * c.LookSensitivity
	c.Pitch = math.Clamp(c.Pitch-dy*c.LookSensitivity, -MaxPitch, MaxPitch)
}

// Move walks along the ground plane: strafe to the right, forward along
// the view direction, both scaled by MoveSpeed*elapsed.
func (c *FirstPersonCamera) Move(strafe, forward, elapsed float32) {
	step := c.MoveSpeed * elapsed
	c.Position = c.Position.
		Add(c.Right().Scale(strafe * step)).
		Add(c.Forward().Scale(forward * step))
}

// Forward returns the horizontal view direction.
func (c *FirstPersonCamera) Forward() math.Vec3 {
	s, co := math32.Sincos(c.Yaw)
	return math.Vec3{X: co, Z: s}
}

// Right returns the horizontal direction a quarter turn from Forward.
func (c *FirstPersonCamera) Right() math.Vec3 {
	s, co := math32.Sincos(c.Yaw + math32.Pi/2)
	return math.Vec3{X: co, Z: s}
}

// Direction returns the point offset the camera looks at. Pitch lifts the
// target rather than rotating the forward vector.
func (c *FirstPersonCamera) Direction() math.Vec3 {
	f := c.Forward()
	f.Y = math32.Sin(c.Pitch)
	return f
}

// ViewMatrix returns the view matrix for this camera.
func (c *FirstPersonCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.Position.Add(c.Direction()), math.Vec3{Y: 1})
}

// Reset returns the camera to its start position and orientation.
func (c *FirstPersonCamera) Reset() {
	c.Position = c.Start
	c.Yaw = 0
	c.Pitch = 0
}
