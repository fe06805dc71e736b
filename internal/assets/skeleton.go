package assets

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// Dwarf skeleton bones. Parents come before their children.
const (
	BoneHips = iota
	BoneSpine
	BoneHead
	BoneLeftLeg
	BoneRightLeg
	BoneLeftArm
	BoneRightArm

	BoneCount
)

type bone struct {
	parent int
	pivot  math.Vec3
}

var dwarfSkeleton = [BoneCount]bone{
	BoneHips:     {parent: -1, pivot: math.Vec3{Y: 0.8}},
	BoneSpine:    {parent: BoneHips, pivot: math.Vec3{Y: 1.1}},
	BoneHead:     {parent: BoneSpine, pivot: math.Vec3{Y: 1.5}},
	BoneLeftLeg:  {parent: BoneHips, pivot: math.Vec3{X: -0.15, Y: 0.8}},
	BoneRightLeg: {parent: BoneHips, pivot: math.Vec3{X: 0.15, Y: 0.8}},
	BoneLeftArm:  {parent: BoneSpine, pivot: math.Vec3{X: -0.38, Y: 1.42}},
	BoneRightArm: {parent: BoneSpine, pivot: math.Vec3{X: 0.38, Y: 1.42}},
}

// pose holds a rotation per bone about its pivot plus a vertical lift of
// the whole body.
type pose struct {
	rotation [BoneCount]math.Mat4
	lift     float32
}

func restPose() pose {
	var p pose
	for i := range p.rotation {
		p.rotation[i] = math.Identity()
	}
	return p
}

// palette returns the model-space skinning matrix of every bone. The bind
// pose is the identity, so no inverse bind matrices are needed.
func (p *pose) palette() []math.Mat4 {
	out := make([]math.Mat4, BoneCount)
	for i, b := range dwarfSkeleton {
		local := math.Translate(b.pivot.X, b.pivot.Y, b.pivot.Z).
			Mul(p.rotation[i]).
			Mul(math.Translate(-b.pivot.X, -b.pivot.Y, -b.pivot.Z))
		if b.parent < 0 {
			out[i] = math.Translate(0, p.lift, 0).Mul(local)
			continue
		}
		out[i] = out[b.parent].Mul(local)
	}
	return out
}

// clipDef samples a looping clip at phase t in [0, 1).
type clipDef struct {
	name   string
	frames int
	sample func(t float32) pose
}

const clipFrameRate = 30

func wave(t float32) float32 { return math32.Sin(2 * math32.Pi * t) }

// armsUp raises both arms sideways by angle radians.
func armsUp(p *pose, angle float32) {
	p.rotation[BoneLeftArm] = math.RotateZ(-angle)
	p.rotation[BoneRightArm] = math.RotateZ(angle)
}

var dwarfClips = []clipDef{
	{skinning.ClipIdle1.String(), 40, func(t float32) pose {
		p := restPose()
		p.rotation[BoneSpine] = math.RotateX(0.03 * wave(t))
		armsUp(&p, 0.05+0.03*wave(t))
		return p
	}},
	{skinning.ClipIdle2.String(), 40, func(t float32) pose {
		p := restPose()
		p.rotation[BoneHead] = math.RotateY(0.5 * wave(t))
		p.rotation[BoneSpine] = math.RotateY(0.1 * wave(t))
		return p
	}},
	{skinning.ClipCheer1.String(), 30, func(t float32) pose {
		p := restPose()
		armsUp(&p, 2.6+0.3*wave(t))
		return p
	}},
	{skinning.ClipCheer2.String(), 30, func(t float32) pose {
		p := restPose()
		p.rotation[BoneRightArm] = math.RotateZ(2.4 + 0.6*wave(t))
		p.rotation[BoneSpine] = math.RotateZ(-0.08 * wave(t))
		return p
	}},
	{skinning.ClipCheer3.String(), 30, func(t float32) pose {
		p := restPose()
		armsUp(&p, 2.8)
		p.rotation[BoneSpine] = math.RotateZ(0.15 * wave(t))
		p.rotation[BoneHead] = math.RotateX(-0.2 * math32.Abs(wave(t)))
		return p
	}},
	{skinning.ClipJumpCheer.String(), 30, func(t float32) pose {
		p := restPose()
		arc := math32.Sin(math32.Pi * t)
		p.lift = 0.4 * arc
		armsUp(&p, 2.9)
		p.rotation[BoneLeftLeg] = math.RotateX(-0.3 * arc)
		p.rotation[BoneRightLeg] = math.RotateX(-0.3 * arc)
		return p
	}},
	{"Walk", 30, func(t float32) pose {
		p := restPose()
		swing := wave(t)
		p.rotation[BoneLeftLeg] = math.RotateX(0.5 * swing)
		p.rotation[BoneRightLeg] = math.RotateX(-0.5 * swing)
		p.rotation[BoneLeftArm] = math.RotateX(-0.4 * swing)
		p.rotation[BoneRightArm] = math.RotateX(0.4 * swing)
		return p
	}},
}

// BakeDwarfAnimations samples every dwarf clip into one animation texture
// and returns the clip table addressing it.
func BakeDwarfAnimations() (*skinning.Data, error) {
	var frames [][]math.Mat4
	clips := make(map[string]*skinning.AnimationClip, len(dwarfClips))

	for _, def := range dwarfClips {
		start := len(frames)
		for f := 0; f < def.frames; f++ {
			p := def.sample(float32(f) / float32(def.frames))
			frames = append(frames, p.palette())
		}
		clips[def.name] = &skinning.AnimationClip{
			Name:      def.name,
			Duration:  time.Duration(def.frames) * time.Second / clipFrameRate,
			StartRow:  start,
			EndRow:    len(frames),
			FrameRate: clipFrameRate,
		}
	}

	tex, err := skinning.Bake(frames)
	if err != nil {
		return nil, err
	}
	return skinning.New(tex, clips)
}
