package crowd

import "github.com/Faultbox/dwarfhorde/internal/engine/skinning"

// Rand is the random source used for spawning and clip selection.
// *golang.org/x/exp/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Policy picks the next clip from the squared distance to the target.
type Policy struct {
	NearDistanceSq float32 // closer than this: JumpCheer
	FarDistanceSq  float32 // closer than this: a Cheer
	LuckyChance    float64 // chance to act as if closer than a threshold
}

// DefaultPolicy matches the crowd behaviour tuned for the arena scene.
var DefaultPolicy = Policy{
	NearDistanceSq: 15000,
	FarDistanceSq:  50000,
	LuckyChance:    0.05,
}

var (
	cheerClips = [3]skinning.ClipID{skinning.ClipCheer1, skinning.ClipCheer2, skinning.ClipCheer3}
	idleClips  = [2]skinning.ClipID{skinning.ClipIdle1, skinning.ClipIdle2}
)

// Next returns the clip to play and how many extra times to replay it.
//
// Each threshold test takes its own random draw, and a draw is only taken
// when the distance test alone fails.
func (p Policy) Next(distanceSq float32, rng Rand) (skinning.ClipID, int) {
	if distanceSq < p.NearDistanceSq || rng.Float64() < p.LuckyChance {
		return skinning.ClipJumpCheer, 1
	}

	if distanceSq < p.FarDistanceSq || rng.Float64() < p.LuckyChance {
		return cheerClips[rng.Intn(len(cheerClips))], 1
	}

	// Idles are short, so they loop a while before the next pick.
	repeats := 5 + rng.Intn(5)
	return idleClips[rng.Intn(len(idleClips))], repeats
}
