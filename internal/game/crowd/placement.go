package crowd

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/dwarfhorde/pkg/formats"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// PositionsFromPlacements converts authored placements to spawn points.
// Placements are authored Z-up, so translations are turned a quarter around X.
func PositionsFromPlacements(placements []formats.Placement) []math.Vec3 {
	zUpToYUp := math.RotateX(-math32.Pi / 2)

	out := make([]math.Vec3, len(placements))
	for i, p := range placements {
		t := p.Translation()
		out[i] = zUpToYUp.TransformVec3(math.Vec3{X: t[0], Y: t[1], Z: t[2]})
	}
	return out
}

// GridPositions lays count spawn points on a square grid centred on the
// origin, spacing units apart, in the XZ plane.
func GridPositions(count int, spacing float32) []math.Vec3 {
	side := 1
	for side*side < count {
		side++
	}
	half := float32(side-1) * spacing / 2

	out := make([]math.Vec3, count)
	for i := range out {
		out[i] = math.Vec3{
			X: float32(i%side)*spacing - half,
			Z: float32(i/side)*spacing - half,
		}
	}
	return out
}
