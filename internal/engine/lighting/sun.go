// Package lighting provides the directional light for the crowd shader.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to a unit
// vector pointing towards the sun. Longitude turns around Y starting at +Z,
// latitude is elevation above the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := longitude * math32.Pi / 180
	lat := latitude * math32.Pi / 180

	return math.Vec3{
		X: math32.Cos(lat) * math32.Sin(lon),
		Y: math32.Sin(lat),
		Z: math32.Cos(lat) * math32.Cos(lon),
	}
}

// LightDirection is the direction sunlight travels, the shader's uLightDir.
func LightDirection(longitude, latitude float32) math.Vec3 {
	return SunDirection(longitude, latitude).Scale(-1)
}
