package math

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float32
}

// Plane is a plane in the form Normal·p + D = 0 with a unit normal
// pointing into the frustum.
type Plane struct {
	Normal Vec3
	D      float32
}

// Distance returns the signed distance from the plane to p.
func (p Plane) Distance(v Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

func planeFromRow(r Vec4) Plane {
	n := Vec3{r[0], r[1], r[2]}
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Scale(1 / l), D: r[3] / l}
}

// Frustum holds the six clip planes of a view-projection matrix.
// Order: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustum extracts the frustum planes from a combined projection*view
// matrix using OpenGL clip space (-w <= z <= w).
func NewFrustum(viewProj Mat4) Frustum {
	r0 := viewProj.Row(0)
	r1 := viewProj.Row(1)
	r2 := viewProj.Row(2)
	r3 := viewProj.Row(3)

	return Frustum{Planes: [6]Plane{
		planeFromRow(r3.Add(r0)),
		planeFromRow(r3.Sub(r0)),
		planeFromRow(r3.Add(r1)),
		planeFromRow(r3.Sub(r1)),
		planeFromRow(r3.Add(r2)),
		planeFromRow(r3.Sub(r2)),
	}}
}

// IntersectsSphere reports whether the sphere is inside or touching the frustum.
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}
