package scene

import "github.com/go-gl/mathgl/mgl32"

// Plane is ax+by+cz+d = 0 with the normal pointing into the frustum, so a
// point is on the inside when Normal·p + D >= 0.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

func (p Plane) normalized() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / l), D: p.D / l}
}

// DistanceTo returns the signed distance from the plane to p.
func (p Plane) DistanceTo(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

// Frustum holds the six clip planes: left, right, bottom, top, near, far.
type Frustum [6]Plane

// ExtractFrustum pulls the planes out of a combined projection*view matrix
// using the clip-space row sums (Gribb/Hartmann). Works for any matrix that
// maps world space to GL clip space.
func ExtractFrustum(vp mgl32.Mat4) Frustum {
	r0 := vp.Row(0)
	r1 := vp.Row(1)
	r2 := vp.Row(2)
	r3 := vp.Row(3)

	plane := func(v mgl32.Vec4) Plane {
		return Plane{Normal: mgl32.Vec3{v.X(), v.Y(), v.Z()}, D: v.W()}.normalized()
	}
	return Frustum{
		plane(r3.Add(r0)), // left
		plane(r3.Sub(r0)), // right
		plane(r3.Add(r1)), // bottom
		plane(r3.Sub(r1)), // top
		plane(r3.Add(r2)), // near
		plane(r3.Sub(r2)), // far
	}
}

// ContainsPoint reports whether p is inside or on every plane.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, pl := range f {
		if pl.DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether the box overlaps the frustum. Uses the
// positive-vertex test: for each plane, pick the box corner furthest along
// the plane normal; if even that corner is outside, the whole box is.
// Conservative for boxes near frustum corners, which only costs a draw,
// never a missing one.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, pl := range f {
		p := b.Min
		if pl.Normal.X() >= 0 {
			p[0] = b.Max.X()
		}
		if pl.Normal.Y() >= 0 {
			p[1] = b.Max.Y()
		}
		if pl.Normal.Z() >= 0 {
			p[2] = b.Max.Z()
		}
		if pl.DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}
