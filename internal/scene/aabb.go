package scene

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max mgl32.Vec3
}

func NewAABB(min, max mgl32.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) HalfExtents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Union returns the smallest box enclosing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{
			min32(b.Min.X(), other.Min.X()),
			min32(b.Min.Y(), other.Min.Y()),
			min32(b.Min.Z(), other.Min.Z()),
		},
		Max: mgl32.Vec3{
			max32(b.Max.X(), other.Max.X()),
			max32(b.Max.Y(), other.Max.Y()),
			max32(b.Max.Z(), other.Max.Z()),
		},
	}
}

// Contains reports whether other lies entirely inside b.
func (b AABB) Contains(other AABB) bool {
	return other.Min.X() >= b.Min.X() && other.Max.X() <= b.Max.X() &&
		other.Min.Y() >= b.Min.Y() && other.Max.Y() <= b.Max.Y() &&
		other.Min.Z() >= b.Min.Z() && other.Max.Z() <= b.Max.Z()
}

// Intersects reports whether the two boxes overlap.
func (b AABB) Intersects(other AABB) bool {
	return b.Min.X() <= other.Max.X() && b.Max.X() >= other.Min.X() &&
		b.Min.Y() <= other.Max.Y() && b.Max.Y() >= other.Min.Y() &&
		b.Min.Z() <= other.Max.Z() && b.Max.Z() >= other.Min.Z()
}

// Expanded returns the box scaled about its center by factor.
func (b AABB) Expanded(factor float32) AABB {
	c := b.Center()
	h := b.HalfExtents().Mul(factor)
	return AABB{Min: c.Sub(h), Max: c.Add(h)}
}

// DistSq returns the squared distance from p to the box's center.
func (b AABB) DistSq(p mgl32.Vec3) float32 {
	d := b.Center().Sub(p)
	return d.Dot(d)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
