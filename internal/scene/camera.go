package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective fly camera. Yaw/Pitch are in degrees; yaw 0 looks
// down -Z with the usual right-handed GL convention.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32
}

func NewCamera(pos mgl32.Vec3, aspect float32) *Camera {
	return &Camera{
		Position: pos,
		Yaw:      -90,
		FOV:      70,
		Aspect:   aspect,
		Near:     0.1,
		Far:      512,
	}
}

// Front returns the unit view direction derived from yaw and pitch.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view, the matrix frustum planes are
// extracted from.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// SetViewport updates the aspect ratio from pixel dimensions.
func (c *Camera) SetViewport(width, height int) {
	if height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}
