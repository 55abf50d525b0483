// Package camera provides the orbiting orthographic camera the viewer frames its surface with.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/organism/pkg/math"
)

// Mode selects the projection a camera produces.
type Mode int

const (
	Perspective Mode = iota
	Orthographic
)

// OrbitCamera orbits a target point on a sphere of the given radius.
//
// Alpha is the longitudinal angle in the XZ plane, Beta the latitudinal angle
// from +Y. Alpha = -π/2, Beta = π/2 places the eye on +Z looking down -Z.
// In orthographic mode the projection is taken from the four Ortho planes,
// which are written by the framing controller and only stored here.
type OrbitCamera struct {
	Name   string
	Target math.Vec3
	Alpha  float32
	Beta   float32
	Radius float32

	Mode        Mode
	OrthoLeft   float32
	OrthoRight  float32
	OrthoTop    float32
	OrthoBottom float32

	FovY float32 // Perspective only, radians
	MinZ float32
	MaxZ float32
}

// NewOrbitCamera creates a perspective camera at the given angles and radius.
func NewOrbitCamera(name string, alpha, beta, radius float32, target math.Vec3) *OrbitCamera {
	return &OrbitCamera{
		Name:   name,
		Target: target,
		Alpha:  alpha,
		Beta:   beta,
		Radius: radius,
		Mode:   Perspective,
		FovY:   0.8,
		MinZ:   0.1,
		MaxZ:   100,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sinB := math32.Sin(c.Beta)
	return math.Vec3{
		X: c.Target.X + c.Radius*math32.Cos(c.Alpha)*sinB,
		Y: c.Target.Y + c.Radius*math32.Cos(c.Beta),
		Z: c.Target.Z - c.Radius*math32.Sin(c.Alpha)*sinB,
	}
}

// SetTarget points the camera at a new target, keeping its angles and radius.
func (c *OrbitCamera) SetTarget(target math.Vec3) {
	c.Target = target
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position(), c.Target, up)
}

// ProjectionMatrix returns the projection for the current mode.
// aspect is only consulted in perspective mode.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if c.Mode == Orthographic {
		return math.Ortho(c.OrthoLeft, c.OrthoRight, c.OrthoBottom, c.OrthoTop, c.MinZ, c.MaxZ)
	}
	f := 1 / math32.Tan(c.FovY/2)
	nf := 1.0 / (c.MinZ - c.MaxZ)
	return math.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (c.MaxZ + c.MinZ) * nf, -1,
		0, 0, 2 * c.MaxZ * c.MinZ * nf, 0,
	}
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}
