// Package framing keeps the orthographic camera and the full-viewport
// surface fitted to the current viewport.
package framing

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/organism/internal/engine/camera"
	"github.com/Faultbox/organism/internal/engine/viewport"
	"github.com/Faultbox/organism/internal/logger"
	"github.com/Faultbox/organism/pkg/math"
)

// Radius is the half-height of the visible world region.
const Radius = 4

// SurfaceSize is the unscaled edge of the full-viewport plane. It equals the
// orthographic view height, so a Y scale of 1 spans top to bottom exactly.
const SurfaceSize = 2 * Radius

// Frame is a set of orthographic clip planes.
type Frame struct {
	Left, Right, Top, Bottom float64
}

// OrthographicFrame returns the planes for a region of half-height radius
// stretched horizontally by aspect.
func OrthographicFrame(radius, aspect float64) Frame {
	return Frame{
		Left:   -radius * aspect,
		Right:  radius * aspect,
		Top:    radius,
		Bottom: -radius,
	}
}

// SurfaceScale returns the plane scale that spans a viewport of this aspect.
func SurfaceScale(aspect float64) math.Vec2 {
	return math.Vec2{X: float32(aspect), Y: 1}
}

// Surface is a drawable whose X/Y scale can be set.
type Surface interface {
	SetScaling(x, y float32)
}

// NewCamera returns an orthographic orbit camera on +Z looking at the origin.
func NewCamera(name string) *camera.OrbitCamera {
	c := camera.NewOrbitCamera(name, -0.5*gomath.Pi, 0.5*gomath.Pi, Radius, math.Vec3{})
	c.Mode = camera.Orthographic
	c.SetTarget(math.Vec3{})
	return c
}

// FitOrthographicCamera writes the clip planes for vp into cam.
func FitOrthographicCamera(cam *camera.OrbitCamera, vp viewport.Viewport) Frame {
	f := OrthographicFrame(Radius, vp.AspectRatio())
	cam.Mode = camera.Orthographic
	cam.OrthoLeft = float32(f.Left)
	cam.OrthoRight = float32(f.Right)
	cam.OrthoTop = float32(f.Top)
	cam.OrthoBottom = float32(f.Bottom)
	return f
}

// FitDrawSurface scales s to span vp edge to edge.
func FitDrawSurface(s Surface, vp viewport.Viewport) math.Vec2 {
	scale := SurfaceScale(vp.AspectRatio())
	s.SetScaling(scale.X, scale.Y)
	return scale
}

// Controller refits a camera and a surface on every resize event.
type Controller struct {
	disposers   []func()
	cameraFits  int
	surfaceFits int
}

// NewController creates a controller with nothing attached.
func NewController() *Controller {
	return &Controller{}
}

// Attach fits cam and then surface to the tracker's current viewport right
// away and again on each resize. Camera and surface hold separate
// subscriptions; within one event the camera is fitted before the surface.
func (c *Controller) Attach(t *viewport.Tracker, cam *camera.OrbitCamera, surface Surface) {
	c.AttachCamera(t, cam)
	c.AttachSurface(t, surface)
}

// AttachCamera fits cam now and on each resize. Attach the camera before the
// surface to keep the camera first within an event.
func (c *Controller) AttachCamera(t *viewport.Tracker, cam *camera.OrbitCamera) {
	log := logger.Named("framing")

	FitOrthographicCamera(cam, t.Current())
	c.cameraFits++

	c.disposers = append(c.disposers, t.OnResize(func(vp viewport.Viewport) {
		f := FitOrthographicCamera(cam, vp)
		c.cameraFits++
		log.Debug("camera fitted",
			zap.Float64("left", f.Left),
			zap.Float64("right", f.Right),
			zap.Float64("top", f.Top),
			zap.Float64("bottom", f.Bottom),
		)
	}))
}

// AttachSurface fits surface now and on each resize.
func (c *Controller) AttachSurface(t *viewport.Tracker, surface Surface) {
	log := logger.Named("framing")

	FitDrawSurface(surface, t.Current())
	c.surfaceFits++

	c.disposers = append(c.disposers, t.OnResize(func(vp viewport.Viewport) {
		scale := FitDrawSurface(surface, vp)
		c.surfaceFits++
		log.Debug("surface fitted", zap.Float32("scale_x", scale.X))
	}))
}

// CameraFits returns how many times the camera was fitted, eager fit included.
func (c *Controller) CameraFits() int {
	return c.cameraFits
}

// SurfaceFits returns how many times the surface was fitted, eager fit included.
func (c *Controller) SurfaceFits() int {
	return c.surfaceFits
}

// Close drops every resize subscription.
func (c *Controller) Close() {
	for _, d := range c.disposers {
		d()
	}
	c.disposers = nil
}
