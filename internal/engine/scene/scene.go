// Package scene provides the minimal scene graph the viewer draws each frame:
// a root holding one active camera and a list of meshes with shader materials.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/organism/internal/engine/camera"
	"github.com/Faultbox/organism/internal/engine/shader"
)

// Uniform block names the renderer fills automatically.
const (
	SceneUniforms = "Scene"
	MeshUniforms  = "Mesh"
)

// ErrNoCamera is returned by Render when no active camera is set.
var ErrNoCamera = errors.New("scene has no active camera")

// Drawer issues the GPU work for one frame.
type Drawer interface {
	// AspectRatio is the drawable area's width over height.
	AspectRatio() float64
	BeginFrame()
	Draw(mesh *Mesh, sceneUniforms *shader.UniformBuffer) error
	EndFrame()
}

// Scene is the root of the scene graph.
type Scene struct {
	drawer   Drawer
	camera   *camera.OrbitCamera
	meshes   []*Mesh
	uniforms *shader.UniformBuffer
	frames   uint64
}

// New creates an empty scene drawn through d.
func New(d Drawer) *Scene {
	u := shader.NewUniformBuffer(SceneUniforms)
	for _, name := range []string{"viewProjection", "view", "projection"} {
		_ = u.AddMat4(name, identity)
	}
	u.Update()

	return &Scene{
		drawer:   d,
		uniforms: u,
	}
}

// SetActiveCamera selects the camera used for rendering.
func (s *Scene) SetActiveCamera(c *camera.OrbitCamera) {
	s.camera = c
}

// ActiveCamera returns the camera used for rendering.
func (s *Scene) ActiveCamera() *camera.OrbitCamera {
	return s.camera
}

// AddMesh appends a mesh. Meshes draw in insertion order.
func (s *Scene) AddMesh(m *Mesh) {
	s.meshes = append(s.meshes, m)
}

// Meshes returns the meshes in draw order.
func (s *Scene) Meshes() []*Mesh {
	return s.meshes
}

// Uniforms returns the Scene uniform block.
func (s *Scene) Uniforms() *shader.UniformBuffer {
	return s.uniforms
}

// Frames returns the number of frames rendered so far.
func (s *Scene) Frames() uint64 {
	return s.frames
}

// Render refreshes the camera and mesh uniform blocks and draws every
// visible mesh that has a material.
func (s *Scene) Render() error {
	if s.camera == nil {
		return ErrNoCamera
	}

	aspect := float32(s.drawer.AspectRatio())
	view := s.camera.ViewMatrix()
	proj := s.camera.ProjectionMatrix(aspect)
	_ = s.uniforms.UpdateMat4("viewProjection", proj.Mul(view))
	_ = s.uniforms.UpdateMat4("view", view)
	_ = s.uniforms.UpdateMat4("projection", proj)

	s.drawer.BeginFrame()
	defer s.drawer.EndFrame()

	for _, m := range s.meshes {
		if !m.Visible || m.Material == nil {
			continue
		}
		m.syncUniforms()
		if err := s.drawer.Draw(m, s.uniforms); err != nil {
			return fmt.Errorf("drawing %s: %w", m.Name, err)
		}
	}

	s.frames++
	return nil
}
