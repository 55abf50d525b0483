package scene

import (
	"fmt"
	"slices"

	"github.com/Faultbox/organism/internal/engine/shader"
)

// ElapsedTimeUniforms is the uniform block carrying the frame clock.
const ElapsedTimeUniforms = "ElapsedTime"

// MaterialOptions declares what a shader material consumes.
type MaterialOptions struct {
	Attributes     []string
	UniformBuffers []string
}

// DefaultMaterialOptions is the layout of the full-viewport organism material.
func DefaultMaterialOptions() MaterialOptions {
	return MaterialOptions{
		Attributes:     []string{"position", "normal", "uv"},
		UniformBuffers: []string{SceneUniforms, MeshUniforms, ElapsedTimeUniforms},
	}
}

// ShaderMaterial binds a loaded shader module to its attribute and uniform
// declarations. It can only be built once the module is in the store.
type ShaderMaterial struct {
	Name    string
	Module  shader.Module
	Options MaterialOptions

	buffers map[string]*shader.UniformBuffer
}

// NewShaderMaterial resolves name in store. It fails with
// shader.ErrModuleNotLoaded when the module has not been registered yet.
func NewShaderMaterial(store *shader.Store, name string, opts MaterialOptions) (*ShaderMaterial, error) {
	mod, err := store.Module(name)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", name, err)
	}
	if len(opts.Attributes) == 0 {
		return nil, fmt.Errorf("material %s: no vertex attributes declared", name)
	}

	return &ShaderMaterial{
		Name:    name,
		Module:  mod,
		Options: opts,
		buffers: make(map[string]*shader.UniformBuffer),
	}, nil
}

// BindUniformBuffer attaches buf to a declared uniform block.
func (m *ShaderMaterial) BindUniformBuffer(name string, buf *shader.UniformBuffer) error {
	if !slices.Contains(m.Options.UniformBuffers, name) {
		return fmt.Errorf("material %s: uniform block %s not declared", m.Name, name)
	}
	if name == SceneUniforms || name == MeshUniforms {
		return fmt.Errorf("material %s: uniform block %s is supplied by the scene", m.Name, name)
	}
	m.buffers[name] = buf
	return nil
}

// UniformBuffer returns a buffer bound with BindUniformBuffer.
func (m *ShaderMaterial) UniformBuffer(name string) (*shader.UniformBuffer, bool) {
	buf, ok := m.buffers[name]
	return buf, ok
}

// Unbound lists declared material-level blocks with no buffer bound yet.
func (m *ShaderMaterial) Unbound() []string {
	var missing []string
	for _, name := range m.Options.UniformBuffers {
		if name == SceneUniforms || name == MeshUniforms {
			continue
		}
		if _, ok := m.buffers[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
