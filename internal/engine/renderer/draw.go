package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/organism/internal/engine/scene"
	"github.com/Faultbox/organism/internal/engine/shader"
	"github.com/Faultbox/organism/internal/logger"
)

type (
	programKey = *scene.ShaderMaterial
	meshKey    = *scene.Mesh
	bufferKey  = *shader.UniformBuffer
)

type program struct {
	id uint32
}

type meshBuffers struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
	mode          uint32
}

// BeginFrame clears the back buffer.
func (e *Engine) BeginFrame() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// EndFrame finishes the current frame. Presentation happens in the loop.
func (e *Engine) EndFrame() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// Draw draws one mesh with its material. Programs, vertex buffers and
// uniform buffers are created on first use and cached.
func (e *Engine) Draw(mesh *scene.Mesh, sceneUniforms *shader.UniformBuffer) error {
	if !e.ready {
		return ErrNotInitialized
	}
	mat := mesh.Material

	p, err := e.program(mat)
	if err != nil {
		return err
	}
	gl.UseProgram(p.id)

	for i, name := range mat.Options.UniformBuffers {
		var buf *shader.UniformBuffer
		switch name {
		case scene.SceneUniforms:
			buf = sceneUniforms
		case scene.MeshUniforms:
			buf = mesh.Uniforms()
		default:
			var ok bool
			if buf, ok = mat.UniformBuffer(name); !ok {
				return fmt.Errorf("material %s: uniform block %s has no buffer bound", mat.Name, name)
			}
		}
		ubo, err := e.upload(buf)
		if err != nil {
			return err
		}
		gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(i), ubo)
	}

	mb, err := e.meshBuffers(mesh)
	if err != nil {
		return err
	}
	gl.BindVertexArray(mb.vao)
	if mb.indexed {
		gl.DrawElementsWithOffset(mb.mode, mb.count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(mb.mode, 0, mb.count)
	}
	return nil
}

func (e *Engine) program(mat *scene.ShaderMaterial) (*program, error) {
	if p, ok := e.programs[mat]; ok {
		return p, nil
	}

	id, err := compileProgram(mat.Module, mat.Options.Attributes)
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", mat.Name, err)
	}

	for i, name := range mat.Options.UniformBuffers {
		idx := gl.GetUniformBlockIndex(id, gl.Str(name+"\x00"))
		if idx == gl.INVALID_INDEX {
			// Declared but optimized out by the driver.
			logger.Debug("uniform block inactive", zap.String("material", mat.Name), zap.String("block", name))
			continue
		}
		gl.UniformBlockBinding(id, idx, uint32(i))
	}

	p := &program{id: id}
	e.programs[mat] = p
	logger.Debug("shader program created", zap.String("material", mat.Name), zap.Uint32("program", id))
	return p, nil
}

// upload returns the GL buffer for u, creating it or refreshing its
// contents when u changed since the last upload.
func (e *Engine) upload(u *shader.UniformBuffer) (uint32, error) {
	if !u.Final() {
		return 0, fmt.Errorf("uniform buffer %s used before Update", u.Name())
	}
	data := u.Data()

	ubo, ok := e.buffers[u]
	if !ok {
		gl.GenBuffers(1, &ubo)
		gl.BindBuffer(gl.UNIFORM_BUFFER, ubo)
		gl.BufferData(gl.UNIFORM_BUFFER, len(data)*4, gl.Ptr(data), gl.DYNAMIC_DRAW)
		gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
		e.buffers[u] = ubo
		u.MarkUploaded()
		return ubo, nil
	}

	if u.Dirty() {
		gl.BindBuffer(gl.UNIFORM_BUFFER, ubo)
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data)*4, gl.Ptr(data))
		gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
		u.MarkUploaded()
	}
	return ubo, nil
}

// meshBuffers uploads mesh geometry, binding each material attribute to the
// location it was given at link time.
func (e *Engine) meshBuffers(mesh *scene.Mesh) (*meshBuffers, error) {
	if mb, ok := e.meshes[mesh]; ok {
		return mb, nil
	}
	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("mesh %s has no vertices", mesh.Name)
	}

	mb := &meshBuffers{mode: gl.TRIANGLES}
	if mesh.Primitive == scene.Lines {
		mb.mode = gl.LINES
	}

	gl.GenVertexArrays(1, &mb.vao)
	gl.BindVertexArray(mb.vao)

	gl.GenBuffers(1, &mb.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*4, gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	stride := int32(mesh.Stride() * 4)
	for loc, name := range mesh.Material.Options.Attributes {
		offset, size, ok := mesh.AttributeOffset(name)
		if !ok {
			gl.BindVertexArray(0)
			return nil, fmt.Errorf("mesh %s lacks attribute %s required by material %s", mesh.Name, name, mesh.Material.Name)
		}
		gl.VertexAttribPointerWithOffset(uint32(loc), int32(size), gl.FLOAT, false, stride, uintptr(offset*4))
		gl.EnableVertexAttribArray(uint32(loc))
	}

	if len(mesh.Indices) > 0 {
		gl.GenBuffers(1, &mb.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
		mb.indexed = true
		mb.count = int32(len(mesh.Indices))
	} else {
		mb.count = int32(mesh.VertexCount())
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	e.meshes[mesh] = mb
	logger.Debug("mesh uploaded",
		zap.String("mesh", mesh.Name),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Uint32("vao", mb.vao),
	)
	return mb, nil
}

func (e *Engine) releaseResources() {
	for _, mb := range e.meshes {
		gl.DeleteVertexArrays(1, &mb.vao)
		gl.DeleteBuffers(1, &mb.vbo)
		if mb.ebo != 0 {
			gl.DeleteBuffers(1, &mb.ebo)
		}
	}
	for _, ubo := range e.buffers {
		gl.DeleteBuffers(1, &ubo)
	}
	for _, p := range e.programs {
		gl.DeleteProgram(p.id)
	}
	clear(e.meshes)
	clear(e.buffers)
	clear(e.programs)
}
