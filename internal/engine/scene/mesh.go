package scene

import (
	"github.com/Faultbox/organism/internal/engine/shader"
	"github.com/Faultbox/organism/pkg/math"
)

var identity = math.Identity()

// Primitive is the topology a mesh is drawn with.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// VertexAttribute is one interleaved component of a vertex.
type VertexAttribute struct {
	Name string
	Size int // float32 components
}

// Mesh is interleaved vertex data placed in the world by Position and Scaling.
type Mesh struct {
	Name       string
	Attributes []VertexAttribute
	Vertices   []float32
	Indices    []uint32
	Primitive  Primitive

	Position math.Vec3
	Scaling  math.Vec3
	Visible  bool
	Material *ShaderMaterial

	uniforms *shader.UniformBuffer
}

// NewMesh creates a visible mesh at the origin with unit scaling.
func NewMesh(name string, attrs []VertexAttribute, vertices []float32, indices []uint32, prim Primitive) *Mesh {
	u := shader.NewUniformBuffer(MeshUniforms)
	_ = u.AddMat4("world", identity)
	u.Update()

	return &Mesh{
		Name:       name,
		Attributes: attrs,
		Vertices:   vertices,
		Indices:    indices,
		Primitive:  prim,
		Scaling:    math.Vec3{X: 1, Y: 1, Z: 1},
		Visible:    true,
		uniforms:   u,
	}
}

// Stride returns the number of floats per vertex.
func (m *Mesh) Stride() int {
	n := 0
	for _, a := range m.Attributes {
		n += a.Size
	}
	return n
}

// AttributeOffset returns the float offset of the named attribute within a vertex.
func (m *Mesh) AttributeOffset(name string) (offset, size int, ok bool) {
	for _, a := range m.Attributes {
		if a.Name == name {
			return offset, a.Size, true
		}
		offset += a.Size
	}
	return 0, 0, false
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	s := m.Stride()
	if s == 0 {
		return 0
	}
	return len(m.Vertices) / s
}

// SetScaling sets the X and Y scale, leaving Z untouched.
func (m *Mesh) SetScaling(x, y float32) {
	m.Scaling.X = x
	m.Scaling.Y = y
}

// WorldMatrix returns translation * scale.
func (m *Mesh) WorldMatrix() math.Mat4 {
	return math.Translate(m.Position.X, m.Position.Y, m.Position.Z).
		Mul(math.Scale(m.Scaling.X, m.Scaling.Y, m.Scaling.Z))
}

// Uniforms returns the Mesh uniform block.
func (m *Mesh) Uniforms() *shader.UniformBuffer {
	return m.uniforms
}

func (m *Mesh) syncUniforms() {
	_ = m.uniforms.UpdateMat4("world", m.WorldMatrix())
}

// PlaneAttributes is the vertex layout produced by CreatePlane.
var PlaneAttributes = []VertexAttribute{
	{Name: "position", Size: 3},
	{Name: "normal", Size: 3},
	{Name: "uv", Size: 2},
}

// CreatePlane builds a square in the XY plane centered on the origin,
// facing +Z, with edge length size.
func CreatePlane(name string, size float32) *Mesh {
	h := size / 2
	vertices := []float32{
		// position    normal   uv
		-h, -h, 0, 0, 0, 1, 0, 0,
		h, -h, 0, 0, 0, 1, 1, 0,
		h, h, 0, 0, 0, 1, 1, 1,
		-h, h, 0, 0, 0, 1, 0, 1,
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	return NewMesh(name, PlaneAttributes, vertices, indices, Triangles)
}
