package shader

import (
	"errors"
	"fmt"

	"github.com/Faultbox/organism/pkg/math"
)

var (
	ErrBufferFinalized = errors.New("uniform buffer layout is final")
	ErrUnknownUniform  = errors.New("unknown uniform")
)

type uniformKind int

const (
	kindScalar uniformKind = iota
	kindMat4
)

// Sizes and alignments in float32 units, std140 rules.
var kindLayout = map[uniformKind]struct{ size, align int }{
	kindScalar: {1, 1},
	kindMat4:   {16, 4},
}

type uniformField struct {
	kind   uniformKind
	offset int
}

// UniformBuffer is the CPU side of a std140 uniform block.
//
// Fields are declared with Add*, the layout is frozen by Update, and values
// are written with Update*. The renderer uploads Data whenever Dirty is set.
type UniformBuffer struct {
	name   string
	fields map[string]uniformField
	order  []string
	data   []float32
	final  bool
	dirty  bool
}

// NewUniformBuffer creates an empty buffer for the named uniform block.
func NewUniformBuffer(name string) *UniformBuffer {
	return &UniformBuffer{
		name:   name,
		fields: make(map[string]uniformField),
	}
}

// Name returns the uniform block name the buffer binds to.
func (u *UniformBuffer) Name() string {
	return u.name
}

// AddScalar declares a float field with an initial value.
func (u *UniformBuffer) AddScalar(name string, initial float32) error {
	off, err := u.add(name, kindScalar)
	if err != nil {
		return err
	}
	u.data[off] = initial
	return nil
}

// AddMat4 declares a mat4 field with an initial value.
func (u *UniformBuffer) AddMat4(name string, initial math.Mat4) error {
	off, err := u.add(name, kindMat4)
	if err != nil {
		return err
	}
	copy(u.data[off:off+16], initial[:])
	return nil
}

func (u *UniformBuffer) add(name string, kind uniformKind) (int, error) {
	if u.final {
		return 0, fmt.Errorf("%w: %s.%s", ErrBufferFinalized, u.name, name)
	}
	if _, ok := u.fields[name]; ok {
		return 0, fmt.Errorf("uniform %s.%s declared twice", u.name, name)
	}

	l := kindLayout[kind]
	off := len(u.data)
	if rem := off % l.align; rem != 0 {
		off += l.align - rem
	}
	u.data = append(u.data, make([]float32, off+l.size-len(u.data))...)

	u.fields[name] = uniformField{kind: kind, offset: off}
	u.order = append(u.order, name)
	return off, nil
}

// Update freezes the layout and pads the block to a whole vec4.
// Calling it again only marks the contents for upload.
func (u *UniformBuffer) Update() {
	if !u.final {
		if rem := len(u.data) % 4; rem != 0 || len(u.data) == 0 {
			u.data = append(u.data, make([]float32, 4-rem)...)
		}
		u.final = true
	}
	u.dirty = true
}

// UpdateScalar writes a float field. It reports false for undeclared names.
func (u *UniformBuffer) UpdateScalar(name string, value float32) bool {
	f, ok := u.fields[name]
	if !ok || f.kind != kindScalar {
		return false
	}
	u.data[f.offset] = value
	u.dirty = true
	return true
}

// UpdateMat4 writes a mat4 field.
func (u *UniformBuffer) UpdateMat4(name string, m math.Mat4) error {
	f, ok := u.fields[name]
	if !ok || f.kind != kindMat4 {
		return fmt.Errorf("%w: %s.%s", ErrUnknownUniform, u.name, name)
	}
	copy(u.data[f.offset:f.offset+16], m[:])
	u.dirty = true
	return nil
}

// Scalar reads back a float field.
func (u *UniformBuffer) Scalar(name string) (float32, bool) {
	f, ok := u.fields[name]
	if !ok || f.kind != kindScalar {
		return 0, false
	}
	return u.data[f.offset], true
}

// Offset returns the byte offset of a field within the block.
func (u *UniformBuffer) Offset(name string) (int, bool) {
	f, ok := u.fields[name]
	return f.offset * 4, ok
}

// Final reports whether Update has been called at least once.
func (u *UniformBuffer) Final() bool {
	return u.final
}

// Data returns the block contents. The slice is owned by the buffer.
func (u *UniformBuffer) Data() []float32 {
	return u.data
}

// Dirty reports whether the contents changed since the last upload.
func (u *UniformBuffer) Dirty() bool {
	return u.dirty
}

// MarkUploaded clears the dirty flag after the renderer copied Data to the GPU.
func (u *UniformBuffer) MarkUploaded() {
	u.dirty = false
}
