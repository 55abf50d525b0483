package shader

import (
	"errors"
	"testing"

	"github.com/Faultbox/organism/pkg/math"
)

func TestUniformBufferStd140Layout(t *testing.T) {
	u := NewUniformBuffer("Scene")
	if err := u.AddScalar("time", 0); err != nil {
		t.Fatal(err)
	}
	if err := u.AddMat4("world", math.Identity()); err != nil {
		t.Fatal(err)
	}
	if err := u.AddScalar("scale", 2); err != nil {
		t.Fatal(err)
	}
	u.Update()

	offsets := map[string]int{"time": 0, "world": 16, "scale": 80}
	for name, want := range offsets {
		got, ok := u.Offset(name)
		if !ok || got != want {
			t.Errorf("Offset(%s) = %d, %v; want %d", name, got, ok, want)
		}
	}
	// 21 floats padded to a whole vec4.
	if len(u.Data()) != 24 {
		t.Errorf("len(Data) = %d, want 24", len(u.Data()))
	}
	if u.Data()[4] != 1 || u.Data()[9] != 1 {
		t.Error("identity initial value not written")
	}
}

func TestUniformBufferScalarLifecycle(t *testing.T) {
	u := NewUniformBuffer("ElapsedTime")
	if err := u.AddScalar("time", 0); err != nil {
		t.Fatal(err)
	}
	u.Update()

	if !u.Final() || !u.Dirty() {
		t.Fatal("Update should finalize and mark dirty")
	}
	if len(u.Data()) != 4 {
		t.Errorf("single scalar block should pad to 4 floats, got %d", len(u.Data()))
	}
	u.MarkUploaded()

	if !u.UpdateScalar("time", 42.5) {
		t.Fatal("UpdateScalar(time) reported unknown field")
	}
	if v, _ := u.Scalar("time"); v != 42.5 {
		t.Errorf("Scalar(time) = %v, want 42.5", v)
	}
	if !u.Dirty() {
		t.Error("UpdateScalar should mark dirty")
	}

	if u.UpdateScalar("missing", 1) {
		t.Error("UpdateScalar on unknown field should report false")
	}
	if err := u.AddScalar("late", 0); !errors.Is(err, ErrBufferFinalized) {
		t.Errorf("AddScalar after Update: err = %v, want ErrBufferFinalized", err)
	}
}

func TestUniformBufferRejectsDuplicatesAndKindMismatch(t *testing.T) {
	u := NewUniformBuffer("Mesh")
	if err := u.AddMat4("world", math.Identity()); err != nil {
		t.Fatal(err)
	}
	if err := u.AddMat4("world", math.Identity()); err == nil {
		t.Error("duplicate field should fail")
	}
	if u.UpdateScalar("world", 1) {
		t.Error("UpdateScalar on a mat4 field should report false")
	}
	if err := u.UpdateMat4("nope", math.Identity()); !errors.Is(err, ErrUnknownUniform) {
		t.Errorf("err = %v, want ErrUnknownUniform", err)
	}
}

func TestEmptyUniformBufferPads(t *testing.T) {
	u := NewUniformBuffer("Empty")
	u.Update()
	if len(u.Data()) != 4 {
		t.Errorf("empty block should occupy one vec4, got %d floats", len(u.Data()))
	}
}
