package debug

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/organism/internal/engine/scene"
	"github.com/Faultbox/organism/internal/engine/shader"
)

func TestGenerateAxesVertices(t *testing.T) {
	v := GenerateAxesVertices(2)
	if len(v) != AxesVertexCount*6 {
		t.Fatalf("len = %d, want %d", len(v), AxesVertexCount*6)
	}

	// Each axis ends at length along its own direction, in its own color.
	ends := [][6]float32{
		{2, 0, 0, 1, 0, 0},
		{0, 2, 0, 0, 1, 0},
		{0, 0, 2, 0, 0, 1},
	}
	for i, want := range ends {
		off := (i*2 + 1) * 6
		var got [6]float32
		copy(got[:], v[off:off+6])
		if got != want {
			t.Errorf("axis %d end = %v, want %v", i, got, want)
		}
	}
}

func TestNewAxesViewer(t *testing.T) {
	store := shader.NewStore()
	if _, err := NewAxesViewer(store, 1); !errors.Is(err, shader.ErrModuleNotLoaded) {
		t.Fatalf("err = %v, want ErrModuleNotLoaded", err)
	}

	if err := store.Register(shader.GLSL, map[string]string{AxesModule: "#version 410 core\n"}); err != nil {
		t.Fatal(err)
	}
	m, err := NewAxesViewer(store, 1)
	if err != nil {
		t.Fatalf("NewAxesViewer: %v", err)
	}
	if m.Primitive != scene.Lines {
		t.Error("axes should draw as lines")
	}
	if m.VertexCount() != AxesVertexCount {
		t.Errorf("VertexCount() = %d", m.VertexCount())
	}
	if len(m.Material.Unbound()) != 0 {
		t.Errorf("axes material needs no extra blocks, got %v", m.Material.Unbound())
	}
}

func TestCaptureFromPixelsFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "organism")
	sc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue (GL order).
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if !strings.HasSuffix(path, "organism_2026-01-02_03-04-05.000.png") {
		t.Errorf("unexpected filename %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	r, _, b, _ := img.At(0, 0).RGBA()
	if b == 0 || r != 0 {
		t.Error("top row should be blue after flip")
	}
	r, _, b, _ = img.At(0, 1).RGBA()
	if r == 0 || b != 0 {
		t.Error("bottom row should be red after flip")
	}
}

func TestCaptureFromPixelsSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "x")
	if _, err := sc.CaptureFromPixels(make([]byte, 3), 1, 1); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestCaptureFromPixelsEncodeFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "empty")

	// A 0x0 image passes the size check but cannot be encoded.
	if _, err := sc.CaptureFromPixels(nil, 0, 0); err == nil {
		t.Fatal("expected encoding error for empty image")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("partial file left behind: %v", entries)
	}
}
