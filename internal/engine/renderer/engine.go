// Package renderer is the OpenGL engine the viewer runs on: it owns the
// window, drives the frame loop and draws scene meshes.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/organism/internal/engine/input"
	"github.com/Faultbox/organism/internal/engine/window"
	"github.com/Faultbox/organism/internal/logger"
)

// ErrNotInitialized is returned by calls that need a GL context before Init.
var ErrNotInitialized = errors.New("engine not initialized")

// Config holds engine configuration.
type Config struct {
	Window     window.Config
	ClearColor [4]float32
	FPSLimit   int  // 0 = uncapped
	LogFPS     bool // periodic frame rate at debug level
}

// Engine wraps the window, the GL state and the render loop.
// All methods must be called from the main thread.
type Engine struct {
	config Config
	window *window.Window
	input  *input.Input
	ready  bool

	resizeHandlers []func()
	keyHandlers    map[input.Key][]func()
	stop           bool

	programs map[programKey]*program
	meshes   map[meshKey]*meshBuffers
	buffers  map[bufferKey]uint32
}

// New creates an engine. Nothing touches SDL or GL until Init.
func New(cfg Config) *Engine {
	return &Engine{
		config:      cfg,
		keyHandlers: make(map[input.Key][]func()),
		programs:    make(map[programKey]*program),
		meshes:      make(map[meshKey]*meshBuffers),
		buffers:     make(map[bufferKey]uint32),
	}
}

// Init creates the window and GL context and sets the default GL state.
func (e *Engine) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	e.window, err = window.New(e.config.Window)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	if err := gl.Init(); err != nil {
		e.window.Close()
		e.window = nil
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	// A single full-screen layer plus overlays drawn in order.
	gl.Disable(gl.DEPTH_TEST)
	c := e.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])

	e.input = input.New()
	e.ready = true
	e.Resize()
	return nil
}

// Ready reports whether Init succeeded.
func (e *Engine) Ready() bool {
	return e.ready
}

// RenderingAreaSize returns the drawable size in pixels. ok is false before
// Init or while the window reports an empty drawable.
func (e *Engine) RenderingAreaSize() (width, height int, ok bool) {
	if !e.ready {
		return 0, 0, false
	}
	width, height = e.window.DrawableSize()
	if width <= 0 || height <= 0 {
		return width, height, false
	}
	return width, height, true
}

// AspectRatio returns the drawable width over height, 1.0 when unmeasurable.
func (e *Engine) AspectRatio() float64 {
	w, h, ok := e.RenderingAreaSize()
	if !ok {
		return 1.0
	}
	return float64(w) / float64(h)
}

// Resize matches the GL viewport to the drawable.
func (e *Engine) Resize() {
	w, h, ok := e.RenderingAreaSize()
	if !ok {
		return
	}
	gl.Viewport(0, 0, int32(w), int32(h))
	logger.Debug("engine resized", zap.Int("width", w), zap.Int("height", h))
}

// OnWindowResize registers fn to run after the engine resized itself.
func (e *Engine) OnWindowResize(fn func()) {
	e.resizeHandlers = append(e.resizeHandlers, fn)
}

// OnKey registers fn for presses of key.
func (e *Engine) OnKey(key input.Key, fn func()) {
	e.keyHandlers[key] = append(e.keyHandlers[key], fn)
}

// Stop ends the render loop after the current frame.
func (e *Engine) Stop() {
	e.stop = true
}

// RunRenderLoop calls frame once per display refresh with the measured
// delta in milliseconds, then presents. It returns nil when the window is
// closed or Stop is called, ctx.Err() when ctx is done, and the first
// frame error otherwise.
func (e *Engine) RunRenderLoop(ctx context.Context, frame func(deltaMs float64) error) error {
	if !e.ready {
		return ErrNotInitialized
	}

	var minFrame time.Duration
	if e.config.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(e.config.FPSLimit)
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime
	e.stop = false

	logger.Info("starting render loop", zap.Int("fps_limit", e.config.FPSLimit))

	for !e.stop {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := time.Now()
		dt := float64(now.Sub(lastTime)) / float64(time.Millisecond)
		lastTime = now

		if e.input.Update() {
			logger.Info("window closed")
			return nil
		}
		e.dispatch(e.input.Events())
		if e.stop {
			break
		}

		if err := frame(dt); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		e.window.SwapBuffers()

		frameCount++
		if e.config.LogFPS && time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt)))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if minFrame > 0 {
			if spent := time.Since(now); spent < minFrame {
				time.Sleep(minFrame - spent)
			}
		}
	}

	return nil
}

func (e *Engine) dispatch(events []input.Event) {
	for _, ev := range events {
		switch ev.Type {
		case input.EventWindowResize:
			e.Resize()
			for _, fn := range e.resizeHandlers {
				fn()
			}
		case input.EventKeyDown:
			for _, fn := range e.keyHandlers[ev.Key] {
				fn()
			}
		}
	}
}

// ReadPixels reads the back buffer as RGBA, bottom row first.
func (e *Engine) ReadPixels() ([]byte, int, int, error) {
	w, h, ok := e.RenderingAreaSize()
	if !ok {
		return nil, 0, 0, ErrNotInitialized
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h, nil
}

// Close releases GL resources and destroys the window.
func (e *Engine) Close() {
	if !e.ready {
		return
	}
	logger.Info("closing engine")

	e.releaseResources()
	e.window.Close()
	e.ready = false
}
