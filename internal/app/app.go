// Package app sequences viewer startup and drives the per-frame work.
package app

import (
	"context"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/Faultbox/organism/internal/engine/camera"
	"github.com/Faultbox/organism/internal/engine/debug"
	"github.com/Faultbox/organism/internal/engine/framing"
	"github.com/Faultbox/organism/internal/engine/input"
	"github.com/Faultbox/organism/internal/engine/scene"
	"github.com/Faultbox/organism/internal/engine/shader"
	"github.com/Faultbox/organism/internal/engine/timefeed"
	"github.com/Faultbox/organism/internal/engine/viewport"
	"github.com/Faultbox/organism/internal/logger"
)

// Engine is what the viewer needs from the rendering engine.
type Engine interface {
	scene.Drawer
	viewport.SizeSource

	Init(ctx context.Context) error
	OnWindowResize(fn func())
	OnKey(key input.Key, fn func())
	Stop()
	RunRenderLoop(ctx context.Context, frame func(deltaMs float64) error) error
	ReadPixels() ([]byte, int, int, error)
}

// Options configures shader discovery and debug aids.
type Options struct {
	Shaders       fs.FS
	Pattern       string
	Language      shader.Language
	Module        string
	ShowAxes      bool
	ScreenshotDir string
}

// App owns the scene and the startup state machine.
type App struct {
	engine Engine
	opts   Options
	state  State
	log    *zap.Logger

	store    *shader.Store
	tracker  *viewport.Tracker
	framing  *framing.Controller
	scene    *scene.Scene
	camera   *camera.OrbitCamera
	surface  *scene.Mesh
	elapsed  *shader.UniformBuffer
	timeFeed *timefeed.TimeFeed

	screenshots    *debug.ScreenshotCapture
	capturePending bool
}

// New creates an app in the Uninitialized state.
func New(engine Engine, opts Options) *App {
	return &App{
		engine: engine,
		opts:   opts,
		state:  Uninitialized,
		log:    logger.Named("app"),
		store:  shader.NewStore(),
	}
}

// State returns the current startup phase.
func (a *App) State() State {
	return a.state
}

// Scene returns the scene root, nil before SceneBuilt.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Camera returns the framed orthographic camera.
func (a *App) Camera() *camera.OrbitCamera {
	return a.camera
}

// Surface returns the full-viewport plane.
func (a *App) Surface() *scene.Mesh {
	return a.surface
}

// TimeFeed returns the frame clock.
func (a *App) TimeFeed() *timefeed.TimeFeed {
	return a.timeFeed
}

// Run starts the viewer and blocks in the render loop.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	if err := a.advance(Rendering); err != nil {
		return err
	}
	return a.engine.RunRenderLoop(ctx, a.Frame)
}

// Start runs every startup phase up to SceneBuilt. Engine or shader
// failures abort before any scene object exists.
func (a *App) Start(ctx context.Context) error {
	if a.state != Uninitialized {
		return fmt.Errorf("start: already %s", a.state)
	}

	if err := a.engine.Init(ctx); err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	if err := a.advance(EngineReady); err != nil {
		return err
	}

	if err := a.loadShaders(ctx); err != nil {
		return fmt.Errorf("loading shaders: %w", err)
	}
	if err := a.advance(ShadersLoaded); err != nil {
		return err
	}

	if err := a.buildScene(); err != nil {
		return fmt.Errorf("building scene: %w", err)
	}
	return a.advance(SceneBuilt)
}

func (a *App) loadShaders(ctx context.Context) error {
	loader := &shader.Loader{
		FS:       a.opts.Shaders,
		Pattern:  a.opts.Pattern,
		Language: a.opts.Language,
		Store:    a.store,
	}

	select {
	case err := <-loader.Load(ctx):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) buildScene() error {
	a.scene = scene.New(a.engine)

	a.tracker = viewport.NewTracker(a.engine)
	a.engine.OnWindowResize(a.tracker.Notify)

	a.camera = framing.NewCamera("camera")
	a.scene.SetActiveCamera(a.camera)
	a.framing = framing.NewController()
	a.framing.AttachCamera(a.tracker, a.camera)

	a.elapsed = shader.NewUniformBuffer(scene.ElapsedTimeUniforms)
	if err := a.elapsed.AddScalar(timefeed.Slot, 0); err != nil {
		return err
	}
	a.elapsed.Update()

	feed, err := timefeed.New(a.elapsed, timefeed.Slot)
	if err != nil {
		return err
	}
	a.timeFeed = feed

	mat, err := scene.NewShaderMaterial(a.store, a.opts.Module, scene.DefaultMaterialOptions())
	if err != nil {
		return err
	}
	if err := mat.BindUniformBuffer(scene.ElapsedTimeUniforms, a.elapsed); err != nil {
		return err
	}

	a.surface = scene.CreatePlane("quad", framing.SurfaceSize)
	a.surface.Material = mat
	a.scene.AddMesh(a.surface)

	a.framing.AttachSurface(a.tracker, a.surface)

	if a.opts.ShowAxes {
		axes, err := debug.NewAxesViewer(a.store, framing.Radius/2)
		if err != nil {
			a.log.Warn("axes viewer disabled", zap.Error(err))
		} else {
			a.scene.AddMesh(axes)
		}
	}

	a.engine.OnKey(input.KeyEscape, a.engine.Stop)
	if a.opts.ScreenshotDir != "" {
		a.screenshots = debug.NewScreenshotCapture(a.opts.ScreenshotDir, a.opts.Module)
		a.engine.OnKey(input.KeyF12, func() { a.capturePending = true })
	}

	vp := a.tracker.Current()
	a.log.Info("scene built",
		zap.String("module", a.opts.Module),
		zap.Int("meshes", len(a.scene.Meshes())),
		zap.Int("width", vp.Width),
		zap.Int("height", vp.Height),
	)
	return nil
}

// Frame advances the clock by deltaMs and draws the scene.
func (a *App) Frame(deltaMs float64) error {
	a.timeFeed.Tick(deltaMs)
	if err := a.scene.Render(); err != nil {
		return err
	}

	if a.capturePending {
		a.capturePending = false
		a.capture()
	}
	return nil
}

func (a *App) capture() {
	pixels, w, h, err := a.engine.ReadPixels()
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	path, err := a.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close drops resize subscriptions. The engine is closed by its owner.
func (a *App) Close() {
	if a.framing != nil {
		a.framing.Close()
	}
}
