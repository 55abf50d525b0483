// Package main is the entry point for the organism shader viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/organism/internal/app"
	"github.com/Faultbox/organism/internal/config"
	"github.com/Faultbox/organism/internal/engine/renderer"
	"github.com/Faultbox/organism/internal/engine/shader"
	"github.com/Faultbox/organism/internal/engine/window"
	"github.com/Faultbox/organism/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Organism ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func run(ctx context.Context, cfg *config.Config) error {
	engine := renderer.New(renderer.Config{
		Window: window.Config{
			Title:      cfg.Graphics.Title,
			Width:      cfg.Graphics.Width,
			Height:     cfg.Graphics.Height,
			Fullscreen: cfg.Graphics.Fullscreen,
			VSync:      cfg.Graphics.VSync,
		},
		ClearColor: cfg.Graphics.ClearColor,
		FPSLimit:   cfg.Graphics.FPSLimit,
		LogFPS:     cfg.Debug.LogFPS,
	})
	defer engine.Close()

	var shaders fs.FS = shader.Embedded
	if cfg.Shaders.Dir != "" {
		shaders = os.DirFS(cfg.Shaders.Dir)
		logger.Info("loading shaders from disk", zap.String("dir", cfg.Shaders.Dir))
	}

	viewer := app.New(engine, app.Options{
		Shaders:       shaders,
		Pattern:       cfg.Shaders.Pattern,
		Language:      shader.Language(cfg.Shaders.Language),
		Module:        cfg.Shaders.Module,
		ShowAxes:      cfg.Debug.ShowAxes,
		ScreenshotDir: cfg.Debug.ScreenshotDir,
	})
	defer viewer.Close()

	return viewer.Run(ctx)
}
