// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Shaders  ShadersConfig  `yaml:"shaders"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Title      string     `yaml:"title"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	FPSLimit   int        `yaml:"fps_limit"`
	ClearColor [4]float32 `yaml:"clear_color"`
}

// ShadersConfig controls shader module discovery.
type ShadersConfig struct {
	Dir      string `yaml:"dir"`      // On-disk root; empty uses the embedded modules
	Pattern  string `yaml:"pattern"`  // Glob relative to Dir, "**" matches any depth
	Language string `yaml:"language"` // Source language tag
	Module   string `yaml:"module"`   // Module drawn on the full-viewport surface
}

// DebugConfig holds developer aids.
type DebugConfig struct {
	ShowAxes      bool   `yaml:"show_axes"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	LogFPS        bool   `yaml:"log_fps"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Title:      "Organism",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			ClearColor: [4]float32{0, 0, 0, 1},
		},
		Shaders: ShadersConfig{
			Pattern:  "material/**/*.glsl",
			Language: "glsl",
			Module:   "organism",
		},
		Debug: DebugConfig{
			ShowAxes:      true,
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
