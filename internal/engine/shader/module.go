// Package shader holds shader source modules and CPU-side uniform buffers.
//
// Modules are discovered once at startup, registered in a Store and then
// resolved by name when a material is built. GPU compilation and buffer
// upload live in the renderer; nothing here touches the GL context.
package shader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Language is a shading language tag.
type Language string

const (
	GLSL Language = "glsl"
	WGSL Language = "wgsl"
)

// Supported reports whether the renderer can compile sources in this language.
func (l Language) Supported() bool {
	return l == GLSL
}

// Stage is a programmable pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	if s == VertexStage {
		return "vertex"
	}
	return "fragment"
}

func (s Stage) define() string {
	if s == VertexStage {
		return "VERTEX_STAGE"
	}
	return "FRAGMENT_STAGE"
}

var (
	ErrModuleNotLoaded     = errors.New("shader module not loaded")
	ErrNoShaders           = errors.New("no shader sources matched")
	ErrEmptyShader         = errors.New("shader source is empty")
	ErrDuplicateModule     = errors.New("duplicate shader module")
	ErrUnsupportedLanguage = errors.New("unsupported shader language")
)

// Module is one loaded shader source. A single source serves both stages.
type Module struct {
	Name     string
	Language Language
	Source   string
}

// StageSource returns the module source specialised for one stage by
// defining VERTEX_STAGE or FRAGMENT_STAGE right after the #version line.
func (m Module) StageSource(stage Stage) string {
	define := "#define " + stage.define() + "\n"

	src := m.Source
	if !strings.HasPrefix(strings.TrimLeft(src, " \t\r\n"), "#version") {
		return define + src
	}
	start := strings.Index(src, "#version")
	end := strings.IndexByte(src[start:], '\n')
	if end < 0 {
		return src + "\n" + define
	}
	end += start + 1
	return src[:end] + define + src[end:]
}

// Store is the registry materials resolve module names against.
type Store struct {
	mu      sync.RWMutex
	modules map[string]Module
	loaded  bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{modules: make(map[string]Module)}
}

// Register adds a batch of sources under one language and marks the store loaded.
// Names already present are rejected; the store is left untouched on error.
func (s *Store) Register(lang Language, sources map[string]string) error {
	if !lang.Supported() {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range sources {
		if _, ok := s.modules[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateModule, name)
		}
	}
	for name, src := range sources {
		s.modules[name] = Module{Name: name, Language: lang, Source: src}
	}
	s.loaded = true
	return nil
}

// Module resolves a module by name.
func (s *Store) Module(name string) (Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.modules[name]
	if !ok {
		return Module{}, fmt.Errorf("%w: %s", ErrModuleNotLoaded, name)
	}
	return m, nil
}

// Loaded reports whether at least one batch has been registered.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Names returns the registered module names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
