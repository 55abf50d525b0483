package shader

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/Faultbox/organism/internal/logger"
)

// LoadModules finds every file in fsys matching pattern and returns its text
// keyed by base name without extension. "**" in the pattern matches any
// number of directories, including none.
//
// Any unreadable or empty file fails the whole load.
func LoadModules(ctx context.Context, fsys fs.FS, pattern string, lang Language) (map[string]string, error) {
	if !lang.Supported() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	paths, err := globFS(fsys, pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoShaders, pattern)
	}

	modules := make(map[string]string, len(paths))
	origin := make(map[string]string, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading shader %s: %w", p, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyShader, p)
		}

		name := moduleName(p)
		if prev, ok := origin[name]; ok {
			return nil, fmt.Errorf("%w: %s (%s, %s)", ErrDuplicateModule, name, prev, p)
		}
		origin[name] = p
		modules[name] = string(data)
	}

	return modules, nil
}

func moduleName(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// globFS walks fsys and returns the regular files matching pattern.
func globFS(fsys fs.FS, pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(pattern, "./")

	var matchers []glob.Glob
	for _, p := range patternVariants(pattern) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid shader pattern %q: %w", pattern, err)
		}
		matchers = append(matchers, g)
	}

	var matches []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, g := range matchers {
			if g.Match(p) {
				matches = append(matches, p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering shaders: %w", err)
	}
	return matches, nil
}

// patternVariants expands every "**/" in pattern to both itself and nothing,
// so each "**" segment can independently match zero directories.
func patternVariants(pattern string) []string {
	parts := strings.Split(pattern, "**/")
	variants := []string{parts[0]}
	for _, part := range parts[1:] {
		next := make([]string, 0, 2*len(variants))
		for _, v := range variants {
			next = append(next, v+"**/"+part, v+part)
		}
		variants = next
	}
	return variants
}

// Loader discovers shader modules and registers them with a Store.
type Loader struct {
	FS       fs.FS
	Pattern  string
	Language Language
	Store    *Store
}

// Load starts discovery in the background. The returned channel yields
// exactly one value (nil on success) and is then closed.
func (l *Loader) Load(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)

		log := logger.Named("shader")
		modules, err := LoadModules(ctx, l.FS, l.Pattern, l.Language)
		if err != nil {
			done <- err
			return
		}
		if err := l.Store.Register(l.Language, modules); err != nil {
			done <- err
			return
		}

		log.Info("shader modules loaded",
			zap.Int("count", len(modules)),
			zap.String("pattern", l.Pattern),
			zap.String("language", string(l.Language)),
		)
		done <- nil
	}()

	return done
}
