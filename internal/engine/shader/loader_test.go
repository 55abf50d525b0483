package shader

import (
	"context"
	"errors"
	"io/fs"
	"slices"
	"testing"
	"testing/fstest"
	"time"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"material/organism.glsl":     {Data: []byte("#version 410 core\n// organism\n")},
		"material/debug/axes.glsl":   {Data: []byte("#version 410 core\n// axes\n")},
		"material/readme.txt":        {Data: []byte("not a shader")},
		"other/ignored.glsl":         {Data: []byte("#version 410 core\n")},
		"material/deep/er/cell.glsl": {Data: []byte("#version 410 core\n// cell\n")},
	}
}

func TestLoadModulesRecursiveGlob(t *testing.T) {
	mods, err := LoadModules(context.Background(), testFS(), "./material/**/*.glsl", GLSL)
	if err != nil {
		t.Fatalf("LoadModules: %v", err)
	}

	want := map[string]string{
		"organism": "#version 410 core\n// organism\n",
		"axes":     "#version 410 core\n// axes\n",
		"cell":     "#version 410 core\n// cell\n",
	}
	if len(mods) != len(want) {
		t.Fatalf("got %d modules %v, want %d", len(mods), mods, len(want))
	}
	for name, src := range want {
		if mods[name] != src {
			t.Errorf("module %s = %q, want %q", name, mods[name], src)
		}
	}
}

func TestLoadModulesFlatPattern(t *testing.T) {
	mods, err := LoadModules(context.Background(), testFS(), "material/*.glsl", GLSL)
	if err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	if len(mods) != 1 || mods["organism"] == "" {
		t.Errorf("expected only organism, got %v", mods)
	}
}

func TestLoadModulesRepeatedDoubleStar(t *testing.T) {
	fsys := fstest.MapFS{
		"a/b/x.glsl":   {Data: []byte("x")},
		"a/q/b/y.glsl": {Data: []byte("y")},
		"a/b/r/z.glsl": {Data: []byte("z")},
		"a/c/w.glsl":   {Data: []byte("w")},
	}

	mods, err := LoadModules(context.Background(), fsys, "a/**/b/**/*.glsl", GLSL)
	if err != nil {
		t.Fatalf("LoadModules: %v", err)
	}
	for _, name := range []string{"x", "y", "z"} {
		if mods[name] != name {
			t.Errorf("module %s = %q, want %q", name, mods[name], name)
		}
	}
	if _, ok := mods["w"]; ok {
		t.Error("w matched without a b directory")
	}
}

func TestPatternVariants(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"material/*.glsl", []string{"material/*.glsl"}},
		{"material/**/*.glsl", []string{"material/**/*.glsl", "material/*.glsl"}},
		{"a/**/b/**/*.glsl", []string{"a/**/b/**/*.glsl", "a/**/b/*.glsl", "a/b/**/*.glsl", "a/b/*.glsl"}},
	}

	for _, tt := range tests {
		got := patternVariants(tt.pattern)
		if !slices.Equal(got, tt.want) {
			t.Errorf("patternVariants(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestLoadModulesErrors(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fs.FS
		pattern string
		lang    Language
		want    error
	}{
		{
			name:    "no matches",
			fsys:    testFS(),
			pattern: "material/**/*.wgsl",
			lang:    GLSL,
			want:    ErrNoShaders,
		},
		{
			name:    "empty file",
			fsys:    fstest.MapFS{"material/organism.glsl": {Data: []byte("  \n")}},
			pattern: "material/**/*.glsl",
			lang:    GLSL,
			want:    ErrEmptyShader,
		},
		{
			name: "duplicate base name",
			fsys: fstest.MapFS{
				"material/a/organism.glsl": {Data: []byte("a")},
				"material/b/organism.glsl": {Data: []byte("b")},
			},
			pattern: "material/**/*.glsl",
			lang:    GLSL,
			want:    ErrDuplicateModule,
		},
		{
			name:    "unsupported language",
			fsys:    testFS(),
			pattern: "material/**/*.glsl",
			lang:    WGSL,
			want:    ErrUnsupportedLanguage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadModules(context.Background(), tt.fsys, tt.pattern, tt.lang)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadModulesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadModules(ctx, testFS(), "material/**/*.glsl", GLSL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoaderRegistersIntoStore(t *testing.T) {
	store := NewStore()
	l := &Loader{FS: testFS(), Pattern: "material/**/*.glsl", Language: GLSL, Store: store}

	select {
	case err := <-l.Load(context.Background()):
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loader did not complete")
	}

	if !store.Loaded() {
		t.Fatal("store not marked loaded")
	}
	if _, err := store.Module("organism"); err != nil {
		t.Errorf("organism not registered: %v", err)
	}
}

func TestLoaderFailureLeavesStoreEmpty(t *testing.T) {
	store := NewStore()
	l := &Loader{FS: fstest.MapFS{}, Pattern: "material/**/*.glsl", Language: GLSL, Store: store}

	err := <-l.Load(context.Background())
	if !errors.Is(err, ErrNoShaders) {
		t.Fatalf("err = %v, want ErrNoShaders", err)
	}
	if store.Loaded() {
		t.Error("store should not be loaded after a failed load")
	}
}

func TestEmbeddedModules(t *testing.T) {
	mods, err := LoadModules(context.Background(), Embedded, "material/**/*.glsl", GLSL)
	if err != nil {
		t.Fatalf("LoadModules(Embedded): %v", err)
	}
	for _, name := range []string{"organism", "axes"} {
		if mods[name] == "" {
			t.Errorf("embedded module %s missing", name)
		}
	}
}
