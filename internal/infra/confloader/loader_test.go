package confloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithName("demo"),
		WithEnvPrefix("DEMO"),
		WithSearchPaths("/etc/demo"),
	)

	if l.envPrefix != "DEMO_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "DEMO_")
	}
	if diff := cmp.Diff([]string{"/etc/demo"}, l.SearchPaths()); diff != "" {
		t.Errorf("search paths (-want +got):\n%s", diff)
	}
}

func TestDefaultSearchPaths(t *testing.T) {
	if got := DefaultSearchPaths(""); len(got) != 1 || got[0] != "." {
		t.Errorf("DefaultSearchPaths(\"\") = %v, want [.]", got)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))

	got := DefaultSearchPaths("demo")
	if got[0] != "." {
		t.Errorf("first search path = %q, want working directory", got[0])
	}
	if got[len(got)-1] != filepath.Join(home, ".demo") {
		t.Errorf("last search path = %q, want home dot-directory", got[len(got)-1])
	}
}

func TestLoader_Load_FillOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "demo.yml", "foo: bar\ndoz:\n  baz: 1\n")

	l := NewLoader(WithName("demo"))

	empty := conftree.New()
	if _, err := l.Load(empty, path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := conftree.Tree{"foo": "bar", "doz": conftree.Tree{"baz": "1"}}
	if diff := cmp.Diff(want, empty); diff != "" {
		t.Errorf("load into empty tree (-want +got):\n%s", diff)
	}

	existing := conftree.Tree{"foo": "cli"}
	if _, err := l.Load(existing, path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := existing.String("foo"); got != "cli" {
		t.Errorf("foo = %q, file must not override existing keys", got)
	}
	if got := existing.String("doz.baz"); got != "1" {
		t.Errorf("doz.baz = %q, want 1", got)
	}
}

func TestLoader_Load_Formats(t *testing.T) {
	want := conftree.Tree{
		"foo": "bar",
		"doz": conftree.Tree{"baz": "1"},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "demo.yaml", "foo: bar\ndoz:\n  baz: 1\n"},
		{"yml", "demo.yml", "foo: bar\ndoz:\n  baz: 1\n"},
		{"json", "demo.json", `{"foo": "bar", "doz": {"baz": 1}}`},
		{"toml", "demo.toml", "foo = \"bar\"\n\n[doz]\nbaz = 1\n"},
		{"hcl", "demo.hcl", "foo = \"bar\"\n\ndoz {\n  baz = 1\n}\n"},
		{"ini", "demo.ini", "foo = bar\n\n[doz]\nbaz = 1\n"},
		{"conf", "demo.conf", "# comment\nfoo=\"bar\"\ndoz.baz=1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			got := conftree.New()
			if _, err := NewLoader().Load(got, path); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoader_Load_Lists(t *testing.T) {
	path := writeFile(t, t.TempDir(), "demo.yml", "hosts:\n  - a\n  - b\n")

	got := conftree.New()
	if _, err := NewLoader().Load(got, path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := conftree.Tree{"hosts": conftree.Tree{"0": "a", "1": "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Load_HCLLabels(t *testing.T) {
	content := `
server "primary" {
  port = 8080
  tags = ["a", "b"]
}
enabled = true
`
	path := writeFile(t, t.TempDir(), "demo.hcl", content)

	got := conftree.New()
	if _, err := NewLoader().Load(got, path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := conftree.Tree{
		"server": conftree.Tree{
			"primary": conftree.Tree{
				"port": "8080",
				"tags": conftree.Tree{"0": "a", "1": "b"},
			},
		},
		"enabled": "true",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Load_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.json", "{not json")
	unknown := writeFile(t, dir, "demo.xml", "<foo/>")
	badINI := writeFile(t, dir, "bad.ini", "no equals sign here\n")

	tests := []struct {
		name     string
		source   string
		notFound bool
	}{
		{name: "missing explicit file", source: filepath.Join(dir, "missing.yml"), notFound: true},
		{name: "parse error", source: broken},
		{name: "unknown extension", source: unknown},
		{name: "ini syntax", source: badINI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := conftree.Tree{"keep": "me"}
			_, err := NewLoader().Load(tree, tt.source)

			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Load() error = %v, want *LoadError", err)
			}
			if le.Source != tt.source {
				t.Errorf("Source = %q, want %q", le.Source, tt.source)
			}
			if IsNotFound(err) != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", IsNotFound(err), tt.notFound)
			}
			if diff := cmp.Diff(conftree.Tree{"keep": "me"}, tree); diff != "" {
				t.Errorf("tree changed on failure (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoader_Load_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "demo.xml", "<foo/>")
	_, err := NewLoader().Load(conftree.New(), path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoader_Discover(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	l := NewLoader(WithName("demo"), WithSearchPaths(first, second))

	if got := l.Discover(); got != "" {
		t.Errorf("Discover() = %q, want nothing", got)
	}

	tree := conftree.Tree{"a": "1"}
	path, err := l.Load(tree, "")
	if err != nil {
		t.Fatalf("Load() without a file should be a no-op, got %v", err)
	}
	if path != "" {
		t.Errorf("Load() path = %q, want empty", path)
	}
	if diff := cmp.Diff(conftree.Tree{"a": "1"}, tree); diff != "" {
		t.Errorf("tree changed (-want +got):\n%s", diff)
	}

	writeFile(t, second, "demo.json", `{"from": "second"}`)
	writeFile(t, second, "demo.yml", "from: second-yml\n")
	if got, want := l.Discover(), filepath.Join(second, "demo.yml"); got != want {
		t.Errorf("Discover() = %q, want %q (yaml before json)", got, want)
	}

	writeFile(t, first, "demo.ini", "from=first\n")
	if got, want := l.Discover(), filepath.Join(first, "demo.ini"); got != want {
		t.Errorf("Discover() = %q, want %q (directory order wins)", got, want)
	}

	tree = conftree.New()
	path, err = l.Load(tree, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != filepath.Join(first, "demo.ini") || tree.String("from") != "first" {
		t.Errorf("Load() = %q with from=%q", path, tree.String("from"))
	}
}

func TestLoader_Discover_Unparsable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "demo.json", "{")

	_, err := NewLoader(WithName("demo"), WithSearchPaths(dir)).Load(conftree.New(), "")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error = %v, want *LoadError for a broken discovered file", err)
	}
}

func TestLoader_Discover_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "demo.yml"), 0755); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(WithName("demo"), WithSearchPaths(dir))
	if got := l.Discover(); got != "" {
		t.Errorf("Discover() = %q, directories must be skipped", got)
	}
}

func TestLoader_EnvAndDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "demo.yml", "db:\n  host: file\n  port: 5432\nname: file\n")
	t.Setenv("DEMO_DB_HOST", "env")
	t.Setenv("OTHER_DB_HOST", "ignored")

	l := NewLoader(
		WithEnvPrefix("DEMO_"),
		WithDefaults(conftree.Tree{"name": "default", "mode": "default"}),
	)

	tree := conftree.Tree{"name": "cli"}
	if _, err := l.Load(tree, path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := conftree.Tree{
		"name": "cli",
		"mode": "default",
		"db":   conftree.Tree{"host": "env", "port": "5432"},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Apply(t *testing.T) {
	t.Setenv("DEMO_LOGLEVEL", "DEBUG")

	l := NewLoader(
		WithEnvPrefix("DEMO"),
		WithDefaults(conftree.Tree{"loglevel": "WARN", "name": "demo"}),
	)

	tree := conftree.New()
	if err := l.Apply(tree); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := conftree.Tree{"loglevel": "DEBUG", "name": "demo"}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParserFor(t *testing.T) {
	for _, ext := range Extensions() {
		if _, err := ParserFor("demo" + ext); err != nil {
			t.Errorf("ParserFor(%q) error = %v", ext, err)
		}
	}
	if _, err := ParserFor("DEMO.YML"); err != nil {
		t.Errorf("extension match should ignore case: %v", err)
	}
	if _, err := ParserFor("demo"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParserFor(no ext) error = %v", err)
	}
}

func TestINIParser_Unmarshal(t *testing.T) {
	content := `
; top-level keys
name = "demo"
db.port = 5432 # inline comment

[db]
host = 'localhost'

[log.file]
path = /tmp/demo.log
`
	got, err := INIParser().Unmarshal([]byte(content))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := map[string]any{
		"name": "demo",
		"db":   map[string]any{"port": "5432", "host": "localhost"},
		"log":  map[string]any{"file": map[string]any{"path": "/tmp/demo.log"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestINIParser_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "nested then scalar", content: "a.b=1\na=2\n"},
		{name: "scalar then nested", content: "a=2\na.b=1\n"},
		{name: "section and dotted key", content: "a.b=1\n[a]\nb=2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := INIParser().Unmarshal([]byte(tt.content)); err == nil {
				t.Errorf("Unmarshal() = %v, want conflict error", got)
			}
		})
	}
}

func TestINIParser_Marshal(t *testing.T) {
	if _, err := INIParser().Marshal(map[string]any{"a": "1"}); !errors.Is(err, errMarshalNotSupported) {
		t.Errorf("Marshal() error = %v, want errMarshalNotSupported", err)
	}
}

func TestLoadError(t *testing.T) {
	cause := errors.New("boom")
	err := &LoadError{Source: "x.yml", Cause: cause}
	if got := err.Error(); got != "load config x.yml: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("LoadError should unwrap to its cause")
	}
}
