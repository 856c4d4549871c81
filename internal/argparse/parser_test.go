package argparse

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

func TestParse_Assignments(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		wantOpts conftree.Tree
		wantArgs []string
	}{
		{
			name:     "interleaved",
			tokens:   []string{"foo", "bar=1", "doz"},
			wantOpts: conftree.Tree{"bar": "1", "config": ""},
			wantArgs: []string{"foo", "doz"},
		},
		{
			name:     "only assignments",
			tokens:   []string{"bar=doz", "foo=1", "x", "y"},
			wantOpts: conftree.Tree{"foo": "1", "bar": "doz", "config": ""},
			wantArgs: []string{"x", "y"},
		},
		{
			name:     "dotted keys nest",
			tokens:   []string{"db.host=localhost", "db.port=5432"},
			wantOpts: conftree.Tree{"db": conftree.Tree{"host": "localhost", "port": "5432"}, "config": ""},
		},
		{
			name:     "value keeps embedded equals",
			tokens:   []string{"query=a=b=c"},
			wantOpts: conftree.Tree{"query": "a=b=c", "config": ""},
		},
		{
			name:     "empty value",
			tokens:   []string{"name="},
			wantOpts: conftree.Tree{"name": "", "config": ""},
		},
		{
			name:     "leading equals is positional",
			tokens:   []string{"=x"},
			wantOpts: conftree.Tree{"config": ""},
			wantArgs: []string{"=x"},
		},
		{
			name:     "scalar collision dropped",
			tokens:   []string{"a=1", "a.b=2"},
			wantOpts: conftree.Tree{"a": "1", "config": ""},
		},
		{
			name:     "later assignment wins",
			tokens:   []string{"a=1", "a=2"},
			wantOpts: conftree.Tree{"a": "2", "config": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.tokens, DefaultFlags())
			if res.Directive != Continue {
				t.Fatalf("Directive = %v, want continue (err %v)", res.Directive, res.Err)
			}
			if diff := cmp.Diff(tt.wantOpts, res.Options); diff != "" {
				t.Errorf("options mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantArgs, res.Args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_BuiltinFlags(t *testing.T) {
	tests := []struct {
		name          string
		tokens        []string
		wantDirective Directive
		wantConfig    string
		configGiven   bool
		wantLevel     string
	}{
		{name: "short help", tokens: []string{"-h"}, wantDirective: Help},
		{name: "question mark", tokens: []string{"-?"}, wantDirective: Help},
		{name: "long help", tokens: []string{"--help"}, wantDirective: Help},
		{name: "short version", tokens: []string{"-v"}, wantDirective: Version},
		{name: "long version", tokens: []string{"--version"}, wantDirective: Version},
		{name: "short config", tokens: []string{"-c", "app.yml"}, wantConfig: "app.yml", configGiven: true},
		{name: "long config", tokens: []string{"--config", "app.yml"}, wantConfig: "app.yml", configGiven: true},
		{name: "config equals", tokens: []string{"--config=app.yml"}, wantConfig: "app.yml", configGiven: true},
		{name: "quiet", tokens: []string{"-q"}, wantLevel: "ERROR"},
		{name: "long quiet", tokens: []string{"--quiet"}, wantLevel: "ERROR"},
		{name: "help wins over version", tokens: []string{"-v", "-h"}, wantDirective: Help},
		{name: "help wins over earlier version", tokens: []string{"--version", "--help"}, wantDirective: Help},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.tokens, DefaultFlags())
			if res.Directive != tt.wantDirective {
				t.Errorf("Directive = %v, want %v", res.Directive, tt.wantDirective)
			}
			if res.Directive.Terminates() {
				return
			}
			if got := res.Options.String(ConfigKey); got != tt.wantConfig {
				t.Errorf("config = %q, want %q", got, tt.wantConfig)
			}
			if res.ConfigGiven != tt.configGiven {
				t.Errorf("ConfigGiven = %v, want %v", res.ConfigGiven, tt.configGiven)
			}
			if got := res.Options.String("loglevel"); got != tt.wantLevel {
				t.Errorf("loglevel = %q, want %q", got, tt.wantLevel)
			}
			if len(res.Args) != 0 {
				t.Errorf("Args = %v, want none", res.Args)
			}
		})
	}
}

func TestParse_ConfigSentinel(t *testing.T) {
	res := Parse(nil, DefaultFlags())
	v, ok := res.Options[ConfigKey]
	if !ok || v != "" {
		t.Errorf("config = %v (present %v), want empty sentinel", v, ok)
	}
	if res.ConfigGiven {
		t.Error("ConfigGiven should be false")
	}

	// config=path given as an assignment counts as explicit too
	res = Parse([]string{"config=x.ini"}, DefaultFlags())
	if !res.ConfigGiven || res.Options.String(ConfigKey) != "x.ini" {
		t.Errorf("assignment config: given=%v value=%q", res.ConfigGiven, res.Options.String(ConfigKey))
	}
}

func TestParse_PassThroughUnknownFlags(t *testing.T) {
	res := Parse([]string{"--verbose", "run", "-x", "--out=file", "k=v"}, DefaultFlags())
	if res.Directive != Continue {
		t.Fatalf("Directive = %v, want continue", res.Directive)
	}
	want := []string{"--verbose", "run", "-x", "--out=file"}
	if diff := cmp.Diff(want, res.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if res.Options.String("k") != "v" {
		t.Errorf("k = %q, want v", res.Options.String("k"))
	}
}

func TestParse_Terminator(t *testing.T) {
	res := Parse([]string{"a=1", "--", "-h", "b=2", "--"}, DefaultFlags())
	if res.Directive != Continue {
		t.Fatalf("Directive = %v, flags after -- must be ignored", res.Directive)
	}
	if diff := cmp.Diff([]string{"-h", "b=2", "--"}, res.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if res.Options.Has("b") {
		t.Error("assignment after -- must stay positional")
	}
}

func TestParse_UsageErrors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		flag   string
	}{
		{name: "config without value", tokens: []string{"-c"}, flag: "c"},
		{name: "config followed by flag", tokens: []string{"--config", "-q"}, flag: "config"},
		{name: "config empty equals", tokens: []string{"--config="}, flag: "config"},
		{name: "bad boolean", tokens: []string{"--quiet=maybe"}, flag: "quiet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.tokens, DefaultFlags())
			if res.Directive != Usage {
				t.Fatalf("Directive = %v, want usage", res.Directive)
			}
			if res.Directive.ExitCode() != 2 {
				t.Errorf("ExitCode() = %d, want 2", res.Directive.ExitCode())
			}
			var ue *UsageError
			if !errors.As(res.Err, &ue) {
				t.Fatalf("Err = %v, want *UsageError", res.Err)
			}
			if ue.Flag != tt.flag {
				t.Errorf("Flag = %q, want %q", ue.Flag, tt.flag)
			}
		})
	}
}

func TestParse_LastValueWins(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{name: "long after short", tokens: []string{"-c", "b", "--config", "a"}, want: "a"},
		{name: "short after long", tokens: []string{"--config", "a", "-c", "b"}, want: "b"},
		{name: "inline after separate", tokens: []string{"-c", "b", "--config=a"}, want: "a"},
		{name: "repeated short", tokens: []string{"-c", "a", "-c", "b"}, want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.tokens, DefaultFlags())
			if res.Directive != Continue {
				t.Fatalf("Directive = %v, err = %v", res.Directive, res.Err)
			}
			if got := res.Options.String(ConfigKey); got != tt.want {
				t.Errorf("config = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_FalseBooleanIsIgnored(t *testing.T) {
	res := Parse([]string{"--help=false"}, DefaultFlags())
	if res.Directive != Continue {
		t.Errorf("Directive = %v, want continue", res.Directive)
	}
}

func TestParse_CustomFlags(t *testing.T) {
	flags := append(DefaultFlags(),
		Flag{Long: "format", Short: "o", Key: "output.format", TakesValue: true},
		Flag{Long: "debug", Key: "loglevel", Value: "DEBUG"},
	)

	res := Parse([]string{"-o", "json", "--debug", "show"}, flags)
	want := conftree.Tree{
		"output":   conftree.Tree{"format": "json"},
		"loglevel": "DEBUG",
		"config":   "",
	}
	if diff := cmp.Diff(want, res.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"show"}, res.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestDirective(t *testing.T) {
	tests := []struct {
		d     Directive
		name  string
		code  int
		stops bool
	}{
		{Continue, "continue", 0, false},
		{Help, "help", 0, true},
		{Version, "version", 0, true},
		{Usage, "usage", 2, true},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.d.ExitCode(); got != tt.code {
			t.Errorf("%s ExitCode() = %d, want %d", tt.name, got, tt.code)
		}
		if got := tt.d.Terminates(); got != tt.stops {
			t.Errorf("%s Terminates() = %v, want %v", tt.name, got, tt.stops)
		}
	}
}

func TestUsageError_Error(t *testing.T) {
	if got := (&UsageError{Flag: "c", Reason: "requires a value"}).Error(); got != "flag -c: requires a value" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&UsageError{Flag: "config", Reason: "requires a value"}).Error(); got != "flag --config: requires a value" {
		t.Errorf("Error() = %q", got)
	}
}
