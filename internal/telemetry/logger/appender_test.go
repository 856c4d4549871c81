package logger

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

func TestFromOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    conftree.Tree
		want    Config
		wantErr bool
	}{
		{
			name: "nothing configured",
			opts: conftree.Tree{},
			want: Config{Name: "demo", Appenders: []Appender{DefaultAppender()}},
		},
		{
			name: "quiet",
			opts: conftree.Tree{"loglevel": "ERROR"},
			want: Config{Name: "demo", Level: "ERROR", Appenders: []Appender{DefaultAppender()}},
		},
		{
			name: "kind shorthand",
			opts: conftree.Tree{"logger": "stdout"},
			want: Config{Name: "demo", Appenders: []Appender{{Kind: "stdout", Threshold: "WARN"}}},
		},
		{
			name: "single appender",
			opts: conftree.Tree{"logger": conftree.Tree{
				"kind": "file", "destination": "/tmp/demo.log", "threshold": "INFO", "format": "json",
			}},
			want: Config{Name: "demo", Appenders: []Appender{
				{Kind: "file", Destination: "/tmp/demo.log", Threshold: "INFO", Format: "json"},
			}},
		},
		{
			name: "appender list in index order",
			opts: conftree.Tree{"logger": conftree.Tree{
				"10": conftree.Tree{"kind": "stdout"},
				"2":  conftree.Tree{"kind": "console", "threshold": "DEBUG"},
			}},
			want: Config{Name: "demo", Appenders: []Appender{
				{Kind: "console", Threshold: "DEBUG"},
				{Kind: "stdout"},
			}},
		},
		{
			name:    "list entry not a subtree",
			opts:    conftree.Tree{"logger": conftree.Tree{"0": conftree.Tree{"kind": "console"}, "x": "scalar"}},
			wantErr: true,
		},
		{
			name:    "bad loglevel",
			opts:    conftree.Tree{"loglevel": "LOUD"},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			opts:    conftree.Tree{"logger": "syslog"},
			wantErr: true,
		},
		{
			name:    "file without destination",
			opts:    conftree.Tree{"logger": conftree.Tree{"kind": "file"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromOptions("demo", tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromOptions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortedIndexKeys(t *testing.T) {
	tree := conftree.Tree{"b": "", "10": "", "a": "", "2": "", "0": ""}
	want := []string{"0", "2", "10", "a", "b"}
	if diff := cmp.Diff(want, sortedIndexKeys(tree)); diff != "" {
		t.Errorf("sortedIndexKeys() mismatch (-want +got):\n%s", diff)
	}
}
