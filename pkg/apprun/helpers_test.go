package apprun

import (
	"bytes"
	"context"
	"testing"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

// capture records what the application saw.
type capture struct {
	calls int
	opts  conftree.Tree
	args  []string
	ctx   context.Context
}

func (c *capture) fn(value any, err error) Func {
	return func(ctx context.Context, opts conftree.Tree, args []string) (any, error) {
		c.calls++
		c.opts = opts
		c.args = args
		c.ctx = ctx
		return value, err
	}
}

type testIO struct {
	out     bytes.Buffer
	console bytes.Buffer
}

// newTestApp wraps app with an isolated discovery directory and captured
// output streams.
func newTestApp(t *testing.T, app any, opts ...Option) (*App, *testIO) {
	t.Helper()

	streams := &testIO{}
	base := []Option{
		WithName("demo"),
		WithSearchPaths(t.TempDir()),
		WithOutput(&streams.out),
		WithConsole(&streams.console),
	}
	a, err := New(app, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a, streams
}
