package main

import (
	"context"
	"errors"
	"io"

	"github.com/yndnr/apprun-go/internal/cli/repl"
	"github.com/yndnr/apprun-go/pkg/apprun"
)

// once runs a single command line.
func (d *demo) once(ctx context.Context, args []string) (int, error) {
	out, err := d.app.RunWithArgs(ctx, args)
	if err != nil {
		return 1, err
	}
	return out.ExitCode(), nil
}

// shell prepares the wrapper once and runs every input line on it.
func (d *demo) shell(ctx context.Context, args []string, stdin io.Reader) (int, error) {
	if res := d.app.ParseArgs(args); res.Err != nil {
		return 2, res.Err
	}
	if err := d.app.Prepare(ctx); err != nil {
		return 1, err
	}

	opts := d.app.Options()
	historyFile := opts.String("history")
	if historyFile == "" {
		historyFile = repl.DefaultHistoryFile(d.app.Name())
	}

	r := repl.New(d.dispatch,
		repl.WithIO(stdin, d.out),
		repl.WithPrompt(d.app.Name()+"> "),
		repl.WithCommands(d.app.Commands()...),
		repl.WithHistory(repl.NewHistory(historyFile)),
	)
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return 1, err
	}
	return 0, nil
}

// dispatch runs one shell line. Halted lines (help, version) are not errors.
func (d *demo) dispatch(ctx context.Context, tokens []string) error {
	out, err := d.app.Dispatch(ctx, tokens)
	if err != nil {
		return err
	}
	var appErr *apprun.ApplicationError
	if errors.As(out.Err, &appErr) {
		return appErr
	}
	return nil
}
