package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yndnr/apprun-go/internal/infra/shutdown"
)

// Build information, set via ldflags.
var version = "dev"

func main() {
	code, err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	handler := shutdown.NewHandler(5 * time.Second)
	ctx, cancel := handler.Context(context.Background())
	defer cancel()

	d := &demo{out: stdout, shutdown: handler}
	app, err := d.wrap(stdout, stderr)
	if err != nil {
		return 1, err
	}

	var code int
	if len(args) > 0 && args[0] == shellCommand {
		code, err = d.shell(ctx, args[1:], stdin)
	} else {
		code, err = d.once(ctx, args)
	}

	if serr := handler.Shutdown(); serr != nil {
		app.Logger().Warn("shutdown hooks failed", "error", serr)
	}
	return code, err
}
