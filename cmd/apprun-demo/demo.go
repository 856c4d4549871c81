package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/apprun-go/internal/cli/output"
	"github.com/yndnr/apprun-go/internal/infra/buildinfo"
	"github.com/yndnr/apprun-go/internal/infra/shutdown"
	"github.com/yndnr/apprun-go/internal/telemetry/logger"
	"github.com/yndnr/apprun-go/internal/telemetry/metric"
	"github.com/yndnr/apprun-go/pkg/apprun"
	"github.com/yndnr/apprun-go/pkg/conftree"
)

const (
	appName      = "apprun-demo"
	demoPackage  = "github.com/yndnr/apprun-go/cmd/apprun-demo"
	envPrefix    = "APPRUN_DEMO"
	shellCommand = "shell"
)

// errRequested is returned by the fail command.
var errRequested = errors.New("requested failure")

// demo is a command-set application.
type demo struct {
	out      io.Writer
	shutdown *shutdown.Handler
	app      *apprun.App
	metrics  *metric.Registry
	greeting string
}

func (d *demo) wrap(stdout, stderr io.Writer) (*apprun.App, error) {
	caller := apprun.Caller{Package: demoPackage}
	if version != "dev" {
		caller.Version = version
	}

	d.metrics = metric.NewRegistry("")
	app, err := apprun.New(d,
		apprun.WithName(appName),
		apprun.WithCaller(caller),
		apprun.WithDefaults(conftree.Tree{
			"greeting": "Hello",
			"output":   string(output.FormatTable),
		}),
		apprun.WithEnvPrefix(envPrefix),
		apprun.WithFlags(
			apprun.Flag{Long: "output", Short: "o", Key: "output", TakesValue: true, Usage: "output `FORMAT`: table, json or yaml"},
			apprun.Flag{Long: "wide", Short: "w", Key: "wide", Value: "true", Usage: "show every column"},
		),
		apprun.WithDoc(apprun.Doc{
			Usage:       "exercise the apprun toolkit",
			Description: "Options are key=value pairs; dotted keys nest. Run 'apprun-demo shell' for an interactive session.",
			Commands: []apprun.CommandDoc{
				{Name: "show", Usage: "print the effective options, or the one named by the first argument"},
				{Name: "greet", Usage: "greet the first argument or the name option"},
				{Name: "fail", Usage: "return an error"},
				{Name: "explode", Usage: "panic"},
				{Name: "version", Usage: "print build information"},
				{Name: "watch", Usage: "report changes to the loaded config file until interrupted"},
			},
		}),
		apprun.WithOutput(stdout),
		apprun.WithConsole(stderr),
		apprun.WithMetrics(d.metrics),
	)
	if err != nil {
		return nil, err
	}
	d.app = app
	return app, nil
}

// Commands implements apprun.Commander.
func (d *demo) Commands() apprun.CommandSet {
	return apprun.CommandSet{
		"show":    d.show,
		"greet":   d.greet,
		"fail":    d.fail,
		"explode": d.explode,
		"version": d.printVersion,
		"watch":   d.watch,
	}
}

// Init implements apprun.Initializer.
func (d *demo) Init(ctx context.Context, opts conftree.Tree) error {
	if _, err := output.ParseFormat(opts.String("output")); err != nil {
		return err
	}
	d.greeting = opts.String("greeting")

	logger.FromContext(ctx).Debug("demo initialized",
		"greeting", d.greeting,
		"config", opts.String("config"),
	)
	return nil
}

func (d *demo) formatter(opts conftree.Tree) (output.Formatter, error) {
	format, err := output.ParseFormat(opts.String("output"))
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, opts.String("wide") == "true"), nil
}

func (d *demo) show(_ context.Context, opts conftree.Tree, args []string) (any, error) {
	f, err := d.formatter(opts)
	if err != nil {
		return nil, err
	}

	var data any = logger.RedactTree(opts)
	if len(args) > 0 {
		v, ok := opts.Lookup(args[0])
		if !ok {
			return nil, fmt.Errorf("no option %q", args[0])
		}
		switch v := v.(type) {
		case conftree.Tree:
			data = logger.RedactTree(v)
		default:
			if logger.IsSensitiveKey(args[0]) {
				v = logger.RedactedValue
			}
			data = map[string]string{args[0]: fmt.Sprint(v)}
		}
	}

	if err := f.Format(d.out, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (d *demo) greet(_ context.Context, opts conftree.Tree, args []string) (any, error) {
	name := "world"
	if n := opts.String("name"); n != "" {
		name = n
	}
	if len(args) > 0 {
		name = strings.Join(args, " ")
	}

	greeting := opts.String("greeting")
	if greeting == "" {
		greeting = d.greeting
	}

	msg := fmt.Sprintf("%s, %s!", greeting, name)
	fmt.Fprintln(d.out, msg)
	return msg, nil
}

func (d *demo) fail(_ context.Context, _ conftree.Tree, args []string) (any, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("%w: %s", errRequested, strings.Join(args, " "))
	}
	return nil, errRequested
}

func (d *demo) explode(context.Context, conftree.Tree, []string) (any, error) {
	panic("requested panic")
}

func (d *demo) printVersion(_ context.Context, opts conftree.Tree, _ []string) (any, error) {
	f, err := d.formatter(opts)
	if err != nil {
		return nil, err
	}

	info := buildinfo.Get()
	info.Version = d.app.Version()
	if err := f.Format(d.out, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (d *demo) watch(ctx context.Context, _ conftree.Tree, _ []string) (any, error) {
	log := logger.L(ctx)

	stop, err := d.app.WatchConfig(ctx, func(tree conftree.Tree, err error) {
		if err != nil {
			log.Warn("reload failed", "error", err)
			return
		}
		fmt.Fprintf(d.out, "config changed: %d keys\n", len(tree.Flatten()))
	})
	if err != nil {
		return nil, err
	}
	d.shutdown.OnShutdown(func(context.Context) error {
		return stop()
	})

	fmt.Fprintf(d.out, "watching %s\n", d.app.ConfigPath())
	<-ctx.Done()
	return nil, nil
}
