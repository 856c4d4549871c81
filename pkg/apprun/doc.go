// Package apprun wraps a command-line application with argument parsing,
// layered configuration, logger setup and command dispatch.
//
// An application is one of:
//
//   - a Func, called directly with the merged options and positional args
//   - a Runner, whose Run method is the single entry point
//   - a CommandSet or Commander, mapping lowercase command names to handlers
//
// The variant is decided once by New. The first invocation prepares the
// wrapper: it loads the config file named by the "config" option (an empty
// value triggers discovery by application name), enables the logger from
// the "logger" and "loglevel" options and calls Init when the application
// implements Initializer. Later invocations reuse the prepared state.
//
// Precedence, highest first: runtime overrides, command-line options,
// environment overlay, config file, defaults. Each invocation works on a
// private copy of the merged options.
//
// Typical use:
//
//	app, err := apprun.New(myApp, apprun.WithName("tool"))
//	if err != nil {
//		return err
//	}
//	out, err := app.RunWithArgs(ctx, os.Args[1:])
//	if err != nil {
//		return err
//	}
//	os.Exit(out.ExitCode())
package apprun
