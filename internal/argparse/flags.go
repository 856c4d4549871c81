package argparse

import (
	"reflect"
	"strconv"
)

// Directive tells the caller how to proceed after parsing.
type Directive int

const (
	// Continue means execution should proceed.
	Continue Directive = iota
	// Help requests usage output.
	Help
	// Version requests the name and version line.
	Version
	// Usage reports malformed flags.
	Usage
)

// String returns the directive name.
func (d Directive) String() string {
	switch d {
	case Continue:
		return "continue"
	case Help:
		return "help"
	case Version:
		return "version"
	case Usage:
		return "usage"
	default:
		return "directive(" + strconv.Itoa(int(d)) + ")"
	}
}

// Terminates reports whether the directive ends the invocation before
// the application runs.
func (d Directive) Terminates() bool {
	return d != Continue
}

// ExitCode is the conventional process exit code for the directive.
func (d Directive) ExitCode() int {
	if d == Usage {
		return 2
	}
	return 0
}

// Flag describes a recognized command-line flag.
//
// A flag either sets an option (Key) or raises a Directive. Value flags
// (TakesValue) store their argument under Key; switches store Value.
type Flag struct {
	Long       string
	Short      string
	Aliases    []string
	Key        string
	Value      string
	TakesValue bool
	Directive  Directive
	Usage      string
}

// Names returns every spelling of the flag without leading dashes.
func (f Flag) Names() []string {
	names := make([]string, 0, 2+len(f.Aliases))
	if f.Long != "" {
		names = append(names, f.Long)
	}
	if f.Short != "" {
		names = append(names, f.Short)
	}
	return append(names, f.Aliases...)
}

func (f Flag) kind() reflect.Kind {
	if f.TakesValue {
		return reflect.String
	}
	return reflect.Bool
}

// DefaultFlags returns the built-in flag set.
func DefaultFlags() []Flag {
	return []Flag{
		{Long: "help", Short: "h", Aliases: []string{"?"}, Directive: Help, Usage: "show usage and exit"},
		{Long: "version", Short: "v", Directive: Version, Usage: "print name and version and exit"},
		{Long: "config", Short: "c", Key: "config", TakesValue: true, Usage: "load options from `FILE`"},
		{Long: "quiet", Short: "q", Key: "loglevel", Value: "ERROR", Usage: "only log errors"},
	}
}
