package apprun

import (
	"errors"
	"fmt"

	"github.com/yndnr/apprun-go/internal/infra/confloader"
)

var (
	// ErrInvalidApplication is returned by New for a value that is neither a
	// Func, a Runner nor a command set.
	ErrInvalidApplication = errors.New("apprun: invalid application")

	// ErrMissingCommand means no command name could be resolved.
	ErrMissingCommand = errors.New("apprun: missing command")

	// ErrNoConfigFile is returned by WatchConfig when no file was loaded.
	ErrNoConfigFile = errors.New("apprun: no config file loaded")
)

// ConfigLoadError reports an unreadable or unparsable config file.
type ConfigLoadError = confloader.LoadError

// UnknownCommandError reports a malformed or unregistered command name.
type UnknownCommandError struct {
	Command string
	Reason  string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("apprun: unknown command %q: %s", e.Command, e.Reason)
}

// InitError wraps a failure of the application's Init.
type InitError struct {
	Cause error
}

func (e *InitError) Error() string {
	return "apprun: init: " + e.Cause.Error()
}

func (e *InitError) Unwrap() error {
	return e.Cause
}

// ApplicationError is a failure raised by the wrapped application while it
// ran. It is reported in Outcome.Err, never returned.
type ApplicationError struct {
	Command string
	Cause   error
	// Panic is the recovered value when the application panicked.
	Panic any
}

func (e *ApplicationError) Error() string {
	if e.Command == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("command %s: %v", e.Command, e.Cause)
}

func (e *ApplicationError) Unwrap() error {
	return e.Cause
}

// IsHarnessError reports whether err is a misuse of the wrapper rather than
// a runtime failure of the application.
func IsHarnessError(err error) bool {
	var (
		unknown *UnknownCommandError
		load    *ConfigLoadError
		initErr *InitError
	)
	return errors.Is(err, ErrMissingCommand) ||
		errors.Is(err, ErrInvalidApplication) ||
		errors.As(err, &unknown) ||
		errors.As(err, &load) ||
		errors.As(err, &initErr)
}
