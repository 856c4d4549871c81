// Package repl provides an interactive shell that feeds each input line to
// a wrapped application as a fresh invocation.
//
//   - repl.go: read loop, tokenizing and built-in commands
//   - completer.go: prefix completion over registered command names
//   - history.go: command history persistence
package repl
