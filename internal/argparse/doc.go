// Package argparse splits command-line tokens into recognized flags, a
// dotted key=value option tree and positional arguments.
//
// Flag recognition is permissive: flags that are not registered pass through
// untouched into the positional arguments so the wrapped application can
// parse them itself. Help, version and usage errors are reported as a
// Directive on the result instead of terminating the process.
package argparse
