// Package conftree provides the nested option tree shared by the argument
// parser, the config loader and the application wrapper.
//
// A Tree maps string keys to either a string value or another Tree.
// Three merge policies are provided:
//
//   - FillAbsent: top-level, source never replaces an existing key (config files, env)
//   - Override: top-level, source always wins (runtime overrides)
//   - Merge: recursive, source always wins (command-line options)
//
// Dotted paths ("a.b.c") address nested keys.
package conftree
