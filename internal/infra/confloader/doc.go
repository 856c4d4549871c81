// Package confloader loads application option trees from configuration
// files.
//
// It uses koanf as the underlying library. A file is either named
// explicitly or discovered by application name in a list of search
// directories, trying each known extension in turn.
//
// Formats:
//
//   - YAML (.yml, .yaml)
//   - JSON (.json)
//   - TOML (.toml)
//   - HCL (.hcl)
//   - INI-style key=value (.ini, .conf)
//
// Loaded values only fill keys the target tree does not already hold.
// Priority (highest to lowest):
//
//  1. Command-line and runtime options
//  2. Environment variables (when a prefix is configured)
//  3. Configuration file
//  4. Defaults
package confloader
