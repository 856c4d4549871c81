// Package buildinfo provides build information and version resolution.
//
// Build-time values are injected via ldflags and fall back to what the Go
// toolchain embeds in the binary:
//
//   - Version: Semantic version (e.g., "1.0.0")
//   - Commit: VCS revision
//   - BuildTime: Build or commit timestamp
//   - GoVersion: Go compiler version
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/apprun-go/internal/infra/buildinfo.Version=1.0.0"
//
// Resolve determines the version reported for a wrapped application.
package buildinfo
