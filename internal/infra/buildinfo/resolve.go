package buildinfo

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Unknown is reported when no version source answers.
const Unknown = "unknown"

// Caller identifies the code embedding the wrapper: its import path and,
// optionally, a version it declares.
type Caller struct {
	Package string
	Version string
}

// Source names where a resolved version came from.
type Source string

const (
	SourceApplication Source = "application"
	SourceCaller      Source = "caller"
	SourceBuild       Source = "build"
	SourceNone        Source = "none"
)

// Resolve returns the version for an application. Precedence:
//
//  1. appVersion, when the application reports one
//  2. the caller's declared version
//  3. the module containing caller.Package in the binary's build info
//     (the main module when Package is empty)
//  4. Unknown
func Resolve(appVersion func() string, caller Caller) (string, Source) {
	if appVersion != nil {
		if v := normalize(appVersion()); v != "" {
			return v, SourceApplication
		}
	}

	if v := normalize(caller.Version); v != "" {
		return v, SourceCaller
	}

	if v := moduleVersion(caller.Package); v != "" {
		return v, SourceBuild
	}

	return Unknown, SourceNone
}

// moduleVersion looks up the module providing pkg in the build info.
func moduleVersion(pkg string) string {
	bi, ok := readBuildInfo()
	if !ok {
		return ""
	}

	if pkg == "" || within(pkg, bi.Main.Path) {
		return normalize(bi.Main.Version)
	}

	best, version := "", ""
	for _, dep := range bi.Deps {
		if !within(pkg, dep.Path) || len(dep.Path) <= len(best) {
			continue
		}
		best, version = dep.Path, dep.Version
		if dep.Replace != nil && dep.Replace.Version != "" {
			version = dep.Replace.Version
		}
	}
	return normalize(version)
}

// within reports whether pkg is module or one of its packages.
func within(pkg, module string) bool {
	if module == "" {
		return false
	}
	return pkg == module || strings.HasPrefix(pkg, module+"/")
}

// normalize drops placeholder versions and canonicalizes semantic ones
// ("v1.2" becomes "1.2.0").
func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "(devel)" || v == Unknown {
		return ""
	}
	if sv, err := semver.NewVersion(v); err == nil {
		return sv.String()
	}
	return v
}
