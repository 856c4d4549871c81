package confloader

import (
	"os"
	"path/filepath"
)

// DefaultSearchPaths returns the discovery directories for an application:
// the working directory, the per-user config directory and the home
// directory (as a dot-directory).
func DefaultSearchPaths(name string) []string {
	dirs := []string{"."}

	if name == "" {
		return dirs
	}

	if cfgDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(cfgDir, name))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "."+name))
	}

	return dirs
}

// Candidates lists every path Discover tries, in order.
func (l *Loader) Candidates() []string {
	if l.name == "" {
		return nil
	}

	exts := Extensions()
	out := make([]string, 0, len(l.searchPaths)*len(exts))
	for _, dir := range l.searchPaths {
		for _, ext := range exts {
			out = append(out, filepath.Join(dir, l.name+ext))
		}
	}
	return out
}

// Discover returns the first existing regular file among Candidates, or "".
func (l *Loader) Discover() string {
	for _, path := range l.Candidates() {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return path
	}
	return ""
}
