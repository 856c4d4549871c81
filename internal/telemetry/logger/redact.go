package logger

import (
	"log/slog"
	"strings"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"credential",
	"apikey",
	"api_key",
	"private_key",
	"bearer",
}

// RedactedValue replaces sensitive values in logs and dumps.
const RedactedValue = "***REDACTED***"

// redactSensitive blanks string attributes whose key suggests a secret.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, RedactedValue)
		}
		return a
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// RedactTree returns a copy of t with sensitive leaves replaced, for dumps
// and debug logging of option trees.
func RedactTree(t conftree.Tree) conftree.Tree {
	out := make(conftree.Tree, len(t))
	for k, v := range t {
		switch val := v.(type) {
		case conftree.Tree:
			out[k] = RedactTree(val)
		case string:
			if val != "" && IsSensitiveKey(k) {
				out[k] = RedactedValue
			} else {
				out[k] = val
			}
		default:
			out[k] = v
		}
	}
	return out
}
