package logger

import (
	"log/slog"
	"strings"
)

// Key fragments that mark an attribute as sensitive.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"passphrase",
	"credential",
	"authorization",
	"cookie",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks credentials in a log attribute. Bearer headers and
// JWT-shaped values are masked wherever they appear; any non-empty string
// under a sensitive key name is replaced entirely.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if s == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if IsSensitiveValue(s) {
			return slog.String(a.Key, RedactString(s))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// RedactString masks a credential while keeping enough of it to tell two
// values apart: "Bearer eyJhb...xyz".
func RedactString(value string) string {
	prefix := ""
	body := value
	if rest, ok := cutBearer(value); ok {
		prefix = value[:len(value)-len(rest)]
		body = rest
	}
	if !looksLikeJWT(body) && prefix == "" {
		return value
	}
	if len(body) <= 12 {
		return prefix + "***"
	}
	return prefix + body[:5] + "..." + body[len(body)-3:]
}

// IsSensitiveKey reports whether a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value is a bearer credential or a JWT.
func IsSensitiveValue(value string) bool {
	if _, ok := cutBearer(value); ok {
		return true
	}
	return looksLikeJWT(value)
}

func cutBearer(value string) (string, bool) {
	if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
		return value[7:], true
	}
	return "", false
}

// looksLikeJWT matches the compact serialization of a JOSE header, which
// always starts with base64url("{\"").
func looksLikeJWT(value string) bool {
	return strings.HasPrefix(value, "eyJ") && strings.Count(value, ".") == 2
}
