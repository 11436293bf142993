package logging

import (
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// secretKeys never have their values written, whatever the backend. Flows
// should not pass secrets at all; this catches the ones that slip through.
var secretKeys = map[string]struct{}{
	"password":        {},
	"access_password": {},
	"key":             {},
	"token":           {},
	"share_url":       {},
	"fragment":        {},
	"plaintext":       {},
}

func isSecretKey(k string) bool {
	_, ok := secretKeys[strings.ToLower(k)]
	return ok
}

// redactAttr is a slog ReplaceAttr hook.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if isSecretKey(a.Key) {
		return slog.String(a.Key, redacted)
	}
	return a
}
