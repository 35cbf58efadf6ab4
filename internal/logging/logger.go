// Package logging wraps zap and provides helpers that mask sensitive keys
// (password|token|secret|*_key|*Token) in maps and key=value strings. The
// logger built by New does not redact fields on its own; only values passed
// through Redact or RedactString are masked.
package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sensitiveKey = regexp.MustCompile(`(?i)(password|token|secret|.*_key|.*Token)$`)

// New builds a production-style zap.Logger for NODE_ENV=production and a
// human-readable development logger otherwise, mirroring the teacher's
// single global logger instance (internal/infrastructure/services/logger.go)
// but with structured fields instead of Printf-formatted strings.
func New(env string) *zap.Logger {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Redact returns a copy of fields with sensitive values masked, recursing
// into nested maps. No log call in this module currently passes a request
// body through it.
func Redact(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if sensitiveKey.MatchString(k) {
			out[k] = "***redacted***"
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = Redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// RedactString masks occurrences of key=value pairs in free-form strings
// (e.g. URL-encoded request bodies) for the same sensitive key set.
func RedactString(s string) string {
	parts := strings.Split(s, "&")
	for i, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 2 && sensitiveKey.MatchString(kv[0]) {
			parts[i] = kv[0] + "=***redacted***"
		}
	}
	return strings.Join(parts, "&")
}
