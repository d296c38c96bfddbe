package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Component records which subsystem produced the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Email records a masked email address. Callers are expected to mask
// before logging; the helper only sets the key.
func Email(masked string) slog.Attr {
	return slog.String("email", masked)
}

// TokenID records a refresh-token jti under the key "jti".
func TokenID(jti string) slog.Attr {
	return slog.String("jti", jti)
}
