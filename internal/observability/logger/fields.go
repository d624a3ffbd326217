package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// STANDARD FIELDS - HTTP
// =================================================================================

// RequestID creates a field for the request ID.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method creates a field for the HTTP method.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path creates a field for the request path.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status creates a field for the HTTP status code.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration creates a field for the request duration.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs creates a field for the duration in milliseconds.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes creates a field for the response size.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP creates a field for the remote address.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// UserAgent creates a field for the User-Agent.
func UserAgent(v string) zap.Field {
	return zap.String("user_agent", v)
}

// =================================================================================
// STANDARD FIELDS - GRANT DOMAIN
// =================================================================================

// ClientID creates a field for the OAuth client ID.
func ClientID(v string) zap.Field {
	return zap.String("client_id", v)
}

// Subject creates a field for the authenticated subject.
func Subject(v string) zap.Field {
	return zap.String("sub", v)
}

// GrantType creates a field for the grant type.
func GrantType(v string) zap.Field {
	return zap.String("grant_type", v)
}

// ResponseType creates a field for the authorization response type.
func ResponseType(v string) zap.Field {
	return zap.String("response_type", v)
}

// Scopes creates a field for a scope list.
func Scopes(v []string) zap.Field {
	return zap.Strings("scopes", v)
}

// SessionID creates a field for the session ID.
func SessionID(v string) zap.Field {
	return zap.String("sid", v)
}

// =================================================================================
// STANDARD FIELDS - SYSTEM
// =================================================================================

// Component creates a field for the component/module name.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op creates a field for the current operation.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer creates a field for the layer (handler, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err creates a field for an error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// STANDARD FIELDS - DATA
// =================================================================================

// Count creates a field for a count.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// ID creates a generic ID field.
func ID(v string) zap.Field {
	return zap.String("id", v)
}

// Key creates a generic key field.
func Key(v string) zap.Field {
	return zap.String("key", v)
}

// Any creates a generic field for any value.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}

// String creates a generic string field.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int creates a generic int field.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool creates a generic bool field.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
