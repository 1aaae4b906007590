// pkg/logging/context.go
package logging

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// ContextFields returns a hook that copies correlation data into the record
// when the Logger was created with a context.Context as its data: the
// OpenTelemetry trace and span ids, tenant, session id and request id.
// Keys already present in the record are left alone.
func ContextFields() Hook {
	return func(rec Record, data any) Record {
		ctx, ok := data.(context.Context)
		if !ok || ctx == nil {
			return rec
		}
		if rec == nil {
			rec = Record{}
		}
		for k, v := range correlationFields(ctx) {
			if _, exists := rec[k]; !exists {
				rec[k] = v
			}
		}
		return rec
	}
}

func correlationFields(ctx context.Context) map[string]any {
	fields := make(map[string]any, 8)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields["trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
		if sc.IsSampled() {
			fields["trace_sampled"] = true
		}
	}

	if tenant := TenantFromContext(ctx); tenant != nil {
		fields["tenant.org"] = tenant.OrgID
		fields["tenant.team"] = tenant.TeamID
		fields["tenant.project"] = tenant.ProjectID
	}

	if sessionID := SessionIDFromContext(ctx); sessionID != "" {
		fields["session.id"] = sessionID
	}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields["request.id"] = requestID
	}

	return fields
}

// InstanceID returns a hook that stamps every record with "instance_id", a
// random UUID fixed for the lifetime of the hook.
func InstanceID() Hook {
	id := uuid.NewString()
	return func(rec Record, _ any) Record {
		if rec == nil {
			rec = Record{}
		}
		if _, exists := rec["instance_id"]; !exists {
			rec["instance_id"] = id
		}
		return rec
	}
}

type tenantCtxKey struct{}
type sessionCtxKey struct{}
type requestCtxKey struct{}

// Tenant identifies the owner of a request.
type Tenant struct {
	OrgID     string
	TeamID    string
	ProjectID string
}

const (
	maxTenantFieldLen = 64
	maxIDLen          = 128
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateID(id, name string, maxLen int) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%s contains invalid UTF-8", name)
	}
	if len(id) > maxLen {
		return fmt.Errorf("%s exceeds max length %d", name, maxLen)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (must be alphanumeric, hyphen, underscore)", name)
	}
	return nil
}

// TenantFromContext extracts tenant from context.
func TenantFromContext(ctx context.Context) *Tenant {
	if t, ok := ctx.Value(tenantCtxKey{}).(*Tenant); ok {
		return t
	}
	return nil
}

// WithTenant adds tenant to context.
// Panics if tenant is nil or contains invalid field values.
func WithTenant(ctx context.Context, tenant *Tenant) context.Context {
	if tenant == nil {
		panic("logging: tenant cannot be nil")
	}
	for name, v := range map[string]string{
		"tenant.OrgID":     tenant.OrgID,
		"tenant.TeamID":    tenant.TeamID,
		"tenant.ProjectID": tenant.ProjectID,
	} {
		if err := validateID(v, name, maxTenantFieldLen); err != nil {
			panic(fmt.Sprintf("logging: %v", err))
		}
	}
	return context.WithValue(ctx, tenantCtxKey{}, tenant)
}

// SessionIDFromContext extracts session ID from context.
func SessionIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithSessionID adds session ID to context.
// Panics if sessionID is empty or contains invalid characters.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if err := validateID(sessionID, "sessionID", maxIDLen); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return context.WithValue(ctx, sessionCtxKey{}, sessionID)
}

// RequestIDFromContext extracts request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// ValidateRequestID reports whether WithRequestID would accept id.
func ValidateRequestID(id string) error {
	return validateID(id, "requestID", maxIDLen)
}

// WithRequestID adds request ID to context.
// Panics if requestID is empty or contains invalid characters.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if err := ValidateRequestID(requestID); err != nil {
		panic(fmt.Sprintf("logging: %v", err))
	}
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}
