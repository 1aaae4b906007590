package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestContextFields_NotAContext(t *testing.T) {
	h := ContextFields()
	rec := Record{MessageKey: "m"}
	assert.Equal(t, Record{MessageKey: "m"}, h(rec, map[string]any{"app": "x"}))
}

func TestContextFields_Correlation(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
	ctx = WithTenant(ctx, &Tenant{OrgID: "acme", TeamID: "platform", ProjectID: "api"})
	ctx = WithSessionID(ctx, "sess_123")
	ctx = WithRequestID(ctx, "req-9")

	out := ContextFields()(Record{"request.id": "caller-set"}, ctx)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
	assert.Equal(t, true, out["trace_sampled"])
	assert.Equal(t, "acme", out["tenant.org"])
	assert.Equal(t, "platform", out["tenant.team"])
	assert.Equal(t, "api", out["tenant.project"])
	assert.Equal(t, "sess_123", out["session.id"])
	assert.Equal(t, "caller-set", out["request.id"])
}

func TestContextFields_EmptyContext(t *testing.T) {
	out := ContextFields()(Record{MessageKey: "m"}, context.Background())
	assert.Equal(t, Record{MessageKey: "m"}, out)
}

func TestWithTenant_Validation(t *testing.T) {
	tests := []struct {
		name   string
		tenant *Tenant
	}{
		{"nil tenant", nil},
		{"empty org", &Tenant{OrgID: "", TeamID: "t", ProjectID: "p"}},
		{"bad characters", &Tenant{OrgID: "acme corp", TeamID: "t", ProjectID: "p"}},
		{"too long", &Tenant{OrgID: strings.Repeat("a", 65), TeamID: "t", ProjectID: "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { WithTenant(context.Background(), tt.tenant) })
		})
	}
}

func TestWithRequestID_Validation(t *testing.T) {
	assert.Panics(t, func() { WithRequestID(context.Background(), "") })
	assert.Panics(t, func() { WithRequestID(context.Background(), "has space") })
	assert.Panics(t, func() { WithSessionID(context.Background(), strings.Repeat("s", 129)) })
	assert.NotPanics(t, func() { WithRequestID(context.Background(), "req_1-a") })
}

func TestInstanceID(t *testing.T) {
	h := InstanceID()
	first := h(Record{}, nil)["instance_id"]
	second := h(nil, nil)["instance_id"]

	id, ok := first.(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NotEqual(t, first, InstanceID()(Record{}, nil)["instance_id"])
	assert.Equal(t, "mine", h(Record{"instance_id": "mine"}, nil)["instance_id"])
}

func TestValidateRequestID(t *testing.T) {
	assert.NoError(t, ValidateRequestID("req-1"))
	assert.Error(t, ValidateRequestID(""))
	assert.Error(t, ValidateRequestID("a/b"))
}
