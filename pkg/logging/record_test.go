package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testInstant = time.Date(2024, 3, 5, 10, 15, 0, 123_000_000, time.UTC)

func TestEnrich_StringPayload(t *testing.T) {
	for _, sev := range []Severity{Debug, Info, Warn, Error} {
		for _, msg := range []string{"", "hello", "quote \" and <html>", "ünïcødé"} {
			rec, err := Enrich(msg, sev, nil, testInstant)
			require.NoError(t, err)

			assert.Equal(t, msg, rec[MessageKey])
			assert.Equal(t, sev.String(), rec[SeverityKey])
			ts, ok := rec[TimestampKey].(string)
			require.True(t, ok)
			parsed, err := time.Parse(time.RFC3339Nano, ts)
			require.NoError(t, err)
			assert.True(t, parsed.Equal(testInstant))
			assert.NotContains(t, rec, ErrorKey)
		}
	}
}

func TestEnrich_TimestampFormat(t *testing.T) {
	local := time.FixedZone("UTC+2", 2*60*60)
	rec, err := Enrich("x", Info, nil, time.Date(2024, 3, 5, 12, 15, 0, 7_000_000, local))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T10:15:00.007Z", rec[TimestampKey])
}

func TestEnrich_NilPayload(t *testing.T) {
	rec, err := Enrich(nil, Info, nil, testInstant)
	require.NoError(t, err)
	assert.Equal(t, "", rec[MessageKey])

	rec, err = Enrich(Record(nil), Info, nil, testInstant)
	require.NoError(t, err)
	assert.NotContains(t, rec, MessageKey)
	assert.Len(t, rec, 2)
}

func TestEnrich_StructuredPayload(t *testing.T) {
	input := Record{"user": "ann", "count": 3, "nested": map[string]any{"a": true}}

	rec, err := Enrich(input, Warn, nil, testInstant)
	require.NoError(t, err)

	for k, v := range input {
		assert.Equal(t, v, rec[k], "key %q", k)
	}
	assert.NotContains(t, rec, MessageKey)
	assert.Equal(t, "Warn", rec[SeverityKey])
	assert.Len(t, rec, len(input)+2)

	// the caller's map is not touched
	assert.NotContains(t, input, SeverityKey)
	assert.NotContains(t, input, TimestampKey)
}

func TestEnrich_OverwritesSeverityAndTimestamp(t *testing.T) {
	input := map[string]any{
		SeverityKey:  "Bogus",
		TimestampKey: "yesterday",
		"keep":       "me",
	}
	rec, err := Enrich(input, Error, nil, testInstant)
	require.NoError(t, err)
	assert.Equal(t, "Error", rec[SeverityKey])
	assert.Equal(t, "2024-03-05T10:15:00.123Z", rec[TimestampKey])
	assert.Equal(t, "me", rec["keep"])
}

type orderEvent struct {
	OrderID string `json:"order_id"`
	Amount  int    `json:"amount"`
	secret  string
}

func TestEnrich_StructPayload(t *testing.T) {
	rec, err := Enrich(orderEvent{OrderID: "o-1", Amount: 42, secret: "x"}, Info, nil, testInstant)
	require.NoError(t, err)
	assert.Equal(t, "o-1", rec["order_id"])
	assert.Equal(t, json.Number("42"), rec["amount"])
	assert.NotContains(t, rec, "secret")
	assert.NotContains(t, rec, MessageKey)
}

type hostName struct{ name string }

func (h *hostName) String() string { return "host " + h.name }

func TestEnrich_ScalarPayload(t *testing.T) {
	var nilErr error = (*os.PathError)(nil)

	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{name: "int", payload: 42, want: "42"},
		{name: "error", payload: errors.New("as payload"), want: "as payload"},
		{name: "stringer", payload: &hostName{name: "db1"}, want: "host db1"},
		{name: "nil error pointer", payload: nilErr, want: ""},
		{name: "nil custom error", payload: (*codedError)(nil), want: ""},
		{name: "nil stringer", payload: (*hostName)(nil), want: ""},
		{name: "nil struct pointer", payload: (*orderEvent)(nil), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			var err error
			require.NotPanics(t, func() {
				rec, err = Enrich(tt.payload, Info, nil, testInstant)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec[MessageKey])
			assert.Equal(t, "Info", rec[SeverityKey])
		})
	}
}

func TestEnrich_UnencodablePayload(t *testing.T) {
	_, err := Enrich(struct{ C chan int }{C: make(chan int)}, Info, nil, testInstant)
	require.Error(t, err)
}

type baseFault struct {
	Inherited string `json:"inherited"`
}

type codedError struct {
	baseFault
	Code   int    `json:"code"`
	Detail string `json:"detail"`
	Hidden string `json:"-"`
}

func (e *codedError) Error() string { return fmt.Sprintf("code %d", e.Code) }

func TestEnrich_ErrorCause(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		rec, err := Enrich("boom", Error, errors.New("e1"), testInstant)
		require.NoError(t, err)
		assert.Equal(t, Record{MessageKey: "e1"}, rec[ErrorKey])
	})

	t.Run("struct error keeps own fields only", func(t *testing.T) {
		cause := &codedError{
			baseFault: baseFault{Inherited: "parent"},
			Code:      7,
			Detail:    "bad input",
			Hidden:    "nope",
		}
		rec, err := Enrich("boom", Error, cause, testInstant)
		require.NoError(t, err)
		assert.Equal(t, Record{
			"code":     7,
			"detail":   "bad input",
			MessageKey: "code 7",
		}, rec[ErrorKey])
	})

	t.Run("map cause", func(t *testing.T) {
		cause := map[string]any{"reason": "timeout"}
		rec, err := Enrich("boom", Error, cause, testInstant)
		require.NoError(t, err)
		assert.Equal(t, Record{"reason": "timeout"}, rec[ErrorKey])
	})

	t.Run("primitive cause", func(t *testing.T) {
		rec, err := Enrich("boom", Error, 404, testInstant)
		require.NoError(t, err)
		assert.Equal(t, "404", rec[ErrorKey])

		rec, err = Enrich("boom", Error, "denied", testInstant)
		require.NoError(t, err)
		assert.Equal(t, "denied", rec[ErrorKey])
	})

	t.Run("non-error causes", func(t *testing.T) {
		rec, err := Enrich("boom", Error, &hostName{name: "db1"}, testInstant)
		require.NoError(t, err)
		assert.Equal(t, Record{}, rec[ErrorKey], "no exported fields")

		rec, err = Enrich("boom", Error, orderEvent{OrderID: "o-1", Amount: 3}, testInstant)
		require.NoError(t, err)
		assert.Equal(t, Record{"order_id": "o-1", "amount": 3}, rec[ErrorKey])
	})

	t.Run("nil pointer causes are ignored", func(t *testing.T) {
		var nilErr error = (*codedError)(nil)
		for _, cause := range []any{nilErr, (*os.PathError)(nil), (*hostName)(nil), (*orderEvent)(nil)} {
			var rec Record
			var err error
			require.NotPanics(t, func() {
				rec, err = Enrich("boom", Error, cause, testInstant)
			})
			require.NoError(t, err)
			assert.NotContains(t, rec, ErrorKey, "%T", cause)
			assert.Equal(t, "boom", rec[MessageKey])
		}
	})

	t.Run("existing error field wins", func(t *testing.T) {
		rec, err := Enrich(Record{ErrorKey: "already"}, Error, errors.New("e1"), testInstant)
		require.NoError(t, err)
		assert.Equal(t, "already", rec[ErrorKey])
	})
}
