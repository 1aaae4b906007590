// pkg/logging/record.go
package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Reserved record keys.
const (
	MessageKey   = "message"
	TimestampKey = "timestamp"
	SeverityKey  = "severity"
	ErrorKey     = "error"
)

// TimestampFormat is ISO-8601 UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Record is one log event: string keys mapped to JSON-compatible values.
// A Record is built fresh for every log call and owned by that call.
type Record map[string]any

// clone returns a shallow copy. A nil Record clones to an empty one.
func (r Record) clone() Record {
	out := make(Record, len(r)+3)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Enrich normalizes payload into a Record and stamps it with the event
// instant, the severity and, when cause is non-nil, the error detail.
//
// Strings, untyped nil and nil pointers become {"message": s}. Records and
// map[string]any are shallow-copied. Other structured values are converted
// through their JSON encoding; scalars are stringified into "message".
// The only failure is a payload the JSON encoder rejects.
func Enrich(payload any, sev Severity, cause any, now time.Time) (Record, error) {
	rec, err := toRecord(payload)
	if err != nil {
		return nil, err
	}

	rec[TimestampKey] = now.UTC().Format(TimestampFormat)
	rec[SeverityKey] = sev.String()

	if cause != nil && !isNilPointer(cause) {
		if _, exists := rec[ErrorKey]; !exists {
			rec[ErrorKey] = errorDetail(cause)
		}
	}
	return rec, nil
}

func toRecord(payload any) (Record, error) {
	switch p := payload.(type) {
	case nil:
		return Record{MessageKey: ""}, nil
	case string:
		return Record{MessageKey: p}, nil
	case Record:
		return p.clone(), nil
	case map[string]any:
		return Record(p).clone(), nil
	}

	// a nil pointer encodes as null, same as an untyped nil
	if isNilPointer(payload) {
		return Record{MessageKey: ""}, nil
	}

	switch p := payload.(type) {
	case error:
		return Record{MessageKey: p.Error()}, nil
	case fmt.Stringer:
		return Record{MessageKey: p.String()}, nil
	}

	if !isStructured(payload) {
		return Record{MessageKey: fmt.Sprint(payload)}, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	if !bytes.HasPrefix(raw, []byte("{")) {
		// nil maps and values that encode to something other than an object
		return Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	rec := Record{}
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return rec, nil
}

// isNilPointer reports whether v is a non-nil interface holding a nil
// pointer. Methods on such values may dereference their receiver.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// isStructured reports whether v is a struct or a map (possibly behind
// pointers).
func isStructured(v any) bool {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}

// errorDetail builds the value stored under "error". Structured causes keep
// only their own fields: promoted fields of embedded structs are dropped.
// Nil pointer causes are treated as no cause. Error values always carry their Error() text as "message".
func errorDetail(cause any) any {
	switch c := cause.(type) {
	case string:
		return c
	case Record:
		return c.clone()
	case map[string]any:
		return Record(c).clone()
	}

	fields := ownFields(cause)
	if err, ok := cause.(error); ok {
		if fields == nil {
			fields = Record{}
		}
		if _, exists := fields[MessageKey]; !exists {
			fields[MessageKey] = err.Error()
		}
		return fields
	}
	if fields != nil {
		return fields
	}
	return fmt.Sprint(cause)
}

// ownFields returns the exported, non-embedded fields of a struct value keyed
// by their JSON name, or nil when v is not a struct.
func ownFields(v any) Record {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	out := Record{}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = rv.Field(i).Interface()
	}
	return out
}
