// pkg/logging/hook.go
package logging

// Hook transforms an enriched record right before serialization. data is the
// value bound to the Logger at creation. Whatever the hook returns is what
// gets written, including changes to reserved keys.
type Hook func(rec Record, data any) Record

// IdentityHook returns the record unchanged.
func IdentityHook(rec Record, _ any) Record {
	return rec
}

// Chain composes hooks left to right. Nil hooks are skipped.
func Chain(hooks ...Hook) Hook {
	active := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			active = append(active, h)
		}
	}
	switch len(active) {
	case 0:
		return IdentityHook
	case 1:
		return active[0]
	}
	return func(rec Record, data any) Record {
		for _, h := range active {
			rec = h(rec, data)
		}
		return rec
	}
}

// StaticFields adds constant fields that the record does not already carry.
func StaticFields(fields map[string]string) Hook {
	if len(fields) == 0 {
		return IdentityHook
	}
	snapshot := make(map[string]string, len(fields))
	for k, v := range fields {
		snapshot[k] = v
	}
	return func(rec Record, _ any) Record {
		if rec == nil {
			rec = Record{}
		}
		for k, v := range snapshot {
			if _, exists := rec[k]; !exists {
				rec[k] = v
			}
		}
		return rec
	}
}

// DataFields merges the Logger's context data into the record when it is a
// Record, a map[string]any or a map[string]string. Existing keys win.
func DataFields() Hook {
	return func(rec Record, data any) Record {
		var src map[string]any
		switch d := data.(type) {
		case Record:
			src = d
		case map[string]any:
			src = d
		case map[string]string:
			src = make(map[string]any, len(d))
			for k, v := range d {
				src[k] = v
			}
		default:
			return rec
		}
		if rec == nil {
			rec = Record{}
		}
		for k, v := range src {
			if _, exists := rec[k]; !exists {
				rec[k] = v
			}
		}
		return rec
	}
}
