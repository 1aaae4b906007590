// pkg/logging/serialize.go
package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Serialize renders rec as a single line of JSON. Keys come out sorted and
// HTML characters are left unescaped. A nil Record renders as {}.
//
// Values the encoder cannot represent (channels, functions, cycles) produce
// an error; they are never dropped silently.
func Serialize(rec Record) (string, error) {
	if rec == nil {
		rec = Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return "", fmt.Errorf("serialize record: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
