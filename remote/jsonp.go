// ABOUTME: Decoder for remote response bodies
// ABOUTME: Accepts a callback invocation like token({...}); or a plain JSON document
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

var callbackPattern = regexp.MustCompile(`^([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([\s\S]*)\)\s*;?$`)

// ParseJSONP splits body into the callback name and its JSON argument. A
// plain JSON body yields an empty name.
func ParseJSONP(body []byte) (callback string, payload []byte, err error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		if !json.Valid(trimmed) {
			return "", nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
		}
		return "", trimmed, nil
	}

	m := callbackPattern.FindSubmatch(trimmed)
	if m == nil {
		return "", nil, fmt.Errorf("%w: not a callback invocation", ErrMalformedResponse)
	}
	payload = bytes.TrimSpace(m[2])
	if !json.Valid(payload) {
		return "", nil, fmt.Errorf("%w: invalid callback argument", ErrMalformedResponse)
	}
	return string(m[1]), payload, nil
}
