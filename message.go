package forkwork

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// Messages are tagged values: string, mapping, list, number, boolean or null.
// On the wire every message is UTF-8 text: strings travel verbatim, everything
// else travels as JSON.

// Encode renders a message value as frame text. Strings pass through
// unchanged; every other value is marshaled to JSON.
func Encode(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	data, err := sonic.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}
	return string(data), nil
}

// Decode recovers a message value from frame text. Trailing whitespace (the
// frame padding) is trimmed, then the text is parsed as JSON when it is valid
// JSON and returned verbatim otherwise.
//
// A string that happens to look like JSON ("42", "true", "null") is
// reinterpreted as that JSON value on decode; the wire format carries no type
// tag that could tell the two apart.
func Decode(text string) any {
	trimmed := strings.TrimRight(text, " \t\r\n")
	if trimmed == "" {
		return trimmed
	}

	if !gjson.Valid(trimmed) {
		return trimmed
	}

	var v any
	if err := sonic.Unmarshal([]byte(trimmed), &v); err != nil {
		return trimmed
	}
	return v
}
