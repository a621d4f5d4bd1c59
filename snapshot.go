package forkwork

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// A worker process shares no memory with its launcher. The run arguments are
// the only state that crosses the boundary, carried as an explicit serialized
// snapshot in the environment: msgpack for compactness, base64 because
// environment values are text.

// packArgs serializes the argument snapshot handed to a worker process.
func packArgs(args []any) (string, error) {
	data, err := msgpack.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("pack argument snapshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// unpackArgs recovers the argument snapshot inside a worker process. Integers
// arrive as int64 and floats as float64 regardless of their launcher-side
// width.
func unpackArgs(s string) ([]any, error) {
	if s == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("unpack argument snapshot: %w", err)
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var args []any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("unpack argument snapshot: %w", err)
	}
	return args, nil
}
