package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// SchemaVersion is the current persisted blob format version.
const SchemaVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Encode wraps v in the versioned envelope and serialises it.
func Encode(v any) ([]byte, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	raw, err := sonic.Marshal(envelope{
		Version: SchemaVersion,
		Data:    data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return raw, nil
}

// Decode unwraps a versioned blob into v. Blobs written before the envelope
// was introduced (bare arrays) are accepted as version 0 payloads.
func Decode(raw []byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fmt.Errorf("decode: empty blob")
	}
	if trimmed[0] == '[' {
		return sonic.Unmarshal(trimmed, v)
	}

	var env envelope
	if err := sonic.Unmarshal(trimmed, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version > SchemaVersion {
		return fmt.Errorf("decode: unsupported schema version %d", env.Version)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("decode: envelope has no data")
	}
	return sonic.Unmarshal(env.Data, v)
}
