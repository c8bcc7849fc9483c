package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// encode/decode use encoding/gob rather than a domain codec: unlike
// go-ethereum's tables, which RLP-encode EVM-shaped structs, there is
// no RLP (or other) schema for StarkNet's types in this corpus, and
// gob is the stdlib's own answer to exactly this problem (schema-free
// struct persistence) — see DESIGN.md.
func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeValue(b []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(v); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}
