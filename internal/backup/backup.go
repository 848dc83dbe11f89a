// Package backup snapshots and restores every persisted key in the reserved
// namespace as one portable JSON document. Entry values travel verbatim; the
// payload never interprets them.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/afmlabs/afm-agent/internal/store"
)

// Version is the only payload version this agent reads or writes.
const Version = 1

// Payload is the backup wire document.
type Payload struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
	Entries   map[string]string `json:"entries"`
}

// FormatError reports why a backup document was rejected.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

func invalidf(format string, args ...any) *FormatError {
	return &FormatError{Message: fmt.Sprintf(format, args...)}
}

// Snapshot captures every namespaced key currently in the store.
func Snapshot(ctx context.Context, s store.Store) (*Payload, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}

	payload := &Payload{
		Version:   Version,
		CreatedAt: now().UTC(),
		Entries:   map[string]string{},
	}
	for _, key := range keys {
		if !store.IsNamespaced(key) {
			continue
		}
		value, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		if !ok {
			continue
		}
		payload.Entries[key] = value
	}
	return payload, nil
}

// Parse validates a backup document. An unreadable document, a version
// mismatch or a missing or malformed envelope field is fatal; individual
// entries that are not strings or not namespaced are dropped, never restored.
func Parse(data []byte) (*Payload, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, invalidf("not a valid backup document: %v", err)
	}

	version, ok := doc["version"].(float64)
	if !ok || int(version) != Version {
		return nil, invalidf("unsupported backup version")
	}

	createdRaw, ok := doc["createdAt"].(string)
	if !ok {
		return nil, invalidf("backup document is missing createdAt")
	}
	// A createdAt that does not parse marks the document as corrupted or
	// foreign, fatal like a missing field.
	createdAt, err := time.Parse(time.RFC3339, createdRaw)
	if err != nil {
		return nil, invalidf("backup createdAt is not a timestamp: %v", err)
	}

	entriesRaw, ok := doc["entries"].(map[string]any)
	if !ok {
		return nil, invalidf("backup document is missing entries")
	}

	payload := &Payload{Version: Version, CreatedAt: createdAt, Entries: map[string]string{}}
	for key, raw := range entriesRaw {
		value, ok := raw.(string)
		if !ok || !store.IsNamespaced(key) {
			continue
		}
		payload.Entries[key] = value
	}
	return payload, nil
}

// Restore replaces the namespaced keyspace with the payload's entries. Keys
// outside the namespace are untouched. Values are written verbatim; the
// guarded readers deal with whatever the backup contained.
func Restore(ctx context.Context, s store.Store, payload *Payload) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return fmt.Errorf("listing keys: %w", err)
	}
	for _, key := range keys {
		if !store.IsNamespaced(key) {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	for key, value := range payload.Entries {
		if err := s.Set(ctx, key, value); err != nil {
			return fmt.Errorf("restoring %s: %w", key, err)
		}
	}
	return nil
}

// now is swapped in tests.
var now = time.Now
