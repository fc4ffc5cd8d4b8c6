package hotspot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"github.com/rs/zerolog"
)

// Attributes is the keyed configuration blob the host editor persists for
// one mapper block.
type Attributes map[string]any

// Migration rewrites a merged attribute set, typically to upgrade older
// blobs. It may panic on malformed input.
type Migration func(Attributes) Attributes

// LayoutAttribute is the attribute key holding the layout document.
const LayoutAttribute = "layout"

// AttributeStore holds the attribute blob and applies merges to it.
type AttributeStore struct {
	attrs   Attributes
	migrate Migration
	log     zerolog.Logger
}

// NewAttributeStore creates a store seeded with initial. migrate may be nil.
func NewAttributeStore(initial Attributes, migrate Migration, log zerolog.Logger) *AttributeStore {
	s := &AttributeStore{attrs: make(Attributes, len(initial)), migrate: migrate, log: log}
	maps.Copy(s.attrs, initial)
	return s
}

// ReadAttributes decodes a JSON blob into a new store.
func ReadAttributes(r io.Reader, migrate Migration, log zerolog.Logger) (*AttributeStore, error) {
	var attrs Attributes
	if err := json.NewDecoder(r).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}
	return NewAttributeStore(attrs, migrate, log), nil
}

// Get returns one attribute.
func (s *AttributeStore) Get(key string) (any, bool) {
	v, ok := s.attrs[key]
	return v, ok
}

// Attributes returns a shallow copy of the blob.
func (s *AttributeStore) Attributes() Attributes {
	return maps.Clone(s.attrs)
}

// SetAttributes merges patch into the blob and runs the migration over the
// result. If the migration panics the panic is logged and only the patch
// values are applied on top of the previous blob.
func (s *AttributeStore) SetAttributes(patch Attributes) {
	merged := maps.Clone(s.attrs)
	if merged == nil {
		merged = make(Attributes, len(patch))
	}
	maps.Copy(merged, patch)
	if s.migrate == nil {
		s.attrs = merged
		return
	}
	out, err := s.runMigration(merged)
	if err != nil {
		s.log.Error().Err(err).Int("keys", len(patch)).Msg("attribute migration failed, applying patch only")
		if s.attrs == nil {
			s.attrs = make(Attributes, len(patch))
		}
		maps.Copy(s.attrs, patch)
		return
	}
	s.attrs = out
}

func (s *AttributeStore) runMigration(in Attributes) (out Attributes, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("migration panic: %v", r)
		}
	}()
	out = s.migrate(maps.Clone(in))
	if out == nil {
		return nil, fmt.Errorf("migration returned nil attributes")
	}
	return out, nil
}

// SetLayout stores l under LayoutAttribute through SetAttributes.
func (s *AttributeStore) SetLayout(l *Layout) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("set layout: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("set layout: %w", err)
	}
	s.SetAttributes(Attributes{LayoutAttribute: v})
	return nil
}

// Layout decodes the layout document held in the blob.
func (s *AttributeStore) Layout() (*Layout, error) {
	v, ok := s.attrs[LayoutAttribute]
	if !ok {
		return nil, fmt.Errorf("layout attribute: %w", ErrNoLayout)
	}
	var data []byte
	switch raw := v.(type) {
	case string:
		data = []byte(raw)
	case []byte:
		data = raw
	default:
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return nil, fmt.Errorf("layout attribute: %w", err)
		}
	}
	l, err := DecodeLayoutJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("layout attribute: %w", err)
	}
	return l, nil
}

// WriteTo encodes the blob as JSON.
func (s *AttributeStore) WriteTo(w io.Writer) (int64, error) {
	data, err := json.Marshal(s.attrs)
	if err != nil {
		return 0, fmt.Errorf("write attributes: %w", err)
	}
	n, err := w.Write(data)
	return int64(n), err
}
