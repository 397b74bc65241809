// Package schema drives message decoding from a data table instead of one
// hand-written struct per message. A Schema is an ordered list of Fields;
// decoding a Schema produces a Record, an ordered name→value list that
// marshals to JSON preserving field order. Per-message packages (emm, esm)
// hold a dedicated Schema for each flagship message, whose field decoders
// yield typed IE container values, and decode every other recognized
// message type through a single opaque body field.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/protei/nasdecode/internal/bitreader"
)

// FieldDecoder decodes one named field from r, returning a JSON-marshalable
// value.
type FieldDecoder func(r *bitreader.Reader) (any, error)

// Field is one entry in a Schema: a name and the decoder that produces its
// value.
type Field struct {
	Name   string
	Decode FieldDecoder
}

// Schema is the ordered sequence of Fields that make up one message type.
type Schema []Field

// Record is the result of decoding a Schema: an ordered set of named values.
type Record struct {
	pairs []recordPair
}

type recordPair struct {
	Name  string
	Value any
}

// Get returns the value for name and whether it was present in the record.
func (r Record) Get(name string) (any, bool) {
	for _, p := range r.pairs {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// MarshalJSON renders the record as a JSON object with fields in schema
// order, matching the order 3GPP lists them in the message definition.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range r.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("schema: marshaling field %q: %w", p.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode runs every field decoder in declared order against r, assembling
// a Record. A mandatory field's decode failure aborts immediately; optional
// fields (built on the ie package's tag peek-and-rewind containers) report
// their own absence without error, so no special-casing is needed here.
func (s Schema) Decode(r *bitreader.Reader) (Record, error) {
	rec := Record{pairs: make([]recordPair, 0, len(s))}
	for _, f := range s {
		v, err := f.Decode(r)
		if err != nil {
			return Record{}, fmt.Errorf("schema: field %q: %w", f.Name, err)
		}
		rec.pairs = append(rec.pairs, recordPair{Name: f.Name, Value: v})
	}
	return rec, nil
}
