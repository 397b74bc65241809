package schema

import (
	"testing"

	"github.com/protei/nasdecode/internal/bitreader"
)

func TestSchemaDecodePreservesFieldOrder(t *testing.T) {
	s := Schema{
		{Name: "a", Decode: func(r *bitreader.Reader) (any, error) { return r.ReadBits(8) }},
		{Name: "b", Decode: func(r *bitreader.Reader) (any, error) { return r.ReadBits(8) }},
	}
	rec, err := s.Decode(bitreader.New([]byte{0x01, 0x02}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := rec.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"a":1,"b":2}` {
		t.Errorf(`expect {"a":1,"b":2}, got %s`, data)
	}
}

func TestSchemaDecodeAbortsOnMandatoryFieldError(t *testing.T) {
	s := Schema{
		{Name: "only", Decode: func(r *bitreader.Reader) (any, error) { return r.ReadBits(32) }},
	}
	if _, err := s.Decode(bitreader.New([]byte{0x01})); err == nil {
		t.Errorf("expected error from short mandatory field")
	}
}

func TestRecordGet(t *testing.T) {
	s := Schema{
		{Name: "x", Decode: func(r *bitreader.Reader) (any, error) { return "value", nil }},
	}
	rec, err := s.Decode(bitreader.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := rec.Get("x")
	if !ok || v != "value" {
		t.Errorf("expect (value, true), got (%v, %v)", v, ok)
	}
	if _, ok := rec.Get("missing"); ok {
		t.Errorf("expect missing field to report absent")
	}
}
