package ie

import (
	"errors"
	"testing"

	"github.com/protei/nasdecode/internal/bitreader"
)

func TestDecodeType1VReadsHighNibbleFirst(t *testing.T) {
	r := bitreader.New([]byte{0xA5})
	v, err := DecodeType1V(r, IdentityNibble)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Value != 0xA {
		t.Errorf("expect 0xa, got 0x%x", v.Value)
	}
	low, err := DecodeType1V(r, IdentityNibble)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low.Value != 0x5 {
		t.Errorf("expect 0x5, got 0x%x", low.Value)
	}
}

func TestDecodeType1TVPresentAndAbsent(t *testing.T) {
	r := bitreader.New([]byte{0xB3, 0x00})
	present, err := DecodeType1TV(r, 0xB, IdentityNibble)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !present.Present || present.Value != 0x3 {
		t.Errorf("expect present with value 0x3, got %+v", present)
	}

	absent, err := DecodeType1TV(r, 0xB, IdentityNibble)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if absent.Present {
		t.Errorf("expect not present, got %+v", absent)
	}
	// the mismatched byte must still be there for the next field to try.
	b, ok := r.PeekByte()
	if !ok || b != 0x00 {
		t.Errorf("expected rewind to leave 0x00 unread, got 0x%x ok=%v", b, ok)
	}
}

func TestDecodeType2RewindsOnMismatch(t *testing.T) {
	r := bitreader.New([]byte{0xAA, 0xBB})
	absent, err := DecodeType2(r, 0xFF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if absent.Present {
		t.Errorf("expect not present")
	}
	present, err := DecodeType2(r, 0xAA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !present.Present {
		t.Errorf("expect present")
	}
	b, ok := r.PeekByte()
	if !ok || b != 0xBB {
		t.Errorf("expect cursor at 0xbb, got 0x%x ok=%v", b, ok)
	}
}

func TestDecodeType4LVSubBuffersAndDiscardsResidual(t *testing.T) {
	// length 3, but inner only reads 1 byte; the remaining 2 bytes of the
	// IE value must be discarded without affecting the outer cursor.
	r := bitreader.New([]byte{0x03, 0xAA, 0xBB, 0xCC, 0xFF})

	onlyFirstByte := func(sub *bitreader.Reader) (uint8, error) {
		return DecodeUint8(sub)
	}

	v, err := DecodeType4LV(r, onlyFirstByte)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Value != 0xAA {
		t.Errorf("expect 0xaa, got 0x%x", v.Value)
	}
	b, ok := r.PeekByte()
	if !ok || b != 0xFF {
		t.Errorf("expect outer cursor past the whole LV, got 0x%x ok=%v", b, ok)
	}
}

func TestDecodeType4TLVRewindsWholeTagOnMismatch(t *testing.T) {
	r := bitreader.New([]byte{0x99, 0x01, 0xAA})
	absent, err := DecodeType4TLV(r, 0x50, DecodeLayer3Buffer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if absent.Present {
		t.Errorf("expect not present")
	}
	b, ok := r.PeekByte()
	if !ok || b != 0x99 {
		t.Errorf("expect rewind to the tag byte, got 0x%x ok=%v", b, ok)
	}
}

func TestDecodeType6LVEReadsSixteenBitLength(t *testing.T) {
	value := []byte{0x01, 0x02, 0x03}
	buf := append([]byte{0x00, 0x03}, value...)
	buf = append(buf, 0xEE)
	r := bitreader.New(buf)

	v, err := DecodeType6LVE(r, DecodeLayer3Buffer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Value) != 3 || v.Value[0] != 0x01 {
		t.Errorf("expect [1 2 3], got %v", v.Value)
	}
	b, ok := r.PeekByte()
	if !ok || b != 0xEE {
		t.Errorf("expect cursor past the LVE, got 0x%x ok=%v", b, ok)
	}
}

func TestDecodeLayer3BufferConsumesRemainder(t *testing.T) {
	r := bitreader.New([]byte{0x11, 0x22, 0x33})
	buf, err := DecodeLayer3Buffer(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buf) != 3 {
		t.Errorf("expect 3 bytes, got %d", len(buf))
	}
	data, err := buf.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"112233"` {
		t.Errorf(`expect "112233", got %s`, data)
	}
}

func TestDecodeType3VPropagatesInnerError(t *testing.T) {
	r := bitreader.New([]byte{0x01, 0x02})
	boom := errors.New("boom")
	_, err := DecodeType3V(r, 2, func(*bitreader.Reader) (uint8, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expect inner error to propagate, got %v", err)
	}
}
