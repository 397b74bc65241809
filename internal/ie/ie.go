// Package ie provides the generic information-element container types used
// throughout pkg/nas/emm and pkg/nas/esm. Each container corresponds to one
// of the IE formats in TS 24.007 §11.2: a half-octet value (Type 1), an
// optional half-octet tag+value (Type 1 TV), a bare presence tag (Type 2), a
// fixed-length value (Type 3), an optional tag+fixed-length value (Type 3
// TV), a length-prefixed value (Type 4 LV/TLV), and a two-byte-length-prefixed
// value (Type 6 LVE/TLVE).
//
// Optional containers (Type 1 TV, Type 3 TV, Type 4 TLV, Type 6 TLVE) all
// follow the same tag peek-and-rewind discipline: read the tag byte (or
// nibble, for Type 1 TV), compare it against the expected value, and if it
// doesn't match, rewind exactly one byte/position and report Present=false
// so the next schema field can have a try at the same bytes.
package ie

import (
	"encoding/hex"

	"github.com/protei/nasdecode/internal/bitreader"
)

// Decoder decodes one value of type T from r, consuming exactly as many
// bits as the value occupies.
type Decoder[T any] func(r *bitreader.Reader) (T, error)

// Layer3Buffer is an opaque, length-bounded byte payload for IE contents
// this codec does not model field-by-field. It renders as a hex string in
// JSON rather than a byte array.
type Layer3Buffer []byte

// MarshalJSON renders the buffer as a lowercase hex string.
func (b Layer3Buffer) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(b) + `"`), nil
}

// DecodeLayer3Buffer reads the remainder of r's current sub-buffer verbatim.
// It is the usual inner decoder for Type4LV/Type6LVE containers whose
// content this codec leaves unmodeled.
func DecodeLayer3Buffer(r *bitreader.Reader) (Layer3Buffer, error) {
	var out Layer3Buffer
	for !r.End() {
		b, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		out = append(out, byte(b))
	}
	return out, nil
}

// Type1V is a mandatory half-octet (4-bit) value, always the high or low
// nibble of a shared octet with an adjacent field.
type Type1V[T any] struct {
	Value T
}

// NibbleDecoder converts a raw 4-bit field value into T.
type NibbleDecoder[T any] func(raw uint8) (T, error)

// DecodeType1V reads a 4-bit field and converts it with convert.
func DecodeType1V[T any](r *bitreader.Reader, convert NibbleDecoder[T]) (Type1V[T], error) {
	raw, err := r.ReadBits(4)
	if err != nil {
		return Type1V[T]{}, err
	}
	v, err := convert(uint8(raw))
	if err != nil {
		return Type1V[T]{}, err
	}
	return Type1V[T]{Value: v}, nil
}

// Type1TV is an optional half-octet tag plus half-octet value packed into
// one octet: [tag:4][value:4]. Present is false if the high nibble does not
// match wantTag, in which case the whole octet is rewound.
type Type1TV[T any] struct {
	Present bool
	Value   T
}

// DecodeType1TV peeks the next byte's high nibble against wantTag.
func DecodeType1TV[T any](r *bitreader.Reader, wantTag byte, convert NibbleDecoder[T]) (Type1TV[T], error) {
	b, ok := r.PeekByte()
	if !ok || (b>>4) != wantTag {
		return Type1TV[T]{Present: false}, nil
	}
	if _, err := r.ReadBits(4); err != nil { // consume tag nibble
		return Type1TV[T]{}, err
	}
	raw, err := r.ReadBits(4)
	if err != nil {
		return Type1TV[T]{}, err
	}
	v, err := convert(uint8(raw))
	if err != nil {
		return Type1TV[T]{}, err
	}
	return Type1TV[T]{Present: true, Value: v}, nil
}

// Type2 is a bare presence-only tag octet with no value: present if the
// next byte equals wantTag, consuming it; otherwise not present and the
// byte is left unread.
type Type2 struct {
	Present bool
	Tag     byte
}

// DecodeType2 peeks a full tag byte.
func DecodeType2(r *bitreader.Reader, wantTag byte) (Type2, error) {
	b, ok := r.PeekByte()
	if !ok || b != wantTag {
		return Type2{Present: false}, nil
	}
	if _, err := r.ReadBits(8); err != nil {
		return Type2{}, err
	}
	return Type2{Present: true, Tag: wantTag}, nil
}

// Type3V is a mandatory fixed-length value of width bytes, with no tag.
type Type3V[T any] struct {
	Value T
}

// DecodeType3V reads exactly width bytes into a fresh sub-buffer and decodes
// them with inner; any bytes inner does not consume are discarded.
func DecodeType3V[T any](r *bitreader.Reader, width int, inner Decoder[T]) (Type3V[T], error) {
	raw, err := r.ReadBytes(width)
	if err != nil {
		return Type3V[T]{}, err
	}
	sub := bitreader.New(raw)
	v, err := inner(sub)
	if err != nil {
		return Type3V[T]{}, err
	}
	return Type3V[T]{Value: v}, nil
}

// Type3TV is an optional tag byte followed by a fixed-length value.
type Type3TV[T any] struct {
	Present bool
	Value   T
}

// DecodeType3TV peeks the tag byte; on mismatch, the byte is left unread.
func DecodeType3TV[T any](r *bitreader.Reader, wantTag byte, width int, inner Decoder[T]) (Type3TV[T], error) {
	b, ok := r.PeekByte()
	if !ok || b != wantTag {
		return Type3TV[T]{Present: false}, nil
	}
	if _, err := r.ReadBits(8); err != nil {
		return Type3TV[T]{}, err
	}
	raw, err := r.ReadBytes(width)
	if err != nil {
		return Type3TV[T]{}, err
	}
	sub := bitreader.New(raw)
	v, err := inner(sub)
	if err != nil {
		return Type3TV[T]{}, err
	}
	return Type3TV[T]{Present: true, Value: v}, nil
}

// Type4LV is a mandatory one-byte-length-prefixed value: [len:8][value:len
// bytes]. The inner decoder runs against a sub-buffer of exactly len bytes;
// any residual bytes it leaves unread are discarded, and the outer reader
// always advances by exactly 1+len bytes.
type Type4LV[T any] struct {
	Value T
}

// DecodeType4LV reads the length byte, sub-buffers, and decodes with inner.
func DecodeType4LV[T any](r *bitreader.Reader, inner Decoder[T]) (Type4LV[T], error) {
	lenByte, err := r.ReadBits(8)
	if err != nil {
		return Type4LV[T]{}, err
	}
	raw, err := r.ReadBytes(int(lenByte))
	if err != nil {
		return Type4LV[T]{}, err
	}
	sub := bitreader.New(raw)
	v, err := inner(sub)
	if err != nil {
		return Type4LV[T]{}, err
	}
	return Type4LV[T]{Value: v}, nil
}

// Type4TLV is an optional tag byte, one-byte length, then the value.
type Type4TLV[T any] struct {
	Present bool
	Value   T
}

// DecodeType4TLV peeks the tag byte before committing to the length+value read.
func DecodeType4TLV[T any](r *bitreader.Reader, wantTag byte, inner Decoder[T]) (Type4TLV[T], error) {
	b, ok := r.PeekByte()
	if !ok || b != wantTag {
		return Type4TLV[T]{Present: false}, nil
	}
	if _, err := r.ReadBits(8); err != nil {
		return Type4TLV[T]{}, err
	}
	lenByte, err := r.ReadBits(8)
	if err != nil {
		return Type4TLV[T]{}, err
	}
	raw, err := r.ReadBytes(int(lenByte))
	if err != nil {
		return Type4TLV[T]{}, err
	}
	sub := bitreader.New(raw)
	v, err := inner(sub)
	if err != nil {
		return Type4TLV[T]{}, err
	}
	return Type4TLV[T]{Present: true, Value: v}, nil
}

// Type6LVE is a mandatory two-byte big-endian-length-prefixed value, used
// for IEs that may exceed 255 bytes (chiefly the ESM message container
// embedded inside several EMM messages).
type Type6LVE[T any] struct {
	Value T
}

// DecodeType6LVE reads the 16-bit length, sub-buffers, and decodes with inner.
func DecodeType6LVE[T any](r *bitreader.Reader, inner Decoder[T]) (Type6LVE[T], error) {
	lenBits, err := r.ReadBits(16)
	if err != nil {
		return Type6LVE[T]{}, err
	}
	raw, err := r.ReadBytes(int(lenBits))
	if err != nil {
		return Type6LVE[T]{}, err
	}
	sub := bitreader.New(raw)
	v, err := inner(sub)
	if err != nil {
		return Type6LVE[T]{}, err
	}
	return Type6LVE[T]{Value: v}, nil
}

// Type6TLVE is an optional tag byte, two-byte length, then the value.
type Type6TLVE[T any] struct {
	Present bool
	Value   T
}

// DecodeType6TLVE peeks the tag byte before committing to the length+value read.
func DecodeType6TLVE[T any](r *bitreader.Reader, wantTag byte, inner Decoder[T]) (Type6TLVE[T], error) {
	b, ok := r.PeekByte()
	if !ok || b != wantTag {
		return Type6TLVE[T]{Present: false}, nil
	}
	if _, err := r.ReadBits(8); err != nil {
		return Type6TLVE[T]{}, err
	}
	lenBits, err := r.ReadBits(16)
	if err != nil {
		return Type6TLVE[T]{}, err
	}
	raw, err := r.ReadBytes(int(lenBits))
	if err != nil {
		return Type6TLVE[T]{}, err
	}
	sub := bitreader.New(raw)
	v, err := inner(sub)
	if err != nil {
		return Type6TLVE[T]{}, err
	}
	return Type6TLVE[T]{Present: true, Value: v}, nil
}

// DecodeUint8 is a convenience inner decoder returning the sub-buffer's
// single byte as a uint8, for Type3V/Type4LV containers holding a plain
// byte value.
func DecodeUint8(r *bitreader.Reader) (uint8, error) {
	v, err := r.ReadBits(8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

// IdentityNibble returns raw unchanged, for Type1V/Type1TV fields that are
// used as a plain numeric value rather than an enum.
func IdentityNibble(raw uint8) (uint8, error) {
	return raw, nil
}
