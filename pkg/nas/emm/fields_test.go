package emm

import (
	"testing"

	"github.com/protei/nasdecode/internal/bitreader"
)

func TestDecodeMobileIdentityIMSIEvenLength(t *testing.T) {
	// type=IMSI(1), odd=0, first digit 2; remaining digits 4,3,6,5,0,8,9,
	// and the final nibble (0) is dropped as even-length filler
	r := bitreader.New([]byte{0x21, 0x34, 0x56, 0x80, 0x09})
	mi, err := decodeMobileIdentity(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mi.Type != IdentityIMSI {
		t.Errorf("expect IMSI, got %s", mi.Type)
	}
	if mi.Digits != "24365089" {
		t.Errorf("expect 24365089, got %q", mi.Digits)
	}
}

func TestDecodeMobileIdentityTMSIIsOpaque(t *testing.T) {
	r := bitreader.New([]byte{0x04, 0xAA, 0xBB, 0xCC, 0xDD})
	mi, err := decodeMobileIdentity(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mi.Type != IdentityTMSI {
		t.Errorf("expect TMSI, got %s", mi.Type)
	}
	if mi.Digits != "" {
		t.Errorf("expect no digits for TMSI, got %q", mi.Digits)
	}
	if mi.Raw != "aabbccdd" {
		t.Errorf("expect raw aabbccdd, got %q", mi.Raw)
	}
}

func TestDecodeMobileIdentityEmptyIsError(t *testing.T) {
	r := bitreader.New([]byte{})
	if _, err := decodeMobileIdentity(r); err == nil {
		t.Errorf("expected error on empty mobile identity")
	}
}

func TestEMMCauseMarshalsAsBareNumber(t *testing.T) {
	data, err := EMMCause(9).MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "9" {
		t.Errorf("expect 9, got %s", data)
	}
}

func TestTypeStringRoundTrip(t *testing.T) {
	cases := map[Type]string{
		TypeAttachRequest:   "AttachRequest",
		TypeIdentityRequest: "IdentityRequest",
		TypeEMMStatus:       "EMMStatus",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
