package emm

import (
	"fmt"

	"github.com/protei/nasdecode/internal/bitreader"
	"github.com/protei/nasdecode/internal/ie"
)

// IdentityType is the 3-bit identity type carried in EPS mobile identity
// and in the Identity Request/Response message type nibble.
type IdentityType uint8

const (
	IdentityNone  IdentityType = 0
	IdentityIMSI  IdentityType = 1
	IdentityIMEI  IdentityType = 2
	IdentityIMEISV IdentityType = 3
	IdentityTMSI  IdentityType = 4
	IdentityTMGI  IdentityType = 5
)

var identityTypeNames = map[IdentityType]string{
	IdentityNone:   "NoIdentity",
	IdentityIMSI:   "IMSI",
	IdentityIMEI:   "IMEI",
	IdentityIMEISV: "IMEISV",
	IdentityTMSI:   "TMSI",
	IdentityTMGI:   "TMGI",
}

func (t IdentityType) String() string {
	if name, ok := identityTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("IdentityType(%d)", uint8(t))
}

func (t IdentityType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// decodeIdentityType is the Type1V nibble decoder for the Identity Request
// message's requested identity type field.
func decodeIdentityType(raw uint8) (IdentityType, error) {
	return IdentityType(raw), nil
}

// MobileIdentity is the decoded form of an EPS mobile identity IE: either a
// BCD digit string (every identity type except TMSI and TMGI) or an opaque
// hex TMSI/TMGI value.
type MobileIdentity struct {
	Type   IdentityType `json:"type"`
	Digits string       `json:"digits,omitempty"`
	Raw    string       `json:"raw,omitempty"`
}

// decodeMobileIdentity implements the EPS mobile identity encoding of TS
// 24.008 §10.5.1.4: the first byte holds the identity type (bits 1-3) and
// the odd/even indicator (bit 4) in its low nibble, and the first BCD digit in its
// high nibble; subsequent bytes each hold two BCD digits, low nibble first.
func decodeMobileIdentity(r *bitreader.Reader) (MobileIdentity, error) {
	raw, err := ie.DecodeLayer3Buffer(r)
	if err != nil {
		return MobileIdentity{}, err
	}
	if len(raw) == 0 {
		return MobileIdentity{}, fmt.Errorf("emm: empty mobile identity")
	}

	idType := IdentityType(raw[0] & 0x07)
	oddLength := raw[0]&0x08 != 0

	if idType == IdentityTMSI || idType == IdentityTMGI {
		return MobileIdentity{Type: idType, Raw: fmt.Sprintf("%x", raw[1:])}, nil
	}

	digits := make([]byte, 0, len(raw)*2)
	digits = append(digits, bcdDigit(raw[0]>>4))
	for _, b := range raw[1:] {
		digits = append(digits, bcdDigit(b&0x0F))
		digits = append(digits, bcdDigit(b>>4))
	}
	if !oddLength && len(digits) > 0 {
		digits = digits[:len(digits)-1]
	}
	return MobileIdentity{Type: idType, Digits: string(digits)}, nil
}

func bcdDigit(nibble byte) byte {
	if nibble <= 9 {
		return '0' + nibble
	}
	return 'a' + (nibble - 10)
}

// decodeNASKeySetID and decodeEPSAttachType are the two Type1V halves of
// the octet immediately following the AttachRequest message type: the high
// nibble is the NAS key set identifier, the low nibble the EPS attach type.
func decodeNASKeySetID(raw uint8) (uint8, error) { return raw, nil }
func decodeEPSAttachType(raw uint8) (uint8, error) { return raw, nil }

// EMMCause is the 1-byte EMM cause value carried by Reject/Failure messages.
type EMMCause uint8

func (c EMMCause) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", uint8(c))), nil
}

func decodeEMMCause(r *bitreader.Reader) (EMMCause, error) {
	v, err := ie.DecodeUint8(r)
	return EMMCause(v), err
}
