package nas

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/protei/nasdecode/internal/ie"
	"github.com/protei/nasdecode/pkg/nas/emm"
	"github.com/protei/nasdecode/pkg/nas/esm"
)

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad test hex %q: %v", s, err)
	}
	return b
}

func TestParseIdentityRequest(t *testing.T) {
	msg, err := Parse(decodeHex(t, "075501"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Class != ClassEMM || msg.EMM == nil {
		t.Fatalf("expected an EMM message, got %+v", msg)
	}
	if msg.EMM.Type != emm.TypeIdentityRequest {
		t.Errorf("expect IdentityRequest, got %s", msg.EMM.Type)
	}
	identityType, ok := msg.EMM.Fields.Get("identity_type")
	if !ok {
		t.Fatalf("expected identity_type field")
	}
	v, ok := identityType.(ie.Type1V[emm.IdentityType])
	if !ok {
		t.Fatalf("expected ie.Type1V[emm.IdentityType], got %T", identityType)
	}
	if v.Value != emm.IdentityIMSI {
		t.Errorf("expect IMSI, got %s", v.Value)
	}
}

func TestParseAttachRequest(t *testing.T) {
	frame := "074122083911851844093090" + "0000"
	msg, err := Parse(decodeHex(t, frame))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.EMM.Type != emm.TypeAttachRequest {
		t.Fatalf("expect AttachRequest, got %s", msg.EMM.Type)
	}

	identity, ok := msg.EMM.Fields.Get("eps_mobile_identity")
	if !ok {
		t.Fatalf("expected eps_mobile_identity field")
	}
	lv, ok := identity.(ie.Type4LV[emm.MobileIdentity])
	if !ok {
		t.Fatalf("expected ie.Type4LV[emm.MobileIdentity], got %T", identity)
	}
	mi := lv.Value
	if mi.Type != emm.IdentityIMSI {
		t.Errorf("expect IMSI, got %s", mi.Type)
	}
	if mi.Digits != "311588144900309" {
		t.Errorf("expect digits 311588144900309, got %s", mi.Digits)
	}
}

func TestParseEncryptedShortCircuits(t *testing.T) {
	for _, first := range []byte{0x17, 0x27, 0x37, 0x47, 0xC7} {
		msg, err := Parse([]byte{first, 0xFF, 0xFF})
		if msg != nil {
			t.Errorf("first=0x%x: expected nil message on encrypted input", first)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Kind != KindEncrypted {
			t.Errorf("first=0x%x: expect KindEncrypted, got %v", first, err)
		}
	}
}

func TestParseUnsupportedProtocol(t *testing.T) {
	_, err := Parse([]byte{0x00, 0xFF})
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != KindUnsupportedProtocol || pe.PD != PDGroupCallControl {
		t.Errorf("expect UnsupportedNASProtocol(GCC), got %v", err)
	}
}

func TestParseESMStatus(t *testing.T) {
	// header: PD=2 (ESM), EBI=0; PTI=0x45; type=0xE8 (ESMStatus); esm_cause=0x00
	msg, err := Parse(decodeHex(t, "0245e800"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Class != ClassESM || msg.ESM == nil {
		t.Fatalf("expected an ESM message, got %+v", msg)
	}
	if msg.ESM.Type != esm.TypeESMStatus {
		t.Errorf("expect ESMStatus, got %s", msg.ESM.Type)
	}
	if msg.ESM.PTI != 0x45 {
		t.Errorf("expect pti 0x45, got 0x%x", msg.ESM.PTI)
	}
}

func TestParseDetachRequestMO(t *testing.T) {
	// detach_type=1, nas_key_set_id=2, then a 5-byte mobile identity.
	msg, err := Parse(decodeHex(t, "074512051932547698"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.EMM.Variant != emm.VariantMO {
		t.Errorf("expect MO variant, got %s", msg.EMM.Variant)
	}
}

func TestParseDetachRequestMTFallback(t *testing.T) {
	// detach_type=1, spare=0, no further bytes: MO's mandatory mobile
	// identity length byte cannot be read, so it falls back to MT.
	msg, err := Parse(decodeHex(t, "074510"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.EMM.Variant != emm.VariantMT {
		t.Errorf("expect MT variant, got %s", msg.EMM.Variant)
	}
}

func TestParseDetachRequestBothArmsFail(t *testing.T) {
	// no bytes at all after the message type: both MO and MT need at
	// least the detach_type nibble.
	_, err := Parse(decodeHex(t, "0745"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != KindDecode {
		t.Errorf("expect KindDecode when both arms fail, got %v", err)
	}
}

func TestParseEMMUnknownTypeIsDecodeError(t *testing.T) {
	// header: PD=7 (EMM), no security; type=0xFF, unassigned by TS 24.301.
	_, err := Parse(decodeHex(t, "07ff"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != KindDecode {
		t.Errorf("expect KindDecode for an unassigned EMM type, got %v", err)
	}
}

func TestParseESMUnknownTypeIsDecodeError(t *testing.T) {
	// header: PD=2 (ESM), EBI=0; PTI=0x01; type=0xFF, unassigned.
	_, err := Parse(decodeHex(t, "0201ff"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != KindDecode {
		t.Errorf("expect KindDecode for an unassigned ESM type, got %v", err)
	}
}
