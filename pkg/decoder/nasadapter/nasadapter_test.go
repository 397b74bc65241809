package nasadapter

import (
	"encoding/hex"
	"testing"

	"github.com/protei/nasdecode/pkg/decoder"
)

func TestProtocolIsNAS4G(t *testing.T) {
	if New().Protocol() != decoder.ProtocolNAS4G {
		t.Errorf("expect ProtocolNAS4G, got %s", New().Protocol())
	}
}

func TestCanDecode(t *testing.T) {
	d := New()
	if !d.CanDecode([]byte{0x07}) {
		t.Errorf("expect EMM PD to be decodable")
	}
	if !d.CanDecode([]byte{0x02}) {
		t.Errorf("expect ESM PD to be decodable")
	}
	if d.CanDecode([]byte{0x00}) {
		t.Errorf("expect GCC PD to be rejected")
	}
	if d.CanDecode(nil) {
		t.Errorf("expect empty input to be rejected")
	}
}

func TestDecodeProjectsIdentityRequest(t *testing.T) {
	data, _ := hex.DecodeString("075501")
	msg, err := New().Decode(data, &decoder.Metadata{SourceIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.MessageName != "IdentityRequest" {
		t.Errorf("expect IdentityRequest, got %s", msg.MessageName)
	}
	if msg.Source.IP != "10.0.0.1" {
		t.Errorf("expect source IP carried through metadata, got %q", msg.Source.IP)
	}
	if msg.Details == nil {
		t.Errorf("expect a populated details map")
	}
}

func TestDecodeWrapsParseErrors(t *testing.T) {
	_, err := New().Decode([]byte{0x00}, nil)
	if err == nil {
		t.Fatalf("expected an error for an unsupported protocol discriminator")
	}
	var de *decoder.DecoderError
	if de2, ok := err.(*decoder.DecoderError); ok {
		de = de2
	}
	if de == nil {
		t.Fatalf("expect *decoder.DecoderError, got %T", err)
	}
}
