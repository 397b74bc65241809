// Package nasadapter exposes the bit-accurate NAS codec in pkg/nas through
// the generic decoder.Decoder contract, so a DecoderRegistry built for many
// telecom protocols can include NAS decoding alongside the rest.
package nasadapter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/protei/nasdecode/pkg/decoder"
	"github.com/protei/nasdecode/pkg/nas"
)

// Decoder adapts pkg/nas.Parse to decoder.Decoder.
type Decoder struct{}

// New constructs a NAS adapter decoder.
func New() *Decoder {
	return &Decoder{}
}

// Protocol reports NAS-4G, since this adapter wraps the EPS/LTE NAS codec
// (pkg/nas handles EMM/ESM only, not 5G NAS).
func (d *Decoder) Protocol() decoder.Protocol {
	return decoder.ProtocolNAS4G
}

// CanDecode reports whether data's protocol discriminator nibble is EMM (7)
// or ESM (2), without running the full decode.
func (d *Decoder) CanDecode(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	pd := data[0] & 0x0F
	return pd == uint8(nas.PDEMM) || pd == uint8(nas.PDESM)
}

// Decode runs nas.Parse and projects the result into decoder.Message.
// Encrypted and unsupported-protocol classifications are reported as
// DecoderError rather than silently dropped, mirroring how the rest of the
// registry surfaces per-message decode failures.
func (d *Decoder) Decode(data []byte, metadata *decoder.Metadata) (*decoder.Message, error) {
	start := time.Now()

	msg, err := nas.Parse(data)
	if err != nil {
		return nil, &decoder.DecoderError{
			Protocol: decoder.ProtocolNAS4G,
			Message:  "NAS decode failed",
			Err:      err,
		}
	}

	details, err := toDetails(msg)
	if err != nil {
		return nil, &decoder.DecoderError{
			Protocol: decoder.ProtocolNAS4G,
			Message:  "projecting NAS message to details map",
			Err:      err,
		}
	}

	out := &decoder.Message{
		Protocol:     decoder.ProtocolNAS4G,
		MessageType:  string(msg.Class),
		MessageName:  messageName(msg),
		Details:      details,
		Result:       decoder.ResultSuccess,
		RawPayload:   data,
		PayloadSize:  len(data),
		ProcessedAt:  time.Now(),
		DecodeTimeUs: time.Since(start).Microseconds(),
	}
	if metadata != nil {
		out.Source = decoder.NetworkElement{IP: metadata.SourceIP, Port: metadata.SourcePort}
		out.Destination = decoder.NetworkElement{IP: metadata.DestIP, Port: metadata.DestPort}
	}
	return out, nil
}

func messageName(msg *nas.Message) string {
	switch msg.Class {
	case nas.ClassEMM:
		if msg.EMM == nil {
			return ""
		}
		if msg.EMM.Variant != "" {
			return fmt.Sprintf("%s%s", msg.EMM.Type, msg.EMM.Variant)
		}
		return msg.EMM.Type.String()
	case nas.ClassESM:
		if msg.ESM == nil {
			return ""
		}
		return msg.ESM.Type.String()
	default:
		return ""
	}
}

// toDetails round-trips msg through JSON into a map so decoder.Message's
// generic Details field carries the same structured content a direct JSON
// consumer of pkg/nas would see.
func toDetails(msg *nas.Message) (map[string]interface{}, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
