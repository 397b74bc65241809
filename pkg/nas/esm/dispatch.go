package esm

import (
	"fmt"

	"github.com/protei/nasdecode/internal/bitreader"
	"github.com/protei/nasdecode/pkg/nas/schema"
)

// Message is a decoded ESM message: its EPS bearer identity, procedure
// transaction identifier, type, and fields as an ordered record.
type Message struct {
	EPSBearerIdentity uint8         `json:"eps_bearer_identity"`
	PTI               uint8         `json:"pti"`
	Type              Type          `json:"type"`
	Fields            schema.Record `json:"fields"`
}

// Dispatch decodes an ESM message given the EPS Bearer Identity already
// extracted from the NAS header's first byte by the caller. It then reads
// the Procedure Transaction Identifier and message type bytes before
// decoding the type's schema.
func Dispatch(ebi uint8, r *bitreader.Reader) (*Message, error) {
	ptiBits, err := r.ReadBits(8)
	if err != nil {
		return nil, fmt.Errorf("esm: reading procedure transaction identifier: %w", err)
	}
	typeBits, err := r.ReadBits(8)
	if err != nil {
		return nil, fmt.Errorf("esm: reading message type: %w", err)
	}
	t := Type(typeBits)

	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("esm: unknown message type %d", uint8(t))
	}

	rec, err := schemaFor(t).Decode(r)
	if err != nil {
		return nil, fmt.Errorf("esm: %s: %w", t, err)
	}

	return &Message{
		EPSBearerIdentity: ebi,
		PTI:               uint8(ptiBits),
		Type:              t,
		Fields:            rec,
	}, nil
}
