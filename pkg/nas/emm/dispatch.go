package emm

import (
	"fmt"

	"github.com/protei/nasdecode/internal/bitreader"
	"github.com/protei/nasdecode/pkg/nas/schema"
)

// Message is a decoded EMM message: its type, the resolved DetachRequest
// variant (empty for every other type), and its fields as an ordered
// record.
type Message struct {
	Type    Type          `json:"type"`
	Variant Variant       `json:"variant,omitempty"`
	Fields  schema.Record `json:"fields"`
}

// Dispatch reads the EMM message type byte from r (the security header and
// protocol discriminator byte have already been consumed by the caller) and
// decodes the corresponding schema. DetachRequest is special-cased: its MO
// and MT variants diverge in IE layout, so Dispatch bookmarks the reader,
// attempts the MO schema, and on failure rewinds and attempts MT.
func Dispatch(r *bitreader.Reader) (*Message, error) {
	typeByte, err := r.ReadBits(8)
	if err != nil {
		return nil, fmt.Errorf("emm: reading message type: %w", err)
	}
	t := Type(typeByte)

	if t == TypeDetachRequest {
		return dispatchDetachRequest(r)
	}

	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("emm: unknown message type %d", uint8(t))
	}

	rec, err := schemaFor(t).Decode(r)
	if err != nil {
		return nil, fmt.Errorf("emm: %s: %w", t, err)
	}
	return &Message{Type: t, Fields: rec}, nil
}

func dispatchDetachRequest(r *bitreader.Reader) (*Message, error) {
	bookmark := r.Bookmark()

	moRec, moErr := detachRequestMOSchema.Decode(r)
	if moErr == nil {
		return &Message{Type: TypeDetachRequest, Variant: VariantMO, Fields: moRec}, nil
	}

	if err := r.SeekAbsolute(bookmark); err != nil {
		return nil, fmt.Errorf("emm: detach request: rewinding after MO failure: %w", err)
	}

	mtRec, mtErr := detachRequestMTSchema.Decode(r)
	if mtErr != nil {
		return nil, fmt.Errorf("emm: detach request: MO failed (%v) and MT failed (%w)", moErr, mtErr)
	}
	return &Message{Type: TypeDetachRequest, Variant: VariantMT, Fields: mtRec}, nil
}
