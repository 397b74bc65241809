// Package nas decodes 3GPP TS 24.301 NAS Layer-3 signaling messages carried
// between a UE and an MME: EMM (mobility management) and ESM (session
// management) message families. Parse is the single entry point; it never
// consumes PCAP-NG or GSMTAP framing, only the NAS PDU itself.
package nas

import (
	"fmt"

	"github.com/protei/nasdecode/internal/bitreader"
	"github.com/protei/nasdecode/pkg/nas/emm"
	"github.com/protei/nasdecode/pkg/nas/esm"
)

// ProtocolDiscriminator identifies which signaling protocol a NAS message
// belongs to, carried in the low nibble of the first octet.
type ProtocolDiscriminator uint8

const (
	PDGroupCallControl          ProtocolDiscriminator = 0
	PDBroadcastCallControl      ProtocolDiscriminator = 1
	PDESM                       ProtocolDiscriminator = 2
	PDCallControl               ProtocolDiscriminator = 3
	PDGTTP                      ProtocolDiscriminator = 4
	PDMM                        ProtocolDiscriminator = 5
	PDRRM                       ProtocolDiscriminator = 6
	PDEMM                       ProtocolDiscriminator = 7
	PDGMM                       ProtocolDiscriminator = 8
	PDSMS                       ProtocolDiscriminator = 9
	PDSM                        ProtocolDiscriminator = 10
	PDSS                        ProtocolDiscriminator = 11
	PDLCS                       ProtocolDiscriminator = 12
	PDExtendedProtDisc          ProtocolDiscriminator = 14
	PDTesting                   ProtocolDiscriminator = 15
	PDFiveGSM                   ProtocolDiscriminator = 46
	PDFiveGMM                   ProtocolDiscriminator = 126
)

var pdNames = map[ProtocolDiscriminator]string{
	PDGroupCallControl:     "GCC",
	PDBroadcastCallControl: "BCC",
	PDESM:                  "ESM",
	PDCallControl:          "CC",
	PDGTTP:                 "GTTP",
	PDMM:                   "MM",
	PDRRM:                  "RRM",
	PDEMM:                  "EMM",
	PDGMM:                  "GMM",
	PDSMS:                  "SMS",
	PDSM:                   "SM",
	PDSS:                   "SS",
	PDLCS:                  "LCS",
	PDExtendedProtDisc:     "ExtendedProtDisc",
	PDTesting:              "Testing",
	PDFiveGSM:              "FiveGSM",
	PDFiveGMM:              "FiveGMM",
}

// String renders the discriminator's symbolic name, or a numeric fallback
// for values TS 24.301 doesn't assign.
func (pd ProtocolDiscriminator) String() string {
	if name, ok := pdNames[pd]; ok {
		return name
	}
	return fmt.Sprintf("PD(%d)", uint8(pd))
}

// MarshalJSON renders the discriminator as its symbolic name.
func (pd ProtocolDiscriminator) MarshalJSON() ([]byte, error) {
	return []byte(`"` + pd.String() + `"`), nil
}

// SecHdrType is the security header type carried in the high nibble of the
// first octet of an EMM message.
type SecHdrType uint8

const (
	SecHdrNoSecurity                              SecHdrType = 0
	SecHdrIntegrityProtected                       SecHdrType = 1
	SecHdrIntegrityProtectedAndCiphered            SecHdrType = 2
	SecHdrIntegrityProtectedNewEPS                 SecHdrType = 3
	SecHdrIntegrityProtectedAndCipheredNewEPS      SecHdrType = 4
	SecHdrForServiceRequest                        SecHdrType = 12
)

var secHdrNames = map[SecHdrType]string{
	SecHdrNoSecurity:                         "NoSecurity",
	SecHdrIntegrityProtected:                 "IntegrityProtected",
	SecHdrIntegrityProtectedAndCiphered:      "IntegrityProtectedAndCiphered",
	SecHdrIntegrityProtectedNewEPS:            "IntegrityProtectedNewEPS",
	SecHdrIntegrityProtectedAndCipheredNewEPS: "IntegrityProtectedAndCipheredNewEPS",
	SecHdrForServiceRequest:                   "SecurityHeaderForServiceRequest",
}

func (s SecHdrType) String() string {
	if name, ok := secHdrNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SecHdrType(%d)", uint8(s))
}

// ErrorKind classifies why Parse failed to produce a message.
type ErrorKind int

const (
	// KindEncrypted means the message carries a security header other than
	// NoSecurity; this system performs no cryptography, so the payload is
	// unreadable.
	KindEncrypted ErrorKind = iota
	// KindUnsupportedProtocol means the protocol discriminator is neither
	// EMM nor ESM.
	KindUnsupportedProtocol
	// KindDecode covers malformed bytes, unknown message types, inner IE
	// failures, short reads, and a failed DetachRequest disambiguation.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindEncrypted:
		return "Encrypted"
	case KindUnsupportedProtocol:
		return "UnsupportedNASProtocol"
	case KindDecode:
		return "Decode"
	default:
		return "Unknown"
	}
}

// ParseError is the sole error type Parse returns, classified into one of
// three kinds: Encrypted, UnsupportedNASProtocol, or Decode. All three are
// non-fatal to a batch driver, which records the error against the packet
// index and moves on to the next message.
type ParseError struct {
	Kind ErrorKind
	PD   ProtocolDiscriminator // populated for KindUnsupportedProtocol
	Err  error                 // populated for KindDecode
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindEncrypted:
		return "nas: encrypted NAS message"
	case KindUnsupportedProtocol:
		return fmt.Sprintf("nas: unsupported protocol discriminator %s", e.PD)
	case KindDecode:
		return fmt.Sprintf("nas: decode error: %v", e.Err)
	default:
		return "nas: unknown error"
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func errEncrypted() *ParseError {
	return &ParseError{Kind: KindEncrypted}
}

func errUnsupportedProtocol(pd ProtocolDiscriminator) *ParseError {
	return &ParseError{Kind: KindUnsupportedProtocol, PD: pd}
}

func errDecode(err error) *ParseError {
	return &ParseError{Kind: KindDecode, Err: err}
}

// MessageClass distinguishes which union arm a Message occupies.
type MessageClass string

const (
	ClassEMM MessageClass = "EMM"
	ClassESM MessageClass = "ESM"
)

// Message is the top-level tagged union Parse returns: exactly one of EMM
// or ESM is populated, selected by Class.
type Message struct {
	Class MessageClass `json:"class"`
	EMM   *emm.Message `json:"emm,omitempty"`
	ESM   *esm.Message `json:"esm,omitempty"`
}

// Parse decodes a single NAS PDU, already stripped of any PCAP-NG or
// GSMTAP framing, into a Message or a classified ParseError.
func Parse(data []byte) (*Message, error) {
	r := bitreader.New(data)

	firstByte, err := r.ReadBits(8)
	if err != nil {
		return nil, errDecode(fmt.Errorf("reading NAS header: %w", err))
	}

	pd := ProtocolDiscriminator(firstByte & 0x0F)
	highNibble := SecHdrType(firstByte >> 4)

	switch pd {
	case PDEMM:
		if highNibble != SecHdrNoSecurity {
			return nil, errEncrypted()
		}
		msg, err := emm.Dispatch(r)
		if err != nil {
			return nil, errDecode(err)
		}
		return &Message{Class: ClassEMM, EMM: msg}, nil

	case PDESM:
		// highNibble carries the EPS Bearer Identity for ESM; it is passed
		// to esm.Dispatch, which does not read the first byte again.
		msg, err := esm.Dispatch(uint8(highNibble), r)
		if err != nil {
			return nil, errDecode(err)
		}
		return &Message{Class: ClassESM, ESM: msg}, nil

	default:
		return nil, errUnsupportedProtocol(pd)
	}
}
