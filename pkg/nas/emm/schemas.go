package emm

import (
	"github.com/protei/nasdecode/internal/bitreader"
	"github.com/protei/nasdecode/internal/ie"
	"github.com/protei/nasdecode/pkg/nas/schema"
)

func f(name string, dec schema.FieldDecoder) schema.Field {
	return schema.Field{Name: name, Decode: dec}
}

// bodyField captures whatever bytes remain as an opaque buffer; it is the
// schema for every message type this package does not model field-by-field,
// and also terminates the flagship schemas below to absorb optional IEs not
// individually decoded.
func bodyField(name string) schema.Field {
	return f(name, func(r *bitreader.Reader) (any, error) {
		return ie.DecodeLayer3Buffer(r)
	})
}

var attachRequestSchema = schema.Schema{
	f("nas_key_set_id", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, decodeNASKeySetID)
	}),
	f("eps_attach_type", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, decodeEPSAttachType)
	}),
	f("eps_mobile_identity", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4LV(r, decodeMobileIdentity)
	}),
	f("esm_message_container", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType6LVE(r, ie.DecodeLayer3Buffer)
	}),
	f("old_guti_type", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1TV(r, 0xE, ie.IdentityNibble)
	}),
	f("tmsi_status", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1TV(r, 0x9, ie.IdentityNibble)
	}),
	bodyField("remaining_ies"),
}

var identityRequestSchema = schema.Schema{
	f("spare", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, ie.IdentityNibble)
	}),
	f("identity_type", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, decodeIdentityType)
	}),
}

var identityResponseSchema = schema.Schema{
	f("mobile_identity", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4LV(r, decodeMobileIdentity)
	}),
}

var authenticationRequestSchema = schema.Schema{
	f("nas_key_set_id", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, decodeNASKeySetID)
	}),
	f("spare", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, ie.IdentityNibble)
	}),
	f("rand", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType3V(r, 16, ie.DecodeLayer3Buffer)
	}),
	f("autn", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4LV(r, ie.DecodeLayer3Buffer)
	}),
}

var authenticationResponseSchema = schema.Schema{
	f("res", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4LV(r, ie.DecodeLayer3Buffer)
	}),
}

var authenticationRejectSchema = schema.Schema{}

var authenticationFailureSchema = schema.Schema{
	f("emm_cause", func(r *bitreader.Reader) (any, error) {
		return decodeEMMCause(r)
	}),
	f("auth_failure_parameter", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4TLV(r, 0x30, ie.DecodeLayer3Buffer)
	}),
}

var securityModeCommandSchema = schema.Schema{
	f("selected_nas_security_algorithms", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeUint8(r)
	}),
	f("nas_key_set_id", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, decodeNASKeySetID)
	}),
	f("spare", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, ie.IdentityNibble)
	}),
	bodyField("replayed_ue_security_capabilities_and_ies"),
}

var emmStatusSchema = schema.Schema{
	f("emm_cause", func(r *bitreader.Reader) (any, error) {
		return decodeEMMCause(r)
	}),
}

var detachRequestMOSchema = schema.Schema{
	f("detach_type", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, ie.IdentityNibble)
	}),
	f("nas_key_set_id", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, decodeNASKeySetID)
	}),
	f("eps_mobile_identity", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4LV(r, decodeMobileIdentity)
	}),
}

var detachRequestMTSchema = schema.Schema{
	f("detach_type", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, ie.IdentityNibble)
	}),
	f("spare", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, ie.IdentityNibble)
	}),
	f("emm_cause", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType3TV(r, 0x53, 1, func(r *bitreader.Reader) (EMMCause, error) {
			return decodeEMMCause(r)
		})
	}),
}

// schemaTable maps every EMM type except the DetachRequest special case
// (handled directly in Dispatch) to its schema. Dispatch only calls
// schemaFor once typeNames has confirmed the type is a recognized EMM
// message; recognized types not given a dedicated schema above still fall
// through to a single opaque body field, a valid data-driven schema, just
// one this package does not break into named IEs.
var schemaTable = map[Type]schema.Schema{
	TypeAttachRequest:          attachRequestSchema,
	TypeIdentityRequest:        identityRequestSchema,
	TypeIdentityResponse:       identityResponseSchema,
	TypeAuthenticationRequest:  authenticationRequestSchema,
	TypeAuthenticationResponse: authenticationResponseSchema,
	TypeAuthenticationReject:   authenticationRejectSchema,
	TypeAuthenticationFailure:  authenticationFailureSchema,
	TypeSecurityModeCommand:    securityModeCommandSchema,
	TypeEMMStatus:              emmStatusSchema,
}

func schemaFor(t Type) schema.Schema {
	if sch, ok := schemaTable[t]; ok {
		return sch
	}
	return schema.Schema{bodyField("body")}
}
