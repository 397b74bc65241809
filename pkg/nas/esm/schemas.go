package esm

import (
	"github.com/protei/nasdecode/internal/bitreader"
	"github.com/protei/nasdecode/internal/ie"
	"github.com/protei/nasdecode/pkg/nas/schema"
)

func f(name string, dec schema.FieldDecoder) schema.Field {
	return schema.Field{Name: name, Decode: dec}
}

func bodyField(name string) schema.Field {
	return f(name, func(r *bitreader.Reader) (any, error) {
		return ie.DecodeLayer3Buffer(r)
	})
}

var pdnConnectivityRequestSchema = schema.Schema{
	f("pdn_type", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, ie.IdentityNibble)
	}),
	f("request_type", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1V(r, ie.IdentityNibble)
	}),
	f("esm_info_transfer_flag", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType1TV(r, 0xD, ie.IdentityNibble)
	}),
	f("access_point_name", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4TLV(r, 0x28, ie.DecodeLayer3Buffer)
	}),
	f("protocol_config_options", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4TLV(r, 0x27, ie.DecodeLayer3Buffer)
	}),
	bodyField("remaining_ies"),
}

var activateDefaultEPSBearerContextRequestSchema = schema.Schema{
	f("pdn_address", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4LV(r, ie.DecodeLayer3Buffer)
	}),
	f("eps_qos", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4LV(r, ie.DecodeLayer3Buffer)
	}),
	f("access_point_name", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4LV(r, ie.DecodeLayer3Buffer)
	}),
	f("pco", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4TLV(r, 0x27, ie.DecodeLayer3Buffer)
	}),
	bodyField("remaining_ies"),
}

var esmInformationRequestSchema = schema.Schema{
	f("pti_echo", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeUint8(r)
	}),
}

var esmInformationResponseSchema = schema.Schema{
	f("access_point_name", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4TLV(r, 0x28, ie.DecodeLayer3Buffer)
	}),
	f("protocol_config_options", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4TLV(r, 0x27, ie.DecodeLayer3Buffer)
	}),
}

var esmStatusSchema = schema.Schema{
	f("esm_cause", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeUint8(r)
	}),
}

var deactivateEPSBearerContextRequestSchema = schema.Schema{
	f("esm_cause", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeUint8(r)
	}),
	f("protocol_config_options", func(r *bitreader.Reader) (any, error) {
		return ie.DecodeType4TLV(r, 0x27, ie.DecodeLayer3Buffer)
	}),
	bodyField("remaining_ies"),
}

// schemaTable maps ESM types to their schema. Dispatch only calls schemaFor
// once typeNames has confirmed the type is a recognized ESM message;
// recognized types not given a dedicated schema above still fall through
// to a single opaque body field.
var schemaTable = map[Type]schema.Schema{
	TypePDNConnectivityRequest:                 pdnConnectivityRequestSchema,
	TypeActivateDefaultEPSBearerContextRequest: activateDefaultEPSBearerContextRequestSchema,
	TypeESMInformationRequest:                  esmInformationRequestSchema,
	TypeESMInformationResponse:                 esmInformationResponseSchema,
	TypeESMStatus:                              esmStatusSchema,
	TypeDeactivateEPSBearerContextRequest:      deactivateEPSBearerContextRequestSchema,
}

func schemaFor(t Type) schema.Schema {
	if sch, ok := schemaTable[t]; ok {
		return sch
	}
	return schema.Schema{bodyField("body")}
}
