// Package emm decodes EPS Mobility Management messages: attach/detach,
// tracking area update, identity, authentication, security mode, service
// request and the generic NAS transport carriers. Message.Fields is a
// data-driven schema.Record rather than one hand-written struct per
// message; the flagship messages named by the external specification
// additionally get dedicated field decoders with real IE semantics
// (mobile identity digits, attach type, key set identifier) instead of raw
// bytes.
package emm

import "fmt"

// Type identifies an EMM message per TS 24.301 §9.8.
type Type uint8

const (
	TypeAttachRequest                    Type = 65
	TypeAttachAccept                     Type = 66
	TypeAttachComplete                   Type = 67
	TypeAttachReject                     Type = 68
	TypeDetachRequest                    Type = 69 // overloaded MO/MT, see Dispatch
	TypeDetachAccept                     Type = 70
	TypeTrackingAreaUpdateRequest        Type = 72
	TypeTrackingAreaUpdateAccept         Type = 73
	TypeTrackingAreaUpdateComplete       Type = 74
	TypeTrackingAreaUpdateReject         Type = 75
	TypeExtendedServiceRequest           Type = 76
	TypeControlPlaneServiceRequest       Type = 77
	TypeServiceReject                    Type = 78
	TypeServiceAccept                    Type = 79
	TypeGUTIReallocationCommand          Type = 80
	TypeGUTIReallocationComplete         Type = 81
	TypeAuthenticationRequest            Type = 82
	TypeAuthenticationResponse           Type = 83
	TypeAuthenticationReject             Type = 84
	TypeIdentityRequest                  Type = 85
	TypeIdentityResponse                 Type = 86
	TypeAuthenticationFailure            Type = 92
	TypeSecurityModeCommand              Type = 93
	TypeSecurityModeComplete             Type = 94
	TypeSecurityModeReject               Type = 95
	TypeEMMStatus                        Type = 96
	TypeEMMInformation                   Type = 97
	TypeDownlinkNASTransport             Type = 98
	TypeUplinkNASTransport               Type = 99
	TypeCSServiceNotification            Type = 100
	TypeDownlinkGenericNASTransport      Type = 104
	TypeUplinkGenericNASTransport        Type = 105
)

var typeNames = map[Type]string{
	TypeAttachRequest:               "AttachRequest",
	TypeAttachAccept:                "AttachAccept",
	TypeAttachComplete:              "AttachComplete",
	TypeAttachReject:                "AttachReject",
	TypeDetachRequest:               "DetachRequest",
	TypeDetachAccept:                "DetachAccept",
	TypeTrackingAreaUpdateRequest:   "TrackingAreaUpdateRequest",
	TypeTrackingAreaUpdateAccept:    "TrackingAreaUpdateAccept",
	TypeTrackingAreaUpdateComplete:  "TrackingAreaUpdateComplete",
	TypeTrackingAreaUpdateReject:    "TrackingAreaUpdateReject",
	TypeExtendedServiceRequest:      "ExtendedServiceRequest",
	TypeControlPlaneServiceRequest:  "ControlPlaneServiceRequest",
	TypeServiceReject:               "ServiceReject",
	TypeServiceAccept:               "ServiceAccept",
	TypeGUTIReallocationCommand:     "GUTIReallocationCommand",
	TypeGUTIReallocationComplete:    "GUTIReallocationComplete",
	TypeAuthenticationRequest:       "AuthenticationRequest",
	TypeAuthenticationResponse:      "AuthenticationResponse",
	TypeAuthenticationReject:        "AuthenticationReject",
	TypeIdentityRequest:             "IdentityRequest",
	TypeIdentityResponse:            "IdentityResponse",
	TypeAuthenticationFailure:       "AuthenticationFailure",
	TypeSecurityModeCommand:         "SecurityModeCommand",
	TypeSecurityModeComplete:        "SecurityModeComplete",
	TypeSecurityModeReject:          "SecurityModeReject",
	TypeEMMStatus:                   "EMMStatus",
	TypeEMMInformation:              "EMMInformation",
	TypeDownlinkNASTransport:        "DownlinkNASTransport",
	TypeUplinkNASTransport:          "UplinkNASTransport",
	TypeCSServiceNotification:       "CSServiceNotification",
	TypeDownlinkGenericNASTransport: "DownlinkGenericNASTransport",
	TypeUplinkGenericNASTransport:   "UplinkGenericNASTransport",
}

// String renders the message type's symbolic name. Type 69 always renders
// as "DetachRequest"; the MO/MT arm Dispatch resolved is carried separately
// in Message.Variant.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EMMType(%d)", uint8(t))
}

// MarshalJSON renders the type as its symbolic name.
func (t Type) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Variant distinguishes the two DetachRequest arms; for every other
// message it is VariantNone.
type Variant string

const (
	VariantNone Variant = ""
	VariantMO   Variant = "MO"
	VariantMT   Variant = "MT"
)
