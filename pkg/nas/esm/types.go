// Package esm decodes EPS Session Management messages: PDN connectivity,
// default/dedicated EPS bearer context activation, modification and
// deactivation, bearer resource requests, ESM information exchange, and
// status/notification/data-transport carriers.
package esm

import "fmt"

// Type identifies an ESM message per TS 24.301 §9.8.
type Type uint8

const (
	TypeActivateDefaultEPSBearerContextRequest    Type = 193
	TypeActivateDefaultEPSBearerContextAccept     Type = 194
	TypeActivateDefaultEPSBearerContextReject     Type = 195
	TypeActivateDedicatedEPSBearerContextRequest  Type = 197
	TypeActivateDedicatedEPSBearerContextAccept   Type = 198
	TypeActivateDedicatedEPSBearerContextReject   Type = 199
	TypeModifyEPSBearerContextRequest             Type = 201
	TypeModifyEPSBearerContextAccept              Type = 202
	TypeModifyEPSBearerContextReject              Type = 203
	TypeDeactivateEPSBearerContextRequest         Type = 205
	TypeDeactivateEPSBearerContextAccept          Type = 206
	TypePDNConnectivityRequest                    Type = 208
	TypePDNConnectivityReject                     Type = 209
	TypePDNDisconnectRequest                      Type = 210
	TypePDNDisconnectReject                       Type = 211
	TypeBearerResourceAllocationRequest           Type = 212
	TypeBearerResourceAllocationReject            Type = 213
	TypeBearerResourceModificationRequest         Type = 214
	TypeBearerResourceModificationReject          Type = 215
	TypeESMInformationRequest                     Type = 217
	TypeESMInformationResponse                    Type = 218
	TypeNotification                              Type = 219
	TypeESMDummyMessage                           Type = 220
	TypeESMStatus                                 Type = 232
	TypeRemoteUEReport                            Type = 233
	TypeRemoteUEReportResponse                    Type = 234
	TypeESMDataTransport                          Type = 235
)

var typeNames = map[Type]string{
	TypeActivateDefaultEPSBearerContextRequest:   "ActivateDefaultEPSBearerContextRequest",
	TypeActivateDefaultEPSBearerContextAccept:    "ActivateDefaultEPSBearerContextAccept",
	TypeActivateDefaultEPSBearerContextReject:    "ActivateDefaultEPSBearerContextReject",
	TypeActivateDedicatedEPSBearerContextRequest: "ActivateDedicatedEPSBearerContextRequest",
	TypeActivateDedicatedEPSBearerContextAccept:  "ActivateDedicatedEPSBearerContextAccept",
	TypeActivateDedicatedEPSBearerContextReject:  "ActivateDedicatedEPSBearerContextReject",
	TypeModifyEPSBearerContextRequest:            "ModifyEPSBearerContextRequest",
	TypeModifyEPSBearerContextAccept:             "ModifyEPSBearerContextAccept",
	TypeModifyEPSBearerContextReject:             "ModifyEPSBearerContextReject",
	TypeDeactivateEPSBearerContextRequest:        "DeactivateEPSBearerContextRequest",
	TypeDeactivateEPSBearerContextAccept:         "DeactivateEPSBearerContextAccept",
	TypePDNConnectivityRequest:                   "PDNConnectivityRequest",
	TypePDNConnectivityReject:                    "PDNConnectivityReject",
	TypePDNDisconnectRequest:                     "PDNDisconnectRequest",
	TypePDNDisconnectReject:                      "PDNDisconnectReject",
	TypeBearerResourceAllocationRequest:          "BearerResourceAllocationRequest",
	TypeBearerResourceAllocationReject:           "BearerResourceAllocationReject",
	TypeBearerResourceModificationRequest:        "BearerResourceModificationRequest",
	TypeBearerResourceModificationReject:         "BearerResourceModificationReject",
	TypeESMInformationRequest:                    "ESMInformationRequest",
	TypeESMInformationResponse:                   "ESMInformationResponse",
	TypeNotification:                             "Notification",
	TypeESMDummyMessage:                          "ESMDummyMessage",
	TypeESMStatus:                                "ESMStatus",
	TypeRemoteUEReport:                           "RemoteUEReport",
	TypeRemoteUEReportResponse:                   "RemoteUEReportResponse",
	TypeESMDataTransport:                         "ESMDataTransport",
}

// String renders the message type's symbolic name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ESMType(%d)", uint8(t))
}

// MarshalJSON renders the type as its symbolic name.
func (t Type) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}
