package hid

// HIDInformation is the HID Information characteristic value: bcdHID 1.1,
// country code 0, flags RemoteWake|NormallyConnectable.
var HIDInformation = []byte{0x01, 0x01, 0x00, 0x03}

// Protocol Mode characteristic values.
const (
	ProtocolModeBoot   byte = 0x00
	ProtocolModeReport byte = 0x01
)

// ValidProtocolMode reports whether v is a defined protocol mode.
func ValidProtocolMode(v byte) bool {
	return v == ProtocolModeBoot || v == ProtocolModeReport
}

// HID Control Point commands.
const (
	ControlSuspend     byte = 0x00
	ControlExitSuspend byte = 0x01
)

// ReportType is the second byte of a Report Reference descriptor.
type ReportType byte

const (
	ReportTypeInput   ReportType = 0x01
	ReportTypeOutput  ReportType = 0x02
	ReportTypeFeature ReportType = 0x03
)

// ReportReference returns the Report Reference descriptor value.
func ReportReference(id byte, t ReportType) []byte {
	return []byte{id, byte(t)}
}

// ClientConfigDisabled is the initial CCCD value (notifications off).
var ClientConfigDisabled = []byte{0x00, 0x00}
