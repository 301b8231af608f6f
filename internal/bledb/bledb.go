// Package bledb holds the UUID catalogue used by the HID keyboard: the
// normalisation rules shared by every UUID the tree stores and the known
// names used in log output.
package bledb

import (
	"fmt"
	"strings"

	"github.com/go-ble/ble"
	"github.com/google/uuid"
)

// sigBaseSuffix is the Bluetooth SIG base UUID tail (0000xxxx-0000-1000-8000-00805f9b34fb).
const sigBaseSuffix = "00001000800000805f9b34fb"

// BLEType represents the category of a BLE UUID.
type BLEType string

const (
	TypeService        BLEType = "service"
	TypeCharacteristic BLEType = "characteristic"
	TypeDescriptor     BLEType = "descriptor"
)

// Well-known 16-bit UUIDs of the HID-over-GATT profile (normalized form).
const (
	ServiceHID                = "1812"
	CharHIDInformation        = "2a4a"
	CharReportMap             = "2a4b"
	CharHIDControlPoint       = "2a4c"
	CharReport                = "2a4d"
	CharProtocolMode          = "2a4e"
	DescriptorClientConfig    = "2902"
	DescriptorReportReference = "2908"
)

// Entry is a catalogue record.
type Entry struct {
	UUID string
	Name string
	Type BLEType
}

var catalogue = map[string]Entry{
	ServiceHID:                {UUID: ServiceHID, Name: "Human Interface Device", Type: TypeService},
	CharHIDInformation:        {UUID: CharHIDInformation, Name: "HID Information", Type: TypeCharacteristic},
	CharReportMap:             {UUID: CharReportMap, Name: "Report Map", Type: TypeCharacteristic},
	CharHIDControlPoint:       {UUID: CharHIDControlPoint, Name: "HID Control Point", Type: TypeCharacteristic},
	CharReport:                {UUID: CharReport, Name: "Report", Type: TypeCharacteristic},
	CharProtocolMode:          {UUID: CharProtocolMode, Name: "Protocol Mode", Type: TypeCharacteristic},
	DescriptorClientConfig:    {UUID: DescriptorClientConfig, Name: "Client Characteristic Configuration", Type: TypeDescriptor},
	DescriptorReportReference: {UUID: DescriptorReportReference, Name: "Report Reference", Type: TypeDescriptor},
}

// NormalizeUUID converts a UUID string to the internal format (lowercase, no dashes).
// It strips braces and a 0x prefix, and shortens Bluetooth SIG base UUIDs
// (0000xxxx-0000-1000-8000-00805f9b34fb) to their 16-bit form.
// Returns "" if the input is not a 16-bit or 128-bit UUID.
func NormalizeUUID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "{}")
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, "-", "")

	if _, err := ble.Parse(s); err != nil {
		return ""
	}
	if len(s) == 32 && strings.HasPrefix(s, "0000") && strings.HasSuffix(s, sigBaseSuffix) {
		return s[4:8]
	}
	return s
}

// ExpandUUID returns the canonical dashed 128-bit form BlueZ reports,
// e.g. "2a4d" -> "00002a4d-0000-1000-8000-00805f9b34fb".
func ExpandUUID(s string) (string, error) {
	n := NormalizeUUID(s)
	if n == "" {
		return "", fmt.Errorf("invalid UUID %q", s)
	}
	if len(n) == 4 {
		n = "0000" + n + sigBaseSuffix
	}
	u, err := uuid.Parse(n)
	if err != nil {
		return "", fmt.Errorf("invalid UUID %q: %w", s, err)
	}
	return u.String(), nil
}

// MustExpandUUID is ExpandUUID for catalogue constants; it panics on malformed input.
func MustExpandUUID(s string) string {
	u, err := ExpandUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Lookup returns the catalogue entry for a UUID in any accepted format.
func Lookup(s string) (Entry, bool) {
	e, ok := catalogue[NormalizeUUID(s)]
	return e, ok
}

// KnownName returns a human readable name, falling back to the go-ble
// assigned-numbers table and finally to "".
func KnownName(s string) string {
	if e, ok := Lookup(s); ok {
		return e.Name
	}
	n := NormalizeUUID(s)
	if n == "" {
		return ""
	}
	u, err := ble.Parse(n)
	if err != nil {
		return ""
	}
	return ble.Name(u)
}
