package gatt

import (
	"slices"
	"strings"

	"github.com/go-ble/ble"
)

// BlueZ characteristic and descriptor flag strings.
const (
	FlagBroadcast                 = "broadcast"
	FlagRead                      = "read"
	FlagWriteWithoutResponse      = "write-without-response"
	FlagWrite                     = "write"
	FlagNotify                    = "notify"
	FlagIndicate                  = "indicate"
	FlagAuthenticatedSignedWrites = "authenticated-signed-writes"
	FlagExtendedProperties        = "extended-properties"
)

// propertyFlags maps ATT property bits to flag strings, in bit order.
var propertyFlags = []struct {
	bit  ble.Property
	flag string
}{
	{ble.CharBroadcast, FlagBroadcast},
	{ble.CharRead, FlagRead},
	{ble.CharWriteNR, FlagWriteWithoutResponse},
	{ble.CharWrite, FlagWrite},
	{ble.CharNotify, FlagNotify},
	{ble.CharIndicate, FlagIndicate},
	{ble.CharSignedWrite, FlagAuthenticatedSignedWrites},
	{ble.CharExtended, FlagExtendedProperties},
}

// Flags is the ordered capability list of a characteristic or descriptor.
// Unknown strings (e.g. "encrypt-read") are carried through untouched.
type Flags []string

// FlagsFromProperty converts an ATT property bitmask to flag strings.
func FlagsFromProperty(p ble.Property) Flags {
	var flags Flags
	for _, pf := range propertyFlags {
		if p&pf.bit != 0 {
			flags = append(flags, pf.flag)
		}
	}
	return flags
}

// Has reports whether flag is present.
func (f Flags) Has(flag string) bool {
	return slices.Contains(f, flag)
}

// Property returns the ATT property bitmask for the standard flags.
func (f Flags) Property() ble.Property {
	var p ble.Property
	for _, pf := range propertyFlags {
		if f.Has(pf.flag) {
			p |= pf.bit
		}
	}
	return p
}

// String returns the comma separated form.
func (f Flags) String() string {
	return strings.Join(f, ",")
}

func (f Flags) clone() []string {
	if f == nil {
		return []string{}
	}
	return slices.Clone([]string(f))
}
