package bledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeUUID verifies that NormalizeUUID correctly handles various UUID formats
func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "16-bit short form", input: "2a4d", expected: "2a4d"},
		{name: "16-bit uppercase", input: "2A4D", expected: "2a4d"},
		{name: "16-bit with 0x prefix", input: "0x1812", expected: "1812"},
		{name: "Full Bluetooth SIG UUID with dashes", input: "00002A4D-0000-1000-8000-00805f9b34fb", expected: "2a4d"},
		{name: "Full Bluetooth SIG UUID without dashes", input: "00002a4d00001000800000805f9b34fb", expected: "2a4d"},
		{name: "UUID with braces", input: "{00001812-0000-1000-8000-00805f9b34fb}", expected: "1812"},
		{name: "Custom 128-bit UUID (not SIG base)", input: "6e400001-b5a3-f393-e0a9-e50e24dcca9e", expected: "6e400001b5a3f393e0a9e50e24dcca9e"},
		{name: "not hex", input: "zz12", expected: ""},
		{name: "wrong length", input: "123", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeUUID(tt.input))
		})
	}
}

func TestExpandUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "16-bit", input: "1812", expected: "00001812-0000-1000-8000-00805f9b34fb"},
		{name: "already expanded uppercase", input: "00002A4D-0000-1000-8000-00805F9B34FB", expected: "00002a4d-0000-1000-8000-00805f9b34fb"},
		{name: "custom 128-bit", input: "6e400001b5a3f393e0a9e50e24dcca9e", expected: "6e400001-b5a3-f393-e0a9-e50e24dcca9e"},
		{name: "invalid", input: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandUUID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMustExpandUUID_Panics(t *testing.T) {
	assert.Panics(t, func() { MustExpandUUID("xyz") })
}

func TestLookup(t *testing.T) {
	e, ok := Lookup("00002a4d-0000-1000-8000-00805f9b34fb")
	require.True(t, ok)
	assert.Equal(t, "Report", e.Name)
	assert.Equal(t, TypeCharacteristic, e.Type)

	_, ok = Lookup("ffff")
	assert.False(t, ok)
}

func TestKnownName(t *testing.T) {
	assert.Equal(t, "Report Reference", KnownName("0x2908"))
	assert.Equal(t, "Human Interface Device", KnownName(ServiceHID))
	assert.Equal(t, "", KnownName("not-a-uuid"))
}
