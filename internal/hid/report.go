// Package hid implements the HID-over-GATT boot keyboard report format.
package hid

import (
	"errors"
	"fmt"
	"strings"
)

// InputReportLen is the size of a boot keyboard input report.
const InputReportLen = 8

// MaxKeys is the number of simultaneous non-modifier keys a report can carry.
const MaxKeys = 6

// Usage is a Keyboard/Keypad page (0x07) usage ID.
type Usage uint8

const (
	UsageNone          Usage = 0x00
	UsageErrorRollOver Usage = 0x01
	UsageA             Usage = 0x04
	UsageZ             Usage = 0x1D
	Usage1             Usage = 0x1E
	Usage0             Usage = 0x27
	UsageEnter         Usage = 0x28
	UsageEscape        Usage = 0x29
	UsageBackspace     Usage = 0x2A
	UsageTab           Usage = 0x2B
	UsageSpace         Usage = 0x2C
	// UsageMax is the highest usage the report map declares (Logical Maximum 0x65).
	UsageMax Usage = 0x65
)

// Modifier is the modifier byte bitmask.
type Modifier uint8

const (
	ModLeftCtrl Modifier = 1 << iota
	ModLeftShift
	ModLeftAlt
	ModLeftGUI
	ModRightCtrl
	ModRightShift
	ModRightAlt
	ModRightGUI
)

var modifierNames = []string{"LCtrl", "LShift", "LAlt", "LGUI", "RCtrl", "RShift", "RAlt", "RGUI"}

func (m Modifier) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for i, name := range modifierNames {
		if m&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

var (
	// ErrRollOver is returned by Press when more than MaxKeys keys are held.
	ErrRollOver = errors.New("key rollover")
	// ErrMalformedReport is returned by DecodeInputReport for invalid input.
	ErrMalformedReport = errors.New("malformed input report")
)

// InputReport is the decoded form of the 8-byte boot keyboard input report:
// modifiers, a reserved zero byte, then six key slots.
type InputReport struct {
	Modifiers Modifier
	Keys      [MaxKeys]Usage
}

// KeyPress returns the report for a single key held with no modifiers.
func KeyPress(k Usage) InputReport {
	return InputReport{Keys: [MaxKeys]Usage{k}}
}

// Release returns the all-keys-up report.
func Release() InputReport {
	return InputReport{}
}

// Press builds a report for keys held together with mods. More than MaxKeys
// keys yields the phantom state: every slot reports ErrorRollOver.
func Press(mods Modifier, keys ...Usage) (InputReport, error) {
	r := InputReport{Modifiers: mods}
	if len(keys) > MaxKeys {
		for i := range r.Keys {
			r.Keys[i] = UsageErrorRollOver
		}
		return r, fmt.Errorf("%d keys held: %w", len(keys), ErrRollOver)
	}
	copy(r.Keys[:], keys)
	return r, nil
}

// Encode serializes the report to its 8-byte wire form.
func (r InputReport) Encode() []byte {
	b := make([]byte, InputReportLen)
	b[0] = byte(r.Modifiers)
	for i, k := range r.Keys {
		b[2+i] = byte(k)
	}
	return b
}

// IsRelease reports whether no key and no modifier is held.
func (r InputReport) IsRelease() bool {
	return r == InputReport{}
}

func (r InputReport) String() string {
	return fmt.Sprintf("% x", r.Encode())
}

// DecodeInputReport parses an 8-byte input report.
func DecodeInputReport(b []byte) (InputReport, error) {
	if len(b) != InputReportLen {
		return InputReport{}, fmt.Errorf("%w: length %d, want %d", ErrMalformedReport, len(b), InputReportLen)
	}
	if b[1] != 0 {
		return InputReport{}, fmt.Errorf("%w: reserved byte is 0x%02x", ErrMalformedReport, b[1])
	}
	r := InputReport{Modifiers: Modifier(b[0])}
	for i := range r.Keys {
		r.Keys[i] = Usage(b[2+i])
	}
	return r, nil
}
