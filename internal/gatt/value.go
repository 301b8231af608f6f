package gatt

import (
	"bytes"

	"github.com/godbus/dbus/v5"
)

// Options carries the a{sv} options dictionary of ReadValue/WriteValue.
type Options = map[string]dbus.Variant

// ReadHandler serves ReadValue for a characteristic.
type ReadHandler func(opts Options) ([]byte, error)

// WriteHandler serves WriteValue for a characteristic.
type WriteHandler func(value []byte, opts Options) error

// Offset extracts the "offset" option BlueZ sends for long reads and writes.
func Offset(opts Options) (int, error) {
	v, ok := opts["offset"]
	if !ok {
		return 0, nil
	}
	switch off := v.Value().(type) {
	case uint16:
		return int(off), nil
	case uint32:
		return int(off), nil
	case int32:
		if off >= 0 {
			return int(off), nil
		}
	}
	return 0, invalidArgf("bad offset option %s", v.String())
}

// readAt returns a copy of value starting at the requested offset.
func readAt(value []byte, opts Options) ([]byte, error) {
	off, err := Offset(opts)
	if err != nil {
		return nil, err
	}
	if off > len(value) {
		return nil, invalidArgf("offset %d beyond value length %d", off, len(value))
	}
	return bytes.Clone(value[off:]), nil
}

// cloneBytes copies b, mapping nil to an empty slice so "ay" is always encoded.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return bytes.Clone(b)
}

// Plain unwraps a variant into plain Go values for display: object paths
// become strings, byte arrays become []int, nested variants are unwrapped.
func Plain(v dbus.Variant) any {
	return plainValue(v.Value())
}

func plainValue(v any) any {
	switch val := v.(type) {
	case dbus.Variant:
		return plainValue(val.Value())
	case dbus.ObjectPath:
		return string(val)
	case []dbus.ObjectPath:
		out := make([]string, len(val))
		for i, p := range val {
			out[i] = string(p)
		}
		return out
	case []byte:
		out := make([]int, len(val))
		for i, b := range val {
			out[i] = int(b)
		}
		return out
	case map[uint16]dbus.Variant:
		out := make(map[uint16]any, len(val))
		for k, e := range val {
			out[k] = plainValue(e)
		}
		return out
	case map[string]dbus.Variant:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = plainValue(e)
		}
		return out
	default:
		return v
	}
}
