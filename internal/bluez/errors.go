package bluez

import (
	"github.com/godbus/dbus/v5"

	"github.com/srg/blekbd/internal/gatt"
)

// D-Bus error names returned to BlueZ.
const (
	ErrNameInvalidArgs      = "org.freedesktop.DBus.Error.InvalidArgs"
	ErrNamePropertyReadOnly = "org.freedesktop.DBus.Error.PropertyReadOnly"
	ErrNameNotSupported     = "org.bluez.Error.NotSupported"
	ErrNameFailed           = "org.bluez.Error.Failed"
)

// dbusError converts a tree error into the D-Bus error BlueZ expects.
func dbusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	name := ErrNameFailed
	switch gatt.KindOf(err) {
	case gatt.InvalidArgument:
		name = ErrNameInvalidArgs
	case gatt.NotSupported:
		name = ErrNameNotSupported
	case gatt.ReadOnly:
		name = ErrNamePropertyReadOnly
	}
	return dbus.NewError(name, []any{err.Error()})
}
