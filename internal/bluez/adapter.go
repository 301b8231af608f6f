package bluez

import (
	"errors"
	"fmt"
	"path"
	"slices"

	"github.com/godbus/dbus/v5"
)

// ErrNoAdapter is returned when BlueZ exposes no matching adapter.
var ErrNoAdapter = errors.New("no Bluetooth adapter found")

// FindAdapter returns the object path of the adapter named name (e.g. "hci0"),
// or of the first adapter in path order when name is empty.
func FindAdapter(conn Conn, name string) (dbus.ObjectPath, error) {
	var objs ManagedObjects
	if err := conn.Object(BusName, "/").Call(getManagedObjectsMethod, 0).Store(&objs); err != nil {
		return "", fmt.Errorf("list BlueZ objects: %w", err)
	}

	paths := make([]dbus.ObjectPath, 0, len(objs))
	for p, ifaces := range objs {
		if _, ok := ifaces[AdapterInterface]; ok {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)

	for _, p := range paths {
		if name == "" || path.Base(string(p)) == name {
			return p, nil
		}
	}
	if name != "" {
		return "", fmt.Errorf("%w: %s", ErrNoAdapter, name)
	}
	return "", ErrNoAdapter
}

// PowerOn sets the adapter's Powered property to true.
func PowerOn(conn Conn, adapter dbus.ObjectPath) error {
	call := conn.Object(BusName, adapter).Call(propertiesSetMethod, 0, AdapterInterface, "Powered", dbus.MakeVariant(true))
	if call.Err != nil {
		return fmt.Errorf("power on %s: %w", adapter, call.Err)
	}
	return nil
}
