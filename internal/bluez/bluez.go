// Package bluez connects the GATT tree to BlueZ over the system bus: it
// exports the objects, emits PropertiesChanged, and talks to the adapter,
// GattManager1 and LEAdvertisingManager1.
package bluez

import (
	"github.com/godbus/dbus/v5"
)

// Service and interface names on the BlueZ side.
const (
	BusName                       = "org.bluez"
	AdapterInterface              = "org.bluez.Adapter1"
	GattManagerInterface          = "org.bluez.GattManager1"
	AdvertisingManagerInterface   = "org.bluez.LEAdvertisingManager1"
	IntrospectableInterface       = "org.freedesktop.DBus.Introspectable"
	propertiesChangedSignal       = "org.freedesktop.DBus.Properties.PropertiesChanged"
	getManagedObjectsMethod       = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
	propertiesSetMethod           = "org.freedesktop.DBus.Properties.Set"
	registerApplicationMethod     = GattManagerInterface + ".RegisterApplication"
	unregisterApplicationMethod   = GattManagerInterface + ".UnregisterApplication"
	registerAdvertisementMethod   = AdvertisingManagerInterface + ".RegisterAdvertisement"
	unregisterAdvertisementMethod = AdvertisingManagerInterface + ".UnregisterAdvertisement"
)

// Conn is the part of *dbus.Conn this package uses.
type Conn interface {
	Export(v any, path dbus.ObjectPath, iface string) error
	Emit(path dbus.ObjectPath, name string, values ...any) error
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// Runner executes fn on the main loop and waits for it.
type Runner interface {
	Call(fn func()) error
}

// Poster queues fn on the main loop without waiting.
type Poster interface {
	Post(fn func()) bool
}

// ManagedObjects is the reply shape of ObjectManager.GetManagedObjects.
type ManagedObjects = map[dbus.ObjectPath]map[string]map[string]dbus.Variant
