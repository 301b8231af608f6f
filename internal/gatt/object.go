package gatt

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

// D-Bus interface names served by the object tree.
const (
	ServiceInterface        = "org.bluez.GattService1"
	CharacteristicInterface = "org.bluez.GattCharacteristic1"
	DescriptorInterface     = "org.bluez.GattDescriptor1"
	AdvertisementInterface  = "org.bluez.LEAdvertisement1"
	PropertiesInterface     = "org.freedesktop.DBus.Properties"
	ObjectManagerInterface  = "org.freedesktop.DBus.ObjectManager"
)

// Properties maps property names to their values.
type Properties = map[string]dbus.Variant

// Interfaces maps an interface name to its properties.
type Interfaces = map[string]Properties

// Object is implemented by every exported tree node.
type Object interface {
	Path() dbus.ObjectPath
	Interface() string
	Get(iface, prop string) (dbus.Variant, error)
	GetAll(iface string) (Properties, error)
}

// Emitter delivers org.freedesktop.DBus.Properties.PropertiesChanged signals.
type Emitter interface {
	EmitPropertiesChanged(path dbus.ObjectPath, iface string, changed Properties, invalidated []string) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(path dbus.ObjectPath, iface string, changed Properties, invalidated []string) error

// EmitPropertiesChanged calls f.
func (f EmitterFunc) EmitPropertiesChanged(path dbus.ObjectPath, iface string, changed Properties, invalidated []string) error {
	return f(path, iface, changed, invalidated)
}

// childPath derives "<parent>/<kind><index>"; a root parent does not double the slash.
func childPath(parent dbus.ObjectPath, kind string, index int) dbus.ObjectPath {
	return dbus.ObjectPath(fmt.Sprintf("%s/%s%d", strings.TrimSuffix(string(parent), "/"), kind, index))
}

func checkInterface(o Object, iface string) error {
	if iface != o.Interface() {
		return invalidArgf("%s does not implement %q", o.Path(), iface)
	}
	return nil
}

func pathsOf[T interface{ Path() dbus.ObjectPath }](items []T) []dbus.ObjectPath {
	paths := make([]dbus.ObjectPath, 0, len(items))
	for _, item := range items {
		paths = append(paths, item.Path())
	}
	return paths
}
