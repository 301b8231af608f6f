package gatt

import (
	"github.com/godbus/dbus/v5"
)

// Descriptor is an org.bluez.GattDescriptor1 object.
// The owning characteristic is referenced by path only.
type Descriptor struct {
	path           dbus.ObjectPath
	characteristic dbus.ObjectPath
	uuid           string
	flags          Flags
	value          []byte
}

// NewDescriptor creates a descriptor at "<characteristic>/desc<index>".
func NewDescriptor(chr *Characteristic, index int, uuid string, flags Flags, value []byte) *Descriptor {
	return &Descriptor{
		path:           childPath(chr.Path(), "desc", index),
		characteristic: chr.Path(),
		uuid:           uuid,
		flags:          flags,
		value:          cloneBytes(value),
	}
}

func (d *Descriptor) Path() dbus.ObjectPath           { return d.path }
func (d *Descriptor) Interface() string               { return DescriptorInterface }
func (d *Descriptor) UUID() string                    { return d.uuid }
func (d *Descriptor) Characteristic() dbus.ObjectPath { return d.characteristic }
func (d *Descriptor) Flags() Flags                    { return d.flags }
func (d *Descriptor) Value() []byte                   { return cloneBytes(d.value) }

// ReadValue returns the stored value from the requested offset.
func (d *Descriptor) ReadValue(opts Options) ([]byte, error) {
	return readAt(d.value, opts)
}

// WriteValue replaces the stored value. It is always accepted.
func (d *Descriptor) WriteValue(value []byte, _ Options) error {
	d.value = cloneBytes(value)
	return nil
}

// Get returns a single property value.
func (d *Descriptor) Get(iface, prop string) (dbus.Variant, error) {
	if err := checkInterface(d, iface); err != nil {
		return dbus.Variant{}, err
	}
	p, err := ParseDescriptorProperty(prop)
	if err != nil {
		return dbus.Variant{}, err
	}
	return d.property(p), nil
}

// GetAll returns the full property map.
func (d *Descriptor) GetAll(iface string) (Properties, error) {
	if err := checkInterface(d, iface); err != nil {
		return nil, err
	}
	return d.properties(), nil
}

func (d *Descriptor) property(p DescriptorProperty) dbus.Variant {
	switch p {
	case DescriptorUUID:
		return dbus.MakeVariant(d.uuid)
	case DescriptorCharacteristic:
		return dbus.MakeVariant(d.characteristic)
	case DescriptorFlags:
		return dbus.MakeVariant(d.flags.clone())
	case DescriptorValue:
		return dbus.MakeVariant(cloneBytes(d.value))
	}
	panic("unreachable descriptor property " + p.String())
}

func (d *Descriptor) properties() Properties {
	props := make(Properties, len(descriptorProperties))
	for i := range descriptorProperties {
		p := DescriptorProperty(i)
		props[p.String()] = d.property(p)
	}
	return props
}
