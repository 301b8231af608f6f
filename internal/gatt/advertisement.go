package gatt

import (
	"slices"

	"github.com/godbus/dbus/v5"
)

// AppearanceKeyboard is the GAP appearance value of a HID keyboard.
const AppearanceKeyboard uint16 = 0x03C1

// AdvertisementPeripheral is the connectable advertising type.
const AdvertisementPeripheral = "peripheral"

// Advertisement is an org.bluez.LEAdvertisement1 object.
type Advertisement struct {
	path           dbus.ObjectPath
	adType         string
	serviceUUIDs   []string
	localName      *string
	includeTxPower bool
	appearance     uint16
	released       bool
}

// NewAdvertisement creates an advertisement at "<prefix>/advertisement<index>".
func NewAdvertisement(prefix dbus.ObjectPath, index int, adType string) *Advertisement {
	return &Advertisement{
		path:       childPath(prefix, "advertisement", index),
		adType:     adType,
		appearance: AppearanceKeyboard,
	}
}

func (a *Advertisement) Path() dbus.ObjectPath { return a.path }
func (a *Advertisement) Interface() string     { return AdvertisementInterface }
func (a *Advertisement) Type() string          { return a.adType }
func (a *Advertisement) ServiceUUIDs() []string {
	return slices.Clone(a.serviceUUIDs)
}

func (a *Advertisement) AddServiceUUID(uuid string) { a.serviceUUIDs = append(a.serviceUUIDs, uuid) }
func (a *Advertisement) SetIncludeTxPower(v bool)   { a.includeTxPower = v }
func (a *Advertisement) SetAppearance(v uint16)     { a.appearance = v }

// SetLocalName sets the advertised name; an empty name clears it.
func (a *Advertisement) SetLocalName(name string) {
	if name == "" {
		a.localName = nil
		return
	}
	a.localName = &name
}

// LocalName returns the advertised name and whether one is set.
func (a *Advertisement) LocalName() (string, bool) {
	if a.localName == nil {
		return "", false
	}
	return *a.localName, true
}

// Release records that the host dropped the advertisement.
func (a *Advertisement) Release() { a.released = true }

// Released reports whether Release has been received.
func (a *Advertisement) Released() bool { return a.released }

// Get returns a single property value. An unset LocalName reads as "".
func (a *Advertisement) Get(iface, prop string) (dbus.Variant, error) {
	if err := checkInterface(a, iface); err != nil {
		return dbus.Variant{}, err
	}
	p, err := ParseAdvertisementProperty(prop)
	if err != nil {
		return dbus.Variant{}, err
	}
	v, ok := a.property(p)
	if !ok {
		return dbus.MakeVariant(""), nil
	}
	return v, nil
}

// GetAll returns the full property map; LocalName is omitted while unset.
func (a *Advertisement) GetAll(iface string) (Properties, error) {
	if err := checkInterface(a, iface); err != nil {
		return nil, err
	}
	props := make(Properties, len(advertisementProperties))
	for i := range advertisementProperties {
		p := AdvertisementProperty(i)
		if v, ok := a.property(p); ok {
			props[p.String()] = v
		}
	}
	return props, nil
}

func (a *Advertisement) property(p AdvertisementProperty) (dbus.Variant, bool) {
	switch p {
	case AdvertisementType:
		return dbus.MakeVariant(a.adType), true
	case AdvertisementServiceUUIDs:
		return dbus.MakeVariant(stringsOrEmpty(a.serviceUUIDs)), true
	case AdvertisementSolicitUUIDs:
		return dbus.MakeVariant([]string{}), true
	case AdvertisementManufacturerData:
		return dbus.MakeVariant(map[uint16]dbus.Variant{}), true
	case AdvertisementServiceData:
		return dbus.MakeVariant(map[string]dbus.Variant{}), true
	case AdvertisementLocalName:
		if a.localName == nil {
			return dbus.Variant{}, false
		}
		return dbus.MakeVariant(*a.localName), true
	case AdvertisementIncludeTxPower:
		return dbus.MakeVariant(a.includeTxPower), true
	case AdvertisementAppearance:
		return dbus.MakeVariant(a.appearance), true
	}
	panic("unreachable advertisement property " + p.String())
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
