package gatt

import (
	"github.com/go-ble/ble"
	"github.com/godbus/dbus/v5"
)

// NotifyState is the subscription state of a characteristic.
type NotifyState int

const (
	Idle NotifyState = iota
	Subscribed
)

func (s NotifyState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Subscribed:
		return "subscribed"
	default:
		return "unknown"
	}
}

// Characteristic is an org.bluez.GattCharacteristic1 object.
// The owning service is referenced by path only.
type Characteristic struct {
	path        dbus.ObjectPath
	service     dbus.ObjectPath
	uuid        string
	flags       Flags
	value       []byte
	hasValue    bool
	state       NotifyState
	descriptors []*Descriptor

	emitter        Emitter
	onRead         ReadHandler
	onWrite        WriteHandler
	onNotifyChange func(*Characteristic, NotifyState)
}

// NewCharacteristic creates a characteristic at "<service>/char<index>".
func NewCharacteristic(svc *Service, index int, uuid string, flags Flags) *Characteristic {
	return &Characteristic{
		path:    childPath(svc.Path(), "char", index),
		service: svc.Path(),
		uuid:    uuid,
		flags:   flags,
	}
}

func (c *Characteristic) Path() dbus.ObjectPath    { return c.path }
func (c *Characteristic) Interface() string        { return CharacteristicInterface }
func (c *Characteristic) UUID() string             { return c.uuid }
func (c *Characteristic) Service() dbus.ObjectPath { return c.service }
func (c *Characteristic) Flags() Flags             { return c.flags }
func (c *Characteristic) State() NotifyState       { return c.state }
func (c *Characteristic) Notifying() bool          { return c.state == Subscribed }

// Descriptors returns the descriptors in insertion order.
func (c *Characteristic) Descriptors() []*Descriptor {
	return c.descriptors
}

// AddDescriptor appends d. The descriptor must have been created for this
// characteristic and its UUID must be unique within it.
func (c *Characteristic) AddDescriptor(d *Descriptor) error {
	if d.characteristic != c.path {
		return invalidArgf("descriptor %s belongs to %s, not %s", d.path, d.characteristic, c.path)
	}
	for _, existing := range c.descriptors {
		if existing.path == d.path {
			return invalidArgf("descriptor path %s already in use", d.path)
		}
		if sameUUID(existing.uuid, d.uuid) {
			return invalidArgf("descriptor UUID %s already present in %s", d.uuid, c.path)
		}
	}
	c.descriptors = append(c.descriptors, d)
	return nil
}

// Value returns a copy of the stored value and whether one has been set.
func (c *Characteristic) Value() ([]byte, bool) {
	if !c.hasValue {
		return nil, false
	}
	return cloneBytes(c.value), true
}

// SetValue stores value without emitting a change signal.
func (c *Characteristic) SetValue(value []byte) {
	c.value = cloneBytes(value)
	c.hasValue = true
}

// SetEmitter installs the transport used by Notify.
func (c *Characteristic) SetEmitter(e Emitter) { c.emitter = e }

// HandleRead overrides ReadValue.
func (c *Characteristic) HandleRead(h ReadHandler) { c.onRead = h }

// HandleWrite overrides WriteValue.
func (c *Characteristic) HandleWrite(h WriteHandler) { c.onWrite = h }

// ServeStoredValue makes ReadValue return the stored value, honouring the offset option.
func (c *Characteristic) ServeStoredValue() {
	c.HandleRead(func(opts Options) ([]byte, error) {
		return readAt(c.value, opts)
	})
}

// OnNotifyChange registers a callback fired on every Start/StopNotify transition.
func (c *Characteristic) OnNotifyChange(fn func(*Characteristic, NotifyState)) {
	c.onNotifyChange = fn
}

// ReadValue answers GattCharacteristic1.ReadValue. Without a handler it fails with NotSupported.
func (c *Characteristic) ReadValue(opts Options) ([]byte, error) {
	if c.onRead == nil {
		return nil, notSupportedf("%s does not implement ReadValue", c.path)
	}
	return c.onRead(opts)
}

// WriteValue answers GattCharacteristic1.WriteValue. Without a handler it fails with NotSupported.
func (c *Characteristic) WriteValue(value []byte, opts Options) error {
	if c.onWrite == nil {
		return notSupportedf("%s does not implement WriteValue", c.path)
	}
	return c.onWrite(cloneBytes(value), opts)
}

// StartNotify subscribes. It is idempotent and rejected when the
// characteristic lacks the notify property.
func (c *Characteristic) StartNotify() error {
	if c.flags.Property()&ble.CharNotify == 0 {
		return notSupportedf("%s does not support notifications", c.path)
	}
	c.transition(Subscribed)
	return nil
}

// StopNotify unsubscribes. It is idempotent.
func (c *Characteristic) StopNotify() {
	c.transition(Idle)
}

func (c *Characteristic) transition(to NotifyState) {
	if c.state == to {
		return
	}
	c.state = to
	if c.onNotifyChange != nil {
		c.onNotifyChange(c, to)
	}
}

// Notify emits PropertiesChanged carrying only Value and stores value once
// the emission succeeded. Emission while Idle is allowed; the transport drops it.
func (c *Characteristic) Notify(value []byte) error {
	if c.emitter != nil {
		changed := Properties{
			CharacteristicValue.String(): dbus.MakeVariant(cloneBytes(value)),
		}
		if err := c.emitter.EmitPropertiesChanged(c.path, CharacteristicInterface, changed, []string{}); err != nil {
			return err
		}
	}
	c.SetValue(value)
	return nil
}

// Get returns a single property value. Value is only present once set.
func (c *Characteristic) Get(iface, prop string) (dbus.Variant, error) {
	if err := checkInterface(c, iface); err != nil {
		return dbus.Variant{}, err
	}
	p, err := ParseCharacteristicProperty(prop)
	if err != nil {
		return dbus.Variant{}, err
	}
	v, ok := c.property(p)
	if !ok {
		return dbus.Variant{}, invalidArgf("%s has no value yet", c.path)
	}
	return v, nil
}

// GetAll returns the full property map, computed from current state.
func (c *Characteristic) GetAll(iface string) (Properties, error) {
	if err := checkInterface(c, iface); err != nil {
		return nil, err
	}
	return c.properties(), nil
}

func (c *Characteristic) property(p CharacteristicProperty) (dbus.Variant, bool) {
	switch p {
	case CharacteristicUUID:
		return dbus.MakeVariant(c.uuid), true
	case CharacteristicService:
		return dbus.MakeVariant(c.service), true
	case CharacteristicFlags:
		return dbus.MakeVariant(c.flags.clone()), true
	case CharacteristicDescriptors:
		return dbus.MakeVariant(pathsOf(c.descriptors)), true
	case CharacteristicValue:
		if !c.hasValue {
			return dbus.Variant{}, false
		}
		return dbus.MakeVariant(cloneBytes(c.value)), true
	}
	panic("unreachable characteristic property " + p.String())
}

func (c *Characteristic) properties() Properties {
	props := make(Properties, len(characteristicProperties))
	for i := range characteristicProperties {
		p := CharacteristicProperty(i)
		if v, ok := c.property(p); ok {
			props[p.String()] = v
		}
	}
	return props
}
