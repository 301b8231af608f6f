package gatt

import (
	"github.com/godbus/dbus/v5"
	"github.com/srg/blekbd/internal/bledb"
)

// Service is an org.bluez.GattService1 object.
type Service struct {
	path            dbus.ObjectPath
	uuid            string
	primary         bool
	characteristics []*Characteristic
}

// NewService creates a service at "<prefix>/service<index>".
func NewService(prefix dbus.ObjectPath, index int, uuid string, primary bool) *Service {
	return &Service{
		path:    childPath(prefix, "service", index),
		uuid:    uuid,
		primary: primary,
	}
}

func (s *Service) Path() dbus.ObjectPath { return s.path }
func (s *Service) Interface() string     { return ServiceInterface }
func (s *Service) UUID() string          { return s.uuid }
func (s *Service) Primary() bool         { return s.primary }

// Characteristics returns the characteristics in insertion order.
func (s *Service) Characteristics() []*Characteristic {
	return s.characteristics
}

// AddCharacteristic appends c. The characteristic must have been created for
// this service and its UUID must be unique within the service.
func (s *Service) AddCharacteristic(c *Characteristic) error {
	if c.service != s.path {
		return invalidArgf("characteristic %s belongs to %s, not %s", c.path, c.service, s.path)
	}
	for _, existing := range s.characteristics {
		if existing.path == c.path {
			return invalidArgf("characteristic path %s already in use", c.path)
		}
		if sameUUID(existing.uuid, c.uuid) {
			return invalidArgf("characteristic UUID %s already present in %s", c.uuid, s.path)
		}
	}
	s.characteristics = append(s.characteristics, c)
	return nil
}

// Get returns a single property value.
func (s *Service) Get(iface, prop string) (dbus.Variant, error) {
	if err := checkInterface(s, iface); err != nil {
		return dbus.Variant{}, err
	}
	p, err := ParseServiceProperty(prop)
	if err != nil {
		return dbus.Variant{}, err
	}
	return s.property(p), nil
}

// GetAll returns the full property map.
func (s *Service) GetAll(iface string) (Properties, error) {
	if err := checkInterface(s, iface); err != nil {
		return nil, err
	}
	return s.properties(), nil
}

func (s *Service) property(p ServiceProperty) dbus.Variant {
	switch p {
	case ServiceUUID:
		return dbus.MakeVariant(s.uuid)
	case ServicePrimary:
		return dbus.MakeVariant(s.primary)
	case ServiceCharacteristics:
		return dbus.MakeVariant(pathsOf(s.characteristics))
	}
	panic("unreachable service property " + p.String())
}

func (s *Service) properties() Properties {
	props := make(Properties, len(serviceProperties))
	for i := range serviceProperties {
		p := ServiceProperty(i)
		props[p.String()] = s.property(p)
	}
	return props
}

func sameUUID(a, b string) bool {
	na, nb := bledb.NormalizeUUID(a), bledb.NormalizeUUID(b)
	if na == "" || nb == "" {
		return a == b
	}
	return na == nb
}
