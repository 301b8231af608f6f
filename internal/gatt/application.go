package gatt

import (
	"github.com/godbus/dbus/v5"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultRoot is the application path registered with GattManager1.
const DefaultRoot dbus.ObjectPath = "/"

// Snapshot is the managed-object view of the tree, in insertion order.
type Snapshot = orderedmap.OrderedMap[dbus.ObjectPath, Interfaces]

// Application is the root of the GATT tree; it answers GetManagedObjects.
type Application struct {
	path     dbus.ObjectPath
	services []*Service
}

// NewApplication creates an empty application rooted at root.
func NewApplication(root dbus.ObjectPath) *Application {
	if root == "" {
		root = DefaultRoot
	}
	return &Application{path: root}
}

func (a *Application) Path() dbus.ObjectPath { return a.path }

// Services returns the services in insertion order.
func (a *Application) Services() []*Service {
	return a.services
}

// AddService appends s; a service UUID may appear only once per application.
func (a *Application) AddService(s *Service) error {
	for _, existing := range a.services {
		if existing.path == s.path {
			return invalidArgf("service path %s already in use", s.path)
		}
		if sameUUID(existing.uuid, s.uuid) {
			return invalidArgf("service UUID %s already present", s.uuid)
		}
	}
	a.services = append(a.services, s)
	return nil
}

// Walk visits services, their characteristics and each characteristic's
// descriptors in insertion order. It stops at the first error.
func (a *Application) Walk(fn func(Object) error) error {
	for _, s := range a.services {
		if err := fn(s); err != nil {
			return err
		}
		for _, c := range s.characteristics {
			if err := fn(c); err != nil {
				return err
			}
			for _, d := range c.descriptors {
				if err := fn(d); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Snapshot maps every object path to {interface: properties}, computed from
// current state, in Walk order.
func (a *Application) Snapshot() *Snapshot {
	snap := orderedmap.New[dbus.ObjectPath, Interfaces]()
	_ = a.Walk(func(o Object) error {
		props, err := o.GetAll(o.Interface())
		if err != nil {
			return err
		}
		snap.Set(o.Path(), Interfaces{o.Interface(): props})
		return nil
	})
	return snap
}

// ManagedObjects answers org.freedesktop.DBus.ObjectManager.GetManagedObjects.
func (a *Application) ManagedObjects() map[dbus.ObjectPath]map[string]map[string]dbus.Variant {
	snap := a.Snapshot()
	out := make(map[dbus.ObjectPath]map[string]map[string]dbus.Variant, snap.Len())
	for pair := snap.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// PlainSnapshot is Snapshot keyed by path string with every value unwrapped
// by Plain, ready for JSON or YAML encoding in Walk order.
func (a *Application) PlainSnapshot() *orderedmap.OrderedMap[string, map[string]map[string]any] {
	snap := a.Snapshot()
	out := orderedmap.New[string, map[string]map[string]any](snap.Len())
	for pair := snap.Oldest(); pair != nil; pair = pair.Next() {
		ifaces := make(map[string]map[string]any, len(pair.Value))
		for iface, props := range pair.Value {
			plain := make(map[string]any, len(props))
			for name, v := range props {
				plain[name] = Plain(v)
			}
			ifaces[iface] = plain
		}
		out.Set(string(pair.Key), ifaces)
	}
	return out
}
