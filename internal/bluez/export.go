package bluez

import (
	"fmt"
	"slices"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/sirupsen/logrus"

	"github.com/srg/blekbd/internal/gatt"
)

// Exporter publishes tree objects on the bus. Every inbound call is run on
// the main loop through the Runner.
type Exporter struct {
	conn   Conn
	run    Runner
	logger *logrus.Logger

	exported []export
}

type export struct {
	path  dbus.ObjectPath
	iface string
}

// NewExporter creates an exporter.
func NewExporter(conn Conn, run Runner, logger *logrus.Logger) *Exporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Exporter{conn: conn, run: run, logger: logger}
}

// ExportApplication exports the ObjectManager at the application root and
// every service, characteristic and descriptor below it.
func (e *Exporter) ExportApplication(app *gatt.Application) error {
	om := &objectManager{app: app, run: e.run}
	root := &introspect.Node{
		Name: string(app.Path()),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: gatt.ObjectManagerInterface, Methods: introspect.Methods(om)},
		},
	}
	if err := e.export(om, app.Path(), gatt.ObjectManagerInterface); err != nil {
		return err
	}
	if err := e.export(introspect.NewIntrospectable(root), app.Path(), IntrospectableInterface); err != nil {
		return err
	}

	err := app.Walk(func(o gatt.Object) error {
		var methods any
		switch obj := o.(type) {
		case *gatt.Characteristic:
			methods = &characteristic{chr: obj, run: e.run, logger: e.logger}
		case *gatt.Descriptor:
			methods = &descriptor{desc: obj, run: e.run}
		}
		return e.exportObject(o, methods)
	})
	if err != nil {
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"path":       app.Path(),
		"services":   len(app.Services()),
		"interfaces": len(e.exported),
	}).Debug("Application exported")
	return nil
}

// ExportAdvertisement exports the LEAdvertisement1 object.
func (e *Exporter) ExportAdvertisement(adv *gatt.Advertisement) error {
	return e.exportObject(adv, &advertisement{adv: adv, run: e.run, logger: e.logger})
}

// exportObject exports the Properties and Introspectable interfaces for o,
// and its own interface when methods is not nil.
func (e *Exporter) exportObject(o gatt.Object, methods any) error {
	props := &properties{obj: o, run: e.run}
	if err := e.export(props, o.Path(), gatt.PropertiesInterface); err != nil {
		return err
	}

	iface := introspect.Interface{Name: o.Interface(), Properties: introspectProperties(o)}
	if methods != nil {
		if err := e.export(methods, o.Path(), o.Interface()); err != nil {
			return err
		}
		iface.Methods = introspect.Methods(methods)
	}
	node := &introspect.Node{
		Name:       string(o.Path()),
		Interfaces: []introspect.Interface{introspect.IntrospectData, prop.IntrospectData, iface},
	}
	if err := e.export(introspect.NewIntrospectable(node), o.Path(), IntrospectableInterface); err != nil {
		return err
	}

	fields := logrus.Fields{
		"path":      o.Path(),
		"interface": o.Interface(),
	}
	switch obj := o.(type) {
	case *gatt.Service:
		fields["uuid"] = obj.UUID()
		fields["primary"] = obj.Primary()
	case *gatt.Characteristic:
		fields["uuid"] = obj.UUID()
		fields["flags"] = obj.Flags().String()
		fields["descriptors"] = len(obj.Descriptors())
	case *gatt.Descriptor:
		fields["uuid"] = obj.UUID()
	case *gatt.Advertisement:
		fields["service_uuids"] = obj.ServiceUUIDs()
	}
	e.logger.WithFields(fields).Debug("Object exported")
	return nil
}

func (e *Exporter) export(v any, path dbus.ObjectPath, iface string) error {
	if err := e.conn.Export(v, path, iface); err != nil {
		return fmt.Errorf("export %s on %s: %w", iface, path, err)
	}
	e.exported = append(e.exported, export{path: path, iface: iface})
	return nil
}

// Unexport removes everything exported so far, most recent first.
func (e *Exporter) Unexport() {
	if len(e.exported) == 0 {
		return
	}
	for _, x := range slices.Backward(e.exported) {
		if err := e.conn.Export(nil, x.path, x.iface); err != nil {
			e.logger.WithError(err).WithField("path", x.path).Debug("Unexport failed")
		}
	}
	e.logger.WithField("interfaces", len(e.exported)).Debug("Objects unexported")
	e.exported = nil
}

func introspectProperties(o gatt.Object) []introspect.Property {
	all, err := o.GetAll(o.Interface())
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]introspect.Property, len(names))
	for i, name := range names {
		out[i] = introspect.Property{Name: name, Type: all[name].Signature().String(), Access: "read"}
	}
	return out
}

// onLoop runs fn on the main loop and converts its error for the bus.
func onLoop(run Runner, fn func() error) *dbus.Error {
	var err error
	if callErr := run.Call(func() { err = fn() }); callErr != nil {
		return dbusError(callErr)
	}
	return dbusError(err)
}

// properties serves org.freedesktop.DBus.Properties for any tree object.
type properties struct {
	obj gatt.Object
	run Runner
}

func (p *properties) Get(iface, name string) (dbus.Variant, *dbus.Error) {
	var v dbus.Variant
	derr := onLoop(p.run, func() (err error) {
		v, err = p.obj.Get(iface, name)
		return err
	})
	return v, derr
}

func (p *properties) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	var all gatt.Properties
	derr := onLoop(p.run, func() (err error) {
		all, err = p.obj.GetAll(iface)
		return err
	})
	return all, derr
}

// Set always fails: every exported property is read-only.
func (p *properties) Set(iface, name string, _ dbus.Variant) *dbus.Error {
	return dbusError(fmt.Errorf("%s.%s: %w", iface, name, gatt.ErrPropertyReadOnly))
}

type objectManager struct {
	app *gatt.Application
	run Runner
}

func (m *objectManager) GetManagedObjects() (ManagedObjects, *dbus.Error) {
	var objs ManagedObjects
	derr := onLoop(m.run, func() error {
		objs = m.app.ManagedObjects()
		return nil
	})
	return objs, derr
}

type characteristic struct {
	chr    *gatt.Characteristic
	run    Runner
	logger *logrus.Logger
}

func (c *characteristic) ReadValue(opts map[string]dbus.Variant) ([]byte, *dbus.Error) {
	var value []byte
	derr := onLoop(c.run, func() (err error) {
		value, err = c.chr.ReadValue(opts)
		return err
	})
	return value, derr
}

func (c *characteristic) WriteValue(value []byte, opts map[string]dbus.Variant) *dbus.Error {
	return onLoop(c.run, func() error {
		return c.chr.WriteValue(value, opts)
	})
}

func (c *characteristic) StartNotify() *dbus.Error {
	return onLoop(c.run, func() error {
		if err := c.chr.StartNotify(); err != nil {
			return err
		}
		c.logger.WithField("path", c.chr.Path()).Info("Notifications enabled")
		return nil
	})
}

func (c *characteristic) StopNotify() *dbus.Error {
	return onLoop(c.run, func() error {
		c.chr.StopNotify()
		c.logger.WithField("path", c.chr.Path()).Info("Notifications disabled")
		return nil
	})
}

type descriptor struct {
	desc *gatt.Descriptor
	run  Runner
}

func (d *descriptor) ReadValue(opts map[string]dbus.Variant) ([]byte, *dbus.Error) {
	var value []byte
	derr := onLoop(d.run, func() (err error) {
		value, err = d.desc.ReadValue(opts)
		return err
	})
	return value, derr
}

func (d *descriptor) WriteValue(value []byte, opts map[string]dbus.Variant) *dbus.Error {
	return onLoop(d.run, func() error {
		return d.desc.WriteValue(value, opts)
	})
}

type advertisement struct {
	adv    *gatt.Advertisement
	run    Runner
	logger *logrus.Logger
}

// Release is called by BlueZ when it drops the advertisement.
func (a *advertisement) Release() *dbus.Error {
	return onLoop(a.run, func() error {
		a.adv.Release()
		a.logger.WithField("path", a.adv.Path()).Info("Advertisement released")
		return nil
	})
}
