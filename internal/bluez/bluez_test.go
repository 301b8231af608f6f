package bluez

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/blekbd/internal/gatt"
	"github.com/srg/blekbd/internal/hid"
	"github.com/srg/blekbd/internal/keyboard"
	"github.com/srg/blekbd/internal/loop"
)

// fakeObject implements the BusObject calls this package makes.
type fakeObject struct {
	dbus.BusObject
	conn *fakeConn
	path dbus.ObjectPath
}

func (o *fakeObject) Call(method string, _ dbus.Flags, args ...any) *dbus.Call {
	c := o.conn.record(o.path, method, args)
	return c
}

func (o *fakeObject) Go(method string, _ dbus.Flags, ch chan *dbus.Call, args ...any) *dbus.Call {
	c := o.conn.record(o.path, method, args)
	c.Done = ch
	ch <- c
	return c
}

type methodCall struct {
	path   dbus.ObjectPath
	method string
	args   []any
}

type signal struct {
	path   dbus.ObjectPath
	name   string
	values []any
}

type fakeConn struct {
	mu       sync.Mutex
	exports  map[string]any
	order    []string
	signals  []signal
	calls    []methodCall
	replies  map[string]*dbus.Call
	emitErr  error
	exportFn func(path dbus.ObjectPath, iface string) error
}

func newFakeConn() *fakeConn {
	return &fakeConn{exports: map[string]any{}, replies: map[string]*dbus.Call{}}
}

func (c *fakeConn) Export(v any, path dbus.ObjectPath, iface string) error {
	if c.exportFn != nil {
		if err := c.exportFn(path, iface); err != nil {
			return err
		}
	}
	key := fmt.Sprintf("%s %s", path, iface)
	if v == nil {
		delete(c.exports, key)
		return nil
	}
	c.exports[key] = v
	c.order = append(c.order, key)
	return nil
}

func (c *fakeConn) Emit(path dbus.ObjectPath, name string, values ...any) error {
	c.signals = append(c.signals, signal{path: path, name: name, values: values})
	return c.emitErr
}

func (c *fakeConn) Object(_ string, path dbus.ObjectPath) dbus.BusObject {
	return &fakeObject{conn: c, path: path}
}

func (c *fakeConn) record(path dbus.ObjectPath, method string, args []any) *dbus.Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, methodCall{path: path, method: method, args: args})
	reply := &dbus.Call{Path: path, Method: method, Args: args}
	if r, ok := c.replies[method]; ok {
		reply.Err = r.Err
		reply.Body = r.Body
	}
	return reply
}

type directRunner struct{}

func (directRunner) Call(fn func()) error { fn(); return nil }

type stoppedRunner struct{}

func (stoppedRunner) Call(func()) error { return loop.ErrStopped }

type directPoster struct{}

func (directPoster) Post(fn func()) bool { fn(); return true }

func newExportedKeyboard(t *testing.T, conn *fakeConn, run Runner) (*Exporter, *gatt.Application, *keyboard.HIDService, *gatt.Advertisement) {
	t.Helper()
	app, h, err := keyboard.NewApplication(gatt.DefaultRoot, keyboard.DefaultPrefix, keyboard.ServiceOptions{})
	require.NoError(t, err)
	adv := keyboard.NewAdvertisement(keyboard.DefaultPrefix, 0, keyboard.AdvertisementOptions{LocalName: "kbd"})

	logger, _ := test.NewNullLogger()
	e := NewExporter(conn, run, logger)
	require.NoError(t, e.ExportApplication(app))
	require.NoError(t, e.ExportAdvertisement(adv))
	return e, app, h, adv
}

func exported[T any](t *testing.T, conn *fakeConn, path dbus.ObjectPath, iface string) T {
	t.Helper()
	v, ok := conn.exports[fmt.Sprintf("%s %s", path, iface)]
	require.True(t, ok, "%s %s not exported", path, iface)
	typed, ok := v.(T)
	require.True(t, ok, "%s %s has type %T", path, iface, v)
	return typed
}

// ----------------------------
// Export
// ----------------------------

func TestExportApplication_Interfaces(t *testing.T) {
	conn := newFakeConn()
	_, _, h, adv := newExportedKeyboard(t, conn, directRunner{})

	svc := h.Service.Path()
	chr := h.InputReport.Path()
	desc := h.InputReport.Descriptors()[0].Path()

	for _, key := range []string{
		"/ org.freedesktop.DBus.ObjectManager",
		"/ org.freedesktop.DBus.Introspectable",
		string(svc) + " org.freedesktop.DBus.Properties",
		string(chr) + " org.bluez.GattCharacteristic1",
		string(chr) + " org.freedesktop.DBus.Properties",
		string(desc) + " org.bluez.GattDescriptor1",
		string(adv.Path()) + " org.bluez.LEAdvertisement1",
		string(adv.Path()) + " org.freedesktop.DBus.Introspectable",
	} {
		assert.Contains(t, conn.exports, key)
	}
	assert.NotContains(t, conn.exports, string(svc)+" org.bluez.GattService1", "services have no methods")
}

func TestExport_FailureIsWrapped(t *testing.T) {
	conn := newFakeConn()
	conn.exportFn = func(path dbus.ObjectPath, iface string) error {
		if iface == gatt.DescriptorInterface {
			return errors.New("busy")
		}
		return nil
	}
	app, _, err := keyboard.NewApplication(gatt.DefaultRoot, keyboard.DefaultPrefix, keyboard.ServiceOptions{})
	require.NoError(t, err)

	err = NewExporter(conn, directRunner{}, nil).ExportApplication(app)
	assert.ErrorContains(t, err, "export org.bluez.GattDescriptor1 on /org/bluez/example/service0/char2/desc0: busy")
}

func TestUnexport(t *testing.T) {
	conn := newFakeConn()
	e, _, _, _ := newExportedKeyboard(t, conn, directRunner{})
	require.Len(t, e.exported, len(conn.exports))

	e.Unexport()
	assert.Empty(t, conn.exports)
	assert.Empty(t, e.exported)

	// second call is a no-op
	e.Unexport()
	assert.Empty(t, conn.exports)
}

func TestExportApplication_LogsSummary(t *testing.T) {
	conn := newFakeConn()
	app, h, err := keyboard.NewApplication(gatt.DefaultRoot, keyboard.DefaultPrefix, keyboard.ServiceOptions{})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	e := NewExporter(conn, directRunner{}, logger)
	require.NoError(t, e.ExportApplication(app))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Application exported", entry.Message)
	assert.Equal(t, 1, entry.Data["services"])
	assert.Equal(t, len(conn.exports), entry.Data["interfaces"])

	var report *logrus.Entry
	for _, en := range hook.AllEntries() {
		if en.Message == "Object exported" && en.Data["path"] == h.InputReport.Path() {
			report = en
		}
	}
	require.NotNil(t, report, "the input report MUST be logged on export")
	assert.Equal(t, "2a4d", report.Data["uuid"])
	assert.Equal(t, "read,notify", report.Data["flags"])
	assert.Equal(t, 2, report.Data["descriptors"])
}

func TestIntrospect(t *testing.T) {
	conn := newFakeConn()
	_, _, h, _ := newExportedKeyboard(t, conn, directRunner{})

	in := exported[introspect.Introspectable](t, conn, h.InputReport.Path(), IntrospectableInterface)
	xml, derr := in.Introspect()
	require.Nil(t, derr)
	assert.Contains(t, xml, `<interface name="org.bluez.GattCharacteristic1">`)
	assert.Contains(t, xml, `<method name="StartNotify">`)
	assert.Contains(t, xml, `<property name="Value" type="ay" access="read">`)
	assert.Contains(t, xml, `<interface name="org.freedesktop.DBus.Properties">`)
}

// ----------------------------
// Inbound calls
// ----------------------------

func TestProperties_ErrorNames(t *testing.T) {
	conn := newFakeConn()
	_, _, h, _ := newExportedKeyboard(t, conn, directRunner{})
	props := exported[*properties](t, conn, h.InputReport.Path(), gatt.PropertiesInterface)

	_, derr := props.Get("wrong.interface", "UUID")
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameInvalidArgs, derr.Name)

	v, derr := props.Get(gatt.CharacteristicInterface, "Value")
	require.Nil(t, derr)
	assert.Equal(t, make([]byte, 8), v.Value())

	all, derr := props.GetAll(gatt.CharacteristicInterface)
	require.Nil(t, derr)
	assert.Len(t, all, 5)

	derr = props.Set(gatt.CharacteristicInterface, "Value", dbus.MakeVariant([]byte{1}))
	require.NotNil(t, derr)
	assert.Equal(t, ErrNamePropertyReadOnly, derr.Name)
}

func TestCharacteristic_Calls(t *testing.T) {
	conn := newFakeConn()
	_, _, h, _ := newExportedKeyboard(t, conn, directRunner{})

	info := exported[*characteristic](t, conn, h.HIDInformation.Path(), gatt.CharacteristicInterface)
	derr := info.StartNotify()
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameNotSupported, derr.Name)
	assert.Equal(t, gatt.Idle, h.HIDInformation.State())

	value, derr := info.ReadValue(map[string]dbus.Variant{})
	require.Nil(t, derr)
	assert.Equal(t, hid.HIDInformation, value)

	mode := exported[*characteristic](t, conn, h.ProtocolMode.Path(), gatt.CharacteristicInterface)
	derr = mode.WriteValue([]byte{9}, nil)
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameInvalidArgs, derr.Name)

	input := exported[*characteristic](t, conn, h.InputReport.Path(), gatt.CharacteristicInterface)
	require.Nil(t, input.StartNotify())
	require.Nil(t, input.StartNotify())
	assert.Equal(t, gatt.Subscribed, h.InputReport.State())
	require.Nil(t, input.StopNotify())
	assert.Equal(t, gatt.Idle, h.InputReport.State())
}

func TestDescriptor_Calls(t *testing.T) {
	conn := newFakeConn()
	_, _, h, _ := newExportedKeyboard(t, conn, directRunner{})
	cccd := h.InputReport.Descriptors()[0]
	d := exported[*descriptor](t, conn, cccd.Path(), gatt.DescriptorInterface)

	require.Nil(t, d.WriteValue([]byte{1, 0}, nil))
	got, derr := d.ReadValue(nil)
	require.Nil(t, derr)
	assert.Equal(t, []byte{1, 0}, got)
}

func TestGetManagedObjects(t *testing.T) {
	conn := newFakeConn()
	_, app, _, _ := newExportedKeyboard(t, conn, directRunner{})
	om := exported[*objectManager](t, conn, app.Path(), gatt.ObjectManagerInterface)

	objs, derr := om.GetManagedObjects()
	require.Nil(t, derr)
	// service, four characteristics, two descriptors
	assert.Len(t, objs, 7)
}

func TestAdvertisement_Release(t *testing.T) {
	conn := newFakeConn()
	_, _, _, adv := newExportedKeyboard(t, conn, directRunner{})
	a := exported[*advertisement](t, conn, adv.Path(), gatt.AdvertisementInterface)

	require.Nil(t, a.Release())
	assert.True(t, adv.Released())
}

func TestCalls_AfterLoopStopped(t *testing.T) {
	conn := newFakeConn()
	_, _, h, _ := newExportedKeyboard(t, conn, stoppedRunner{})
	props := exported[*properties](t, conn, h.InputReport.Path(), gatt.PropertiesInterface)

	_, derr := props.Get(gatt.CharacteristicInterface, "UUID")
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameFailed, derr.Name)
}

// ----------------------------
// Emitter
// ----------------------------

func TestEmitter(t *testing.T) {
	conn := newFakeConn()
	e := NewEmitter(conn, 2, nil)

	changed := gatt.Properties{"Value": dbus.MakeVariant([]byte{0, 0, 4, 0, 0, 0, 0, 0})}
	require.NoError(t, e.EmitPropertiesChanged("/c", gatt.CharacteristicInterface, changed, nil))

	require.Len(t, conn.signals, 1)
	s := conn.signals[0]
	assert.Equal(t, dbus.ObjectPath("/c"), s.path)
	assert.Equal(t, "org.freedesktop.DBus.Properties.PropertiesChanged", s.name)
	assert.Equal(t, []any{gatt.CharacteristicInterface, changed, []string{}}, s.values)

	got := <-e.Tap().C()
	assert.Equal(t, dbus.ObjectPath("/c"), got.Path)

	for range 3 {
		require.NoError(t, e.EmitPropertiesChanged("/c", gatt.CharacteristicInterface, changed, nil))
	}
	assert.Equal(t, 2, e.Tap().Len())
	assert.Equal(t, int64(1), e.Tap().Stats().Dropped)
}

func TestEmitter_Error(t *testing.T) {
	conn := newFakeConn()
	conn.emitErr = errors.New("closed")
	e := NewEmitter(conn, 0, nil)

	assert.EqualError(t, e.EmitPropertiesChanged("/c", gatt.CharacteristicInterface, gatt.Properties{}, nil), "closed")
	assert.Equal(t, 0, e.Tap().Len())

	// the zero size falls back to DefaultTapSize
	for range DefaultTapSize + 1 {
		e.tap.Send(Change{Path: "/c"})
	}
	assert.Equal(t, DefaultTapSize, e.Tap().Len())
	assert.Equal(t, int64(1), e.Tap().Stats().Dropped)
}

// ----------------------------
// Managers and adapter
// ----------------------------

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("no reply")
		return nil
	}
}

func TestGattManager_Register(t *testing.T) {
	conn := newFakeConn()
	m := NewGattManager(conn, "/org/bluez/hci0", directPoster{}, nil)

	done := make(chan error, 1)
	m.Register("/", nil, func(err error) { done <- err })
	require.NoError(t, waitErr(t, done))

	require.Len(t, conn.calls, 1)
	assert.Equal(t, dbus.ObjectPath("/org/bluez/hci0"), conn.calls[0].path)
	assert.Equal(t, "org.bluez.GattManager1.RegisterApplication", conn.calls[0].method)
	assert.Equal(t, []any{dbus.ObjectPath("/"), map[string]dbus.Variant{}}, conn.calls[0].args)
}

func TestAdvertisingManager_UnregisterError(t *testing.T) {
	conn := newFakeConn()
	conn.replies["org.bluez.LEAdvertisingManager1.UnregisterAdvertisement"] = &dbus.Call{
		Err: dbus.Error{Name: "org.bluez.Error.DoesNotExist"},
	}
	m := NewAdvertisingManager(conn, "/org/bluez/hci0", directPoster{}, nil)

	done := make(chan error, 1)
	m.Unregister("/org/bluez/example/advertisement0", func(err error) { done <- err })

	var derr dbus.Error
	require.ErrorAs(t, waitErr(t, done), &derr)
	assert.Equal(t, "org.bluez.Error.DoesNotExist", derr.Name)
}

func TestFindAdapter(t *testing.T) {
	objs := ManagedObjects{
		"/org/bluez":           {"org.bluez.AgentManager1": {}},
		"/org/bluez/hci1":      {AdapterInterface: {}},
		"/org/bluez/hci0":      {AdapterInterface: {}, GattManagerInterface: {}},
		"/org/bluez/hci0/dev_": {"org.bluez.Device1": {}},
	}
	conn := newFakeConn()
	conn.replies[getManagedObjectsMethod] = &dbus.Call{Body: []any{objs}}

	p, err := FindAdapter(conn, "")
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/org/bluez/hci0"), p)

	p, err = FindAdapter(conn, "hci1")
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/org/bluez/hci1"), p)

	_, err = FindAdapter(conn, "hci7")
	assert.ErrorIs(t, err, ErrNoAdapter)
}

func TestFindAdapter_None(t *testing.T) {
	conn := newFakeConn()
	conn.replies[getManagedObjectsMethod] = &dbus.Call{Body: []any{ManagedObjects{}}}

	_, err := FindAdapter(conn, "")
	assert.ErrorIs(t, err, ErrNoAdapter)
}

func TestPowerOn(t *testing.T) {
	conn := newFakeConn()
	require.NoError(t, PowerOn(conn, "/org/bluez/hci0"))
	require.Len(t, conn.calls, 1)
	assert.Equal(t, "org.freedesktop.DBus.Properties.Set", conn.calls[0].method)
	assert.Equal(t, []any{AdapterInterface, "Powered", dbus.MakeVariant(true)}, conn.calls[0].args)

	conn.replies[propertiesSetMethod] = &dbus.Call{Err: errors.New("not ready")}
	assert.ErrorContains(t, PowerOn(conn, "/org/bluez/hci0"), "power on /org/bluez/hci0: not ready")
}

func TestDBusError(t *testing.T) {
	assert.Nil(t, dbusError(nil))
	assert.Equal(t, ErrNameInvalidArgs, dbusError(gatt.ErrInvalidArgument).Name)
	assert.Equal(t, ErrNameNotSupported, dbusError(fmt.Errorf("x: %w", gatt.ErrNotSupported)).Name)
	assert.Equal(t, ErrNamePropertyReadOnly, dbusError(gatt.ErrPropertyReadOnly).Name)
	assert.Equal(t, ErrNameFailed, dbusError(errors.New("other")).Name)
}
