package bluez

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/srg/blekbd/internal/loop"
)

// Manager is an asynchronous proxy for GattManager1 or LEAdvertisingManager1
// on one adapter. Replies are delivered on the main loop.
type Manager struct {
	obj        dbus.BusObject
	register   string
	unregister string
	post       Poster
	logger     *logrus.Logger
}

// NewGattManager returns the GattManager1 proxy for adapter.
func NewGattManager(conn Conn, adapter dbus.ObjectPath, post Poster, logger *logrus.Logger) *Manager {
	return newManager(conn, adapter, registerApplicationMethod, unregisterApplicationMethod, post, logger)
}

// NewAdvertisingManager returns the LEAdvertisingManager1 proxy for adapter.
func NewAdvertisingManager(conn Conn, adapter dbus.ObjectPath, post Poster, logger *logrus.Logger) *Manager {
	return newManager(conn, adapter, registerAdvertisementMethod, unregisterAdvertisementMethod, post, logger)
}

func newManager(conn Conn, adapter dbus.ObjectPath, register, unregister string, post Poster, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		obj:        conn.Object(BusName, adapter),
		register:   register,
		unregister: unregister,
		post:       post,
		logger:     logger,
	}
}

// Register sends the register call; done receives the reply on the loop.
func (m *Manager) Register(path dbus.ObjectPath, opts map[string]dbus.Variant, done func(error)) {
	if opts == nil {
		opts = map[string]dbus.Variant{}
	}
	m.call(m.register, done, path, opts)
}

// Unregister sends the unregister call; done receives the reply on the loop.
func (m *Manager) Unregister(path dbus.ObjectPath, done func(error)) {
	m.call(m.unregister, done, path)
}

func (m *Manager) call(method string, done func(error), args ...any) {
	m.logger.WithFields(logrus.Fields{"method": method, "args": args}).Debug("BlueZ call")
	call := m.obj.Go(method, 0, make(chan *dbus.Call, 1), args...)

	loop.Go(context.Background(), "bluez-reply", func(context.Context) {
		reply := <-call.Done
		if !m.post.Post(func() { done(reply.Err) }) {
			m.logger.WithField("method", method).Debug("Reply arrived after the loop stopped")
		}
	})
}
