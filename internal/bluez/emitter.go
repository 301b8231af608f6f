package bluez

import (
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/srg/blekbd/internal/gatt"
	"github.com/srg/blekbd/internal/ringchan"
)

// Change is one emitted PropertiesChanged signal.
type Change struct {
	Path      dbus.ObjectPath
	Interface string
	Changed   gatt.Properties
}

// Emitter sends PropertiesChanged signals and mirrors them to a tap that
// observers can drain without ever blocking the loop.
type Emitter struct {
	conn   Conn
	tap    *ringchan.RingChannel[Change]
	logger *logrus.Logger
}

// DefaultTapSize is the number of signals the tap keeps.
const DefaultTapSize = 64

// NewEmitter creates an emitter whose tap keeps the last tapSize signals.
func NewEmitter(conn Conn, tapSize int, logger *logrus.Logger) *Emitter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if tapSize <= 0 {
		tapSize = DefaultTapSize
	}
	return &Emitter{conn: conn, tap: ringchan.New[Change](tapSize), logger: logger}
}

// EmitPropertiesChanged implements gatt.Emitter.
func (e *Emitter) EmitPropertiesChanged(path dbus.ObjectPath, iface string, changed gatt.Properties, invalidated []string) error {
	if invalidated == nil {
		invalidated = []string{}
	}
	err := e.conn.Emit(path, propertiesChangedSignal, iface, changed, invalidated)
	if err != nil {
		e.logger.WithError(err).WithField("path", path).Warn("PropertiesChanged emission failed")
		return err
	}
	if e.tap.Send(Change{Path: path, Interface: iface, Changed: changed}) {
		e.logger.WithField("path", path).Trace("Tap overflow, oldest change dropped")
	}
	return nil
}

// Tap returns the channel of emitted changes.
func (e *Emitter) Tap() *ringchan.RingChannel[Change] { return e.tap }

// Close closes the tap.
func (e *Emitter) Close() { e.tap.Close() }
