// Package keyboard assembles the HID-over-GATT keyboard: the HID service
// topology, its advertisement and the periodic key driver.
package keyboard

import (
	"fmt"

	"github.com/go-ble/ble"
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/srg/blekbd/internal/bledb"
	"github.com/srg/blekbd/internal/gatt"
	"github.com/srg/blekbd/internal/hid"
)

// DefaultPrefix is the path prefix for services and advertisements.
const DefaultPrefix dbus.ObjectPath = "/org/bluez/example"

// ServiceOptions tunes the HID service topology.
type ServiceOptions struct {
	// ControlPoint adds the HID Control Point characteristic.
	ControlPoint bool
	Logger       *logrus.Logger
}

// HIDService is the built HID service and direct handles to its characteristics.
// ControlPoint is nil unless requested.
type HIDService struct {
	Service        *gatt.Service
	ProtocolMode   *gatt.Characteristic
	HIDInformation *gatt.Characteristic
	ControlPoint   *gatt.Characteristic
	InputReport    *gatt.Characteristic
	ReportMap      *gatt.Characteristic
}

// NewHIDService builds the HID service at "<prefix>/service<index>".
// Characteristics are numbered in creation order: Protocol Mode, HID
// Information, Control Point (optional), Input Report, Report Map.
func NewHIDService(prefix dbus.ObjectPath, index int, opts ServiceOptions) (*HIDService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	svc := gatt.NewService(prefix, index, bledb.ServiceHID, true)
	h := &HIDService{Service: svc}
	next := 0
	add := func(uuid string, props ble.Property, value []byte) (*gatt.Characteristic, error) {
		c := gatt.NewCharacteristic(svc, next, uuid, gatt.FlagsFromProperty(props))
		next++
		c.SetValue(value)
		if c.Flags().Has(gatt.FlagRead) {
			c.ServeStoredValue()
		}
		if err := svc.AddCharacteristic(c); err != nil {
			return nil, err
		}
		return c, nil
	}

	var err error
	if h.ProtocolMode, err = add(bledb.CharProtocolMode, ble.CharRead|ble.CharWriteNR,
		[]byte{hid.ProtocolModeReport}); err != nil {
		return nil, err
	}
	h.ProtocolMode.HandleWrite(protocolModeWriter(h.ProtocolMode, logger))

	if h.HIDInformation, err = add(bledb.CharHIDInformation, ble.CharRead, hid.HIDInformation); err != nil {
		return nil, err
	}

	if opts.ControlPoint {
		if h.ControlPoint, err = add(bledb.CharHIDControlPoint, ble.CharWriteNR, []byte{hid.ControlSuspend}); err != nil {
			return nil, err
		}
		h.ControlPoint.HandleWrite(controlPointWriter(h.ControlPoint, logger))
	}

	if h.InputReport, err = add(bledb.CharReport, ble.CharRead|ble.CharNotify, hid.Release().Encode()); err != nil {
		return nil, err
	}
	h.InputReport.OnNotifyChange(func(c *gatt.Characteristic, s gatt.NotifyState) {
		entry := logger.WithField("path", c.Path())
		if s == gatt.Subscribed {
			entry.Info("Host subscribed to input reports")
		} else {
			entry.Info("Host unsubscribed from input reports")
		}
	})
	cccd := gatt.NewDescriptor(h.InputReport, 0, bledb.DescriptorClientConfig,
		gatt.FlagsFromProperty(ble.CharRead|ble.CharWrite), hid.ClientConfigDisabled)
	ref := gatt.NewDescriptor(h.InputReport, 1, bledb.DescriptorReportReference,
		gatt.FlagsFromProperty(ble.CharRead), hid.ReportReference(1, hid.ReportTypeInput))
	for _, d := range []*gatt.Descriptor{cccd, ref} {
		if err := h.InputReport.AddDescriptor(d); err != nil {
			return nil, err
		}
	}

	if h.ReportMap, err = add(bledb.CharReportMap, ble.CharRead, hid.ReportMap()); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"path":            svc.Path(),
		"characteristics": len(svc.Characteristics()),
	}).Debug("HID service built")
	return h, nil
}

func protocolModeWriter(c *gatt.Characteristic, logger *logrus.Logger) gatt.WriteHandler {
	return func(value []byte, _ gatt.Options) error {
		if len(value) != 1 || !hid.ValidProtocolMode(value[0]) {
			return fmt.Errorf("protocol mode % x: %w", value, gatt.ErrInvalidArgument)
		}
		c.SetValue(value)
		logger.WithField("mode", value[0]).Info("Protocol mode changed")
		return nil
	}
}

func controlPointWriter(c *gatt.Characteristic, logger *logrus.Logger) gatt.WriteHandler {
	return func(value []byte, _ gatt.Options) error {
		if len(value) != 1 || value[0] > hid.ControlExitSuspend {
			return fmt.Errorf("control point % x: %w", value, gatt.ErrInvalidArgument)
		}
		c.SetValue(value)
		if value[0] == hid.ControlSuspend {
			logger.Info("Host suspended")
		} else {
			logger.Info("Host exited suspend")
		}
		return nil
	}
}

// AdvertisementOptions tunes the keyboard advertisement.
type AdvertisementOptions struct {
	LocalName      string
	Appearance     uint16
	IncludeTxPower bool
}

// NewAdvertisement builds the peripheral advertisement announcing the HID service.
// A zero Appearance means the keyboard appearance.
func NewAdvertisement(prefix dbus.ObjectPath, index int, opts AdvertisementOptions) *gatt.Advertisement {
	adv := gatt.NewAdvertisement(prefix, index, gatt.AdvertisementPeripheral)
	adv.AddServiceUUID(bledb.MustExpandUUID(bledb.ServiceHID))
	adv.SetLocalName(opts.LocalName)
	adv.SetIncludeTxPower(opts.IncludeTxPower)
	if opts.Appearance != 0 {
		adv.SetAppearance(opts.Appearance)
	}
	return adv
}

// NewApplication builds the application holding the single HID service.
func NewApplication(root, prefix dbus.ObjectPath, opts ServiceOptions) (*gatt.Application, *HIDService, error) {
	app := gatt.NewApplication(root)
	h, err := NewHIDService(prefix, 0, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := app.AddService(h.Service); err != nil {
		return nil, nil, err
	}
	return app, h, nil
}
