package main

import (
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/srg/blekbd/internal/gatt"
	"github.com/srg/blekbd/internal/keyboard"
	"github.com/srg/blekbd/pkg/config"
)

// keyboardObjects is the object tree one keyboard instance exports.
type keyboardObjects struct {
	app *gatt.Application
	hid *keyboard.HIDService
	adv *gatt.Advertisement
}

func buildKeyboard(cfg *config.Config, logger *logrus.Logger) (*keyboardObjects, error) {
	prefix := dbus.ObjectPath(cfg.PathPrefix)
	app, svc, err := keyboard.NewApplication(dbus.ObjectPath(cfg.AppRoot), prefix, keyboard.ServiceOptions{
		ControlPoint: cfg.ControlPoint,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	adv := keyboard.NewAdvertisement(prefix, 0, keyboard.AdvertisementOptions{
		LocalName:      cfg.LocalName,
		Appearance:     cfg.Appearance,
		IncludeTxPower: cfg.IncludeTxPower,
	})
	return &keyboardObjects{app: app, hid: svc, adv: adv}, nil
}

// setEmitter routes change notifications of every characteristic to e.
func (k *keyboardObjects) setEmitter(e gatt.Emitter) {
	_ = k.app.Walk(func(o gatt.Object) error {
		if c, ok := o.(*gatt.Characteristic); ok {
			c.SetEmitter(e)
		}
		return nil
	})
}
