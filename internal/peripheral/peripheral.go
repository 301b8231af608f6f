// Package peripheral drives the registration lifecycle of the GATT
// application and its advertisement with BlueZ.
package peripheral

import (
	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/srg/blekbd/internal/gatt"
)

// Manager is an asynchronous BlueZ registration manager (GattManager1 or
// LEAdvertisingManager1). Calls return immediately; done runs on the main
// loop with the outcome.
type Manager interface {
	Register(path dbus.ObjectPath, opts map[string]dbus.Variant, done func(error))
	Unregister(path dbus.ObjectPath, done func(error))
}

// Quitter stops the main loop.
type Quitter interface {
	Quit(err error)
}

// Driver is started once both registrations succeed and stopped at shutdown.
type Driver interface {
	Start()
	Stop()
}

// State is the lifecycle position of a Peripheral.
type State int

const (
	StateIdle State = iota
	StateRegistering
	StateRunning
	StateShuttingDown
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRegistering:
		return "registering"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting down"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config wires a Peripheral.
type Config struct {
	App           *gatt.Application
	Advertisement *gatt.Advertisement
	GattManager   Manager
	AdvManager    Manager
	Loop          Quitter
	Driver        Driver
	Logger        *logrus.Logger
}

// Peripheral holds everything the registration callbacks share.
// All methods and continuations run on the main loop.
type Peripheral struct {
	app    *gatt.Application
	adv    *gatt.Advertisement
	gatt   Manager
	advMgr Manager
	loop   Quitter
	driver Driver
	logger *logrus.Logger

	state         State
	appRegistered bool
	advRegistered bool
	err           error
	faults        []*Fault
}

// New creates an idle peripheral. Driver may be nil.
func New(cfg Config) *Peripheral {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Peripheral{
		app:    cfg.App,
		adv:    cfg.Advertisement,
		gatt:   cfg.GattManager,
		advMgr: cfg.AdvManager,
		loop:   cfg.Loop,
		driver: cfg.Driver,
		logger: logger,
	}
}

func (p *Peripheral) State() State { return p.state }

// Faults returns the non-fatal unregister faults seen so far.
func (p *Peripheral) Faults() []*Fault { return p.faults }

// Start registers the application, replaces any stale advertisement,
// registers the advertisement and then starts the driver. A registration
// error is fatal: whatever was registered is unregistered and the loop quits
// with a RegistrationFailure.
func (p *Peripheral) Start() {
	if p.state != StateIdle {
		return
	}
	p.state = StateRegistering
	appPath := p.app.Path()

	p.logger.WithField("path", appPath).Info("Registering GATT application")
	p.gatt.Register(appPath, map[string]dbus.Variant{}, func(err error) {
		if p.state != StateRegistering {
			return
		}
		if err != nil {
			p.fail("register application", appPath, err)
			return
		}
		p.appRegistered = true
		p.logger.WithField("path", appPath).Info("GATT application registered")
		p.registerAdvertisement()
	})
}

func (p *Peripheral) registerAdvertisement() {
	advPath := p.adv.Path()

	p.advMgr.Unregister(advPath, func(err error) {
		if p.state != StateRegistering {
			return
		}
		if err != nil {
			if Classify(err) == StaleResourceNotFound {
				p.logger.WithField("path", advPath).Debug("No stale advertisement to remove")
			} else {
				p.logger.WithError(err).WithField("path", advPath).Warn("Failed to remove stale advertisement")
			}
		}

		p.logger.WithField("path", advPath).Info("Registering advertisement")
		p.advMgr.Register(advPath, map[string]dbus.Variant{}, func(err error) {
			if p.state != StateRegistering {
				return
			}
			if err != nil {
				p.fail("register advertisement", advPath, err)
				return
			}
			p.advRegistered = true
			p.state = StateRunning
			p.logger.WithField("path", advPath).Info("Advertisement registered")
			if p.driver != nil {
				p.driver.Start()
			}
		})
	})
}

func (p *Peripheral) fail(op string, path dbus.ObjectPath, err error) {
	fault := &Fault{Kind: RegistrationFailure, Op: op, Path: path, Err: err}
	p.state = StateFailed
	p.err = fault
	p.logger.WithError(err).WithFields(logrus.Fields{"op": op, "path": path}).Error("Registration failed")

	p.unregister(p.advRegistered, false, func() {
		p.loop.Quit(fault)
	})
}

// Shutdown stops the driver, unregisters the advertisement and then the
// application, and quits the loop once both attempts have completed.
// Calling it again is a no-op.
func (p *Peripheral) Shutdown() {
	switch p.state {
	case StateShuttingDown, StateStopped, StateFailed:
		return
	}
	p.state = StateShuttingDown
	p.logger.Info("Shutting down peripheral")
	if p.driver != nil {
		p.driver.Stop()
	}
	if p.adv.Released() {
		p.logger.WithField("path", p.adv.Path()).Debug("Advertisement already released by BlueZ")
	}

	p.unregister(true, true, func() {
		p.state = StateStopped
		p.loop.Quit(nil)
	})
}

// unregister removes the advertisement (if adv) and then the application
// (if app and registered or forced), and calls then.
func (p *Peripheral) unregister(adv, force bool, then func()) {
	unregApp := func() {
		if !p.appRegistered && !force {
			then()
			return
		}
		p.gatt.Unregister(p.app.Path(), func(err error) {
			p.appRegistered = false
			p.note("unregister application", p.app.Path(), err)
			then()
		})
	}
	if !adv {
		unregApp()
		return
	}
	p.advMgr.Unregister(p.adv.Path(), func(err error) {
		p.advRegistered = false
		p.note("unregister advertisement", p.adv.Path(), err)
		unregApp()
	})
}

func (p *Peripheral) note(op string, path dbus.ObjectPath, err error) {
	entry := p.logger.WithFields(logrus.Fields{"op": op, "path": path})
	if err == nil {
		entry.Info("Unregistered")
		return
	}
	fault := &Fault{Kind: Classify(err), Op: op, Path: path, Err: err}
	p.faults = append(p.faults, fault)
	if fault.Kind == StaleResourceNotFound {
		entry.Debug("Already unregistered")
		return
	}
	entry.WithError(err).Warn("Unregister failed")
}
