package main

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/srg/blekbd/internal/bluez"
	"github.com/srg/blekbd/internal/peripheral"
)

// Command-level errors
var (
	// ErrShutdownTimeout indicates BlueZ did not answer the unregister calls in time.
	ErrShutdownTimeout = errors.New("shutdown timed out")
	// ErrInterrupted indicates a second signal arrived before shutdown completed.
	ErrInterrupted = errors.New("interrupted during shutdown")
)

// FormatUserError renders err for the terminal, adding a hint for the
// failures users most often hit.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var fault *peripheral.Fault
	if errors.As(err, &fault) && fault.Kind == peripheral.RegistrationFailure {
		msg := fmt.Sprintf("BlueZ failed to %s (%s)", fault.Op, describeDBusError(fault.Err))
		if peripheral.ErrorName(fault.Err) == "org.bluez.Error.AlreadyExists" {
			msg += "; another instance may still be registered"
		}
		return msg
	}

	switch {
	case errors.Is(err, bluez.ErrNoAdapter):
		return err.Error() + "; check that bluetoothd is running and the adapter is not blocked (rfkill)"
	case errors.Is(err, ErrShutdownTimeout):
		return "BlueZ did not answer during shutdown; objects may remain registered until bluetoothd restarts"
	case errors.Is(err, ErrInterrupted):
		return "interrupted during shutdown; objects may remain registered until bluetoothd restarts"
	}

	if name := peripheral.ErrorName(err); name != "" {
		switch name {
		case "org.freedesktop.DBus.Error.AccessDenied":
			return fmt.Sprintf("%s; run as root or allow access to org.bluez in the D-Bus policy", describeDBusError(err))
		case "org.freedesktop.DBus.Error.ServiceUnknown":
			return fmt.Sprintf("%s; is bluetoothd running?", describeDBusError(err))
		}
		return describeDBusError(err)
	}
	return err.Error()
}

func describeDBusError(err error) string {
	var derr dbus.Error
	if errors.As(err, &derr) {
		return formatDBusError(derr)
	}
	var perr *dbus.Error
	if errors.As(err, &perr) && perr != nil {
		return formatDBusError(*perr)
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func formatDBusError(e dbus.Error) string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s: %v", e.Name, e.Body[0])
	}
	return e.Name
}
