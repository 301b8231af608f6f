package peripheral

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// BlueZ error names that mean the object is not (or no longer) registered.
const (
	ErrNameDoesNotExist  = "org.bluez.Error.DoesNotExist"
	ErrNameUnknownObject = "org.freedesktop.DBus.Error.UnknownObject"
)

// FaultKind classifies lifecycle faults.
type FaultKind int

const (
	// UnexpectedTransportFault is any other manager error; it is logged, not fatal.
	UnexpectedTransportFault FaultKind = iota
	// RegistrationFailure is a failed RegisterApplication/RegisterAdvertisement. Fatal.
	RegistrationFailure
	// StaleResourceNotFound is an unregister of something BlueZ does not know. Ignored.
	StaleResourceNotFound
)

func (k FaultKind) String() string {
	switch k {
	case RegistrationFailure:
		return "registration failure"
	case StaleResourceNotFound:
		return "stale resource not found"
	default:
		return "unexpected transport fault"
	}
}

// Fault is a lifecycle error with the operation and object path that caused it.
type Fault struct {
	Kind FaultKind
	Op   string
	Path dbus.ObjectPath
	Err  error
}

func (f *Fault) Error() string {
	if f.Op == "" {
		return f.Kind.String()
	}
	if f.Err == nil {
		return fmt.Sprintf("%s %s: %s", f.Op, f.Path, f.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", f.Op, f.Path, f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Is matches any Fault of the same kind, so errors.Is(err, ErrRegistrationFailure) works.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	return ok && t.Kind == f.Kind
}

var (
	ErrRegistrationFailure      = &Fault{Kind: RegistrationFailure}
	ErrStaleResourceNotFound    = &Fault{Kind: StaleResourceNotFound}
	ErrUnexpectedTransportFault = &Fault{Kind: UnexpectedTransportFault}
)

// ErrorName extracts the D-Bus error name carried by err, if any.
func ErrorName(err error) string {
	var v dbus.Error
	if errors.As(err, &v) {
		return v.Name
	}
	var p *dbus.Error
	if errors.As(err, &p) && p != nil {
		return p.Name
	}
	return ""
}

// Classify maps an unregister error to its fault kind.
func Classify(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	switch ErrorName(err) {
	case ErrNameDoesNotExist, ErrNameUnknownObject:
		return StaleResourceNotFound
	}
	return UnexpectedTransportFault
}
