// Package gatt implements the BlueZ GATT object model served by the keyboard:
// an Application owning Services, Characteristics and Descriptors, plus the
// LE Advertisement announced alongside it.
//
// Every object answers the org.freedesktop.DBus.Properties contract (Get and
// GetAll) against a closed property schema, and characteristics carry the
// notification subscription state. Objects are not safe for concurrent use;
// callers serialise access through a single event loop.
package gatt
