// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package kernel provides the control channel to the kernel's ipfw subsystem.
// On darwin, it wraps a raw IP socket and the IP_FW_GET/IP_FW_DEL socket options.
// SimKernel provides a stateful in-memory implementation for tests.
package kernel

// Kernel abstracts the ipfw control socket.
// Components interact with this interface instead of making direct syscalls.
type Kernel interface {
	// GetRules fills buf with the rule table and returns the number of bytes
	// written. When the table does not fit, the kernel writes len(buf) bytes
	// and the caller cannot tell truncation from an exact fit.
	// The first record slot of buf must carry the API version tag.
	GetRules(buf []byte) (int, error)

	// DeleteRule removes the installed rule matching the given record bytes.
	DeleteRule(rule []byte) error

	// Close releases the control socket.
	Close() error
}
