// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package kernel

import (
	"bytes"
	"sync"
	"syscall"

	"grimm.is/denypurge/internal/ipfw"
)

// SimKernel is a stateful in-memory ipfw rule table.
// It follows the same copy-out contract as the real socket options: IP_FW_GET
// copies as much of the table as fits and reports the bytes copied.
type SimKernel struct {
	mu sync.Mutex

	layout ipfw.Layout
	rules  [][]byte
	final  []byte
	closed bool

	// Failure injection
	GetErr     error
	DeleteErrs map[uint16]error

	// Call accounting
	GetCalls    int
	DeleteCalls int
	Offered     []int
	Deleted     []uint16
}

// NewSimKernel creates an empty table holding only the default rule.
func NewSimKernel(layout ipfw.Layout) *SimKernel {
	return &SimKernel{
		layout:     layout,
		final:      ipfw.EncodeRecord(layout, ipfw.SentinelRuleNumber, uint32(ipfw.CommandDeny)),
		DeleteErrs: make(map[uint16]error),
	}
}

// Install appends a rule with the given number and flags word.
func (s *SimKernel) Install(number uint16, flags uint32) {
	s.InstallRaw(ipfw.EncodeRecord(s.layout, number, flags))
}

// InstallRaw appends a pre-encoded rule.
func (s *SimKernel) InstallRaw(rule []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := make([]byte, len(rule))
	copy(r, rule)
	s.rules = append(s.rules, r)
}

// Installed returns the numbers of the installed rules in table order,
// excluding the default rule.
func (s *SimKernel) Installed() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]uint16, 0, len(s.rules))
	for _, r := range s.rules {
		rec, _ := ipfw.DecodeRecord(s.layout, r)
		out = append(out, rec.Number())
	}
	return out
}

// TableSize returns the byte size of a full IP_FW_GET response.
func (s *SimKernel) TableSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return (len(s.rules) + 1) * s.layout.Size
}

// Closed reports whether Close was called.
func (s *SimKernel) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// GetRules copies the table into buf, truncating when it does not fit.
func (s *SimKernel) GetRules(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.GetCalls++
	s.Offered = append(s.Offered, len(buf))

	if s.closed {
		return 0, syscall.EBADF
	}
	if s.GetErr != nil {
		return 0, s.GetErr
	}
	if len(buf) < s.layout.Size {
		return 0, syscall.EINVAL
	}
	if hdr, _ := ipfw.DecodeRecord(s.layout, buf[:s.layout.Size]); hdr.Version() != ipfw.CurrentAPIVersion {
		return 0, syscall.EINVAL
	}

	n := 0
	for _, r := range s.rules {
		n += copy(buf[n:], r)
		if n == len(buf) {
			return n, nil
		}
	}
	n += copy(buf[n:], s.final)
	return n, nil
}

// DeleteRule removes the first installed rule whose bytes equal rule.
func (s *SimKernel) DeleteRule(rule []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DeleteCalls++

	if s.closed {
		return syscall.EBADF
	}
	rec, err := ipfw.DecodeRecord(s.layout, rule)
	if err != nil || rec.Version() != ipfw.CurrentAPIVersion {
		return syscall.EINVAL
	}
	if err := s.DeleteErrs[rec.Number()]; err != nil {
		return err
	}
	if rec.IsSentinel() {
		return syscall.EINVAL
	}

	for i, r := range s.rules {
		if bytes.Equal(r, rule) {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			s.Deleted = append(s.Deleted, rec.Number())
			return nil
		}
	}
	return syscall.EINVAL
}

// Close marks the channel closed; later calls fail with EBADF.
func (s *SimKernel) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return syscall.EBADF
	}
	s.closed = true
	return nil
}
