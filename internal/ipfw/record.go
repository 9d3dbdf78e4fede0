// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ipfw

import (
	"encoding/binary"
	"fmt"
)

const (
	// SentinelRuleNumber terminates the table. It is the kernel's default
	// rule and never a rule that can be deleted.
	SentinelRuleNumber uint16 = 65535

	// CurrentAPIVersion must be stamped into the first record of every
	// IP_FW_GET buffer and every record passed to IP_FW_DEL.
	CurrentAPIVersion uint32 = 20
)

// Layout describes where the interpreted fields sit inside one record.
type Layout struct {
	Size          int
	VersionOffset int
	NumberOffset  int
	FlagsOffset   int
}

// DefaultLayout is struct ip_fw (API version 1) on 64-bit darwin.
var DefaultLayout = Layout{
	Size:          176,
	VersionOffset: 0,
	NumberOffset:  48,
	FlagsOffset:   52,
}

// Validate checks that every field fits inside the record.
func (l Layout) Validate() error {
	if l.Size <= 0 {
		return fmt.Errorf("record size must be positive, got %d", l.Size)
	}
	fields := []struct {
		name   string
		offset int
		width  int
	}{
		{"version", l.VersionOffset, 4},
		{"number", l.NumberOffset, 2},
		{"flags", l.FlagsOffset, 4},
	}
	for _, f := range fields {
		if f.offset < 0 || f.offset+f.width > l.Size {
			return fmt.Errorf("%s field at offset %d does not fit in a %d byte record", f.name, f.offset, l.Size)
		}
	}
	return nil
}

// Record is a read-only view of one rule inside a table buffer.
type Record struct {
	raw    []byte
	layout Layout
}

// Version returns the API version tag.
func (r Record) Version() uint32 {
	return binary.NativeEndian.Uint32(r.raw[r.layout.VersionOffset:])
}

// Number returns the rule number (fw_number).
func (r Record) Number() uint16 {
	return binary.NativeEndian.Uint16(r.raw[r.layout.NumberOffset:])
}

// Flags returns the raw flags word (fw_flg).
func (r Record) Flags() uint32 {
	return binary.NativeEndian.Uint32(r.raw[r.layout.FlagsOffset:])
}

// Command returns the rule action encoded in the flags word.
func (r Record) Command() Command {
	return Command(r.Flags() & CommandMask)
}

// IsDeny reports whether the rule drops matching packets silently.
func (r Record) IsDeny() bool {
	return r.Command() == CommandDeny
}

// IsSentinel reports whether this record terminates the table.
func (r Record) IsSentinel() bool {
	return r.Number() == SentinelRuleNumber
}

// Bytes returns a copy of the record exactly as the kernel reported it.
func (r Record) Bytes() []byte {
	out := make([]byte, len(r.raw))
	copy(out, r.raw)
	return out
}

func (r Record) String() string {
	return fmt.Sprintf("rule %d (%s)", r.Number(), r.Command())
}

// StampVersion writes CurrentAPIVersion into the version field of the
// record starting at buf[0].
func StampVersion(buf []byte, layout Layout) {
	binary.NativeEndian.PutUint32(buf[layout.VersionOffset:], CurrentAPIVersion)
}

// EncodeRecord builds a zeroed record carrying the given number and flags.
// The match fields are left empty.
func EncodeRecord(layout Layout, number uint16, flags uint32) []byte {
	raw := make([]byte, layout.Size)
	binary.NativeEndian.PutUint32(raw[layout.VersionOffset:], CurrentAPIVersion)
	binary.NativeEndian.PutUint16(raw[layout.NumberOffset:], number)
	binary.NativeEndian.PutUint32(raw[layout.FlagsOffset:], flags)
	return raw
}

// DecodeRecord returns a view over raw, which must be exactly one record long.
func DecodeRecord(layout Layout, raw []byte) (Record, error) {
	if len(raw) != layout.Size {
		return Record{}, fmt.Errorf("record must be %d bytes, got %d", layout.Size, len(raw))
	}
	return Record{raw: raw, layout: layout}, nil
}
