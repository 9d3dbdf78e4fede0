// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build darwin

package kernel

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"grimm.is/denypurge/internal/errors"
	"grimm.is/denypurge/internal/logging"
)

// Socket option names from <netinet/in.h>.
const (
	ipFwDel = 41
	ipFwGet = 44
)

// RawSocket implements Kernel over a raw IPv4 socket.
// ipfw can only be manipulated via a raw socket, which requires root.
type RawSocket struct {
	fd     int
	logger *logging.Logger
}

// Open opens the platform control channel.
func Open() (Kernel, error) {
	return OpenRawSocket()
}

// OpenRawSocket creates the raw socket used for ipfw socket options.
func OpenRawSocket() (*RawSocket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_RAW)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindChannelUnavailable, "failed to create socket")
	}
	return &RawSocket{
		fd:     fd,
		logger: logging.WithComponent("kernel"),
	}, nil
}

// GetRules issues getsockopt(IP_FW_GET). The kernel overwrites the length
// argument with the number of bytes it copied out.
func (s *RawSocket) GetRules(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, unix.EINVAL
	}

	size := uint32(len(buf))
	_, _, errno := unix.Syscall6(
		unix.SYS_GETSOCKOPT,
		uintptr(s.fd),
		uintptr(unix.IPPROTO_IP),
		uintptr(ipFwGet),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
		0,
	)
	if errno != 0 {
		return 0, errno
	}

	s.logger.Debug("IP_FW_GET", "offered", len(buf), "used", size)
	return int(size), nil
}

// DeleteRule issues setsockopt(IP_FW_DEL) with the full record as the value.
func (s *RawSocket) DeleteRule(rule []byte) error {
	if len(rule) == 0 {
		return unix.EINVAL
	}
	return unix.SetsockoptString(s.fd, unix.IPPROTO_IP, ipFwDel, string(rule))
}

// Close closes the socket.
func (s *RawSocket) Close() error {
	return unix.Close(s.fd)
}
