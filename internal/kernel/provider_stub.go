// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !darwin

package kernel

import (
	"runtime"

	"grimm.is/denypurge/internal/errors"
)

// Open always fails: the legacy ipfw socket options only exist on darwin.
func Open() (Kernel, error) {
	return nil, errors.Errorf(errors.KindChannelUnavailable,
		"failed to create socket: ipfw control socket is not supported on %s", runtime.GOOS)
}
