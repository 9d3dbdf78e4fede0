// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build darwin

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/denypurge/internal/ipfw"
	"grimm.is/denypurge/internal/testutil"
)

func TestRawSocket_ReadsTable(t *testing.T) {
	testutil.RequirePrivileged(t)

	s, err := OpenRawSocket()
	require.NoError(t, err)
	defer s.Close()

	buf := make([]byte, 64*ipfw.DefaultLayout.Size)
	ipfw.StampVersion(buf, ipfw.DefaultLayout)

	n, err := s.GetRules(buf)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestRawSocket_EmptyBuffer(t *testing.T) {
	testutil.RequirePrivileged(t)

	s, err := OpenRawSocket()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetRules(nil)
	assert.Error(t, err)
	assert.Error(t, s.DeleteRule(nil))
}
