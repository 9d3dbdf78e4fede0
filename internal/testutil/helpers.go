// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package testutil

import (
	"os"
	"testing"
)

// RequirePrivileged skips the test unless DENYPURGE_PRIVILEGED_TEST is set.
// Such tests open a raw socket and read the host's live ipfw table, which
// needs root and a kernel with legacy ipfw.
func RequirePrivileged(t *testing.T) {
	t.Helper()
	if os.Getenv("DENYPURGE_PRIVILEGED_TEST") == "" {
		t.Skip("Skipping test: requires DENYPURGE_PRIVILEGED_TEST environment")
	}
}
