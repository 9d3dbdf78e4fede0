// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package purge

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/denypurge/internal/errors"
	"grimm.is/denypurge/internal/ipfw"
	"grimm.is/denypurge/internal/kernel"
	"grimm.is/denypurge/internal/metrics"
)

// denyFlags carries a log modifier bit to prove only the command byte matters.
const denyFlags = uint32(ipfw.CommandDeny) | 0x00004000

// installMixed installs deny and non-deny rules interleaved and returns the
// numbers of each.
func installMixed(k *kernel.SimKernel, deny, other int) (denyNums, otherNums []uint16) {
	others := []ipfw.Command{ipfw.CommandAccept, ipfw.CommandReject, ipfw.CommandCount, ipfw.CommandSkipTo}
	n := uint16(100)
	for i := 0; i < deny || i < other; i++ {
		if i < deny {
			k.Install(n, denyFlags)
			denyNums = append(denyNums, n)
			n += 10
		}
		if i < other {
			k.Install(n, uint32(others[i%len(others)]))
			otherNums = append(otherNums, n)
			n += 10
		}
	}
	return denyNums, otherNums
}

func newTestPurger(alloc Allocator) *Purger {
	return NewPurger(Options{Allocator: alloc, Logger: quietLogger()})
}

func TestPurgeDenyRules_DeletesOnlyDeny(t *testing.T) {
	tests := []struct {
		deny, other int
	}{
		{1, 0},
		{0, 1},
		{3, 5},
		{5, 3},
		{40, 60},
		{250, 250},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("deny=%d/other=%d", tt.deny, tt.other), func(t *testing.T) {
			alloc := newTrackingAllocator()
			k := kernel.NewSimKernel(ipfw.DefaultLayout)
			denyNums, otherNums := installMixed(k, tt.deny, tt.other)

			p := newTestPurger(alloc)
			n, err := p.PurgeDenyRules(k)
			require.NoError(t, err)

			assert.Equal(t, tt.deny, n)
			assert.Equal(t, tt.deny, k.DeleteCalls)
			if tt.deny > 0 {
				assert.Equal(t, denyNums, k.Deleted)
			}
			if tt.other > 0 {
				assert.Equal(t, otherNums, k.Installed())
			} else {
				assert.Empty(t, k.Installed())
			}
			assert.Equal(t, StateDone, p.State())
			alloc.assertClean(t)
		})
	}
}

func TestPurgeDenyRules_NoDenyRules(t *testing.T) {
	alloc := newTrackingAllocator()
	k := kernel.NewSimKernel(ipfw.DefaultLayout)
	k.Install(100, uint32(ipfw.CommandAccept))

	n, err := newTestPurger(alloc).PurgeDenyRules(k)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, k.DeleteCalls)
	alloc.assertClean(t)
}

func TestPurgeDenyRules_EmptyTableKeepsDefaultRule(t *testing.T) {
	// The default rule is a deny rule but terminates the table.
	k := kernel.NewSimKernel(ipfw.DefaultLayout)

	n, err := newTestPurger(newTrackingAllocator()).PurgeDenyRules(k)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, k.DeleteCalls)
}

func TestPurgeDenyRules_StopsAtSentinel(t *testing.T) {
	l := ipfw.DefaultLayout
	var deleted []uint16
	k := &funcKernel{
		get: func(buf []byte) (int, error) {
			n := copy(buf, ipfw.EncodeRecord(l, 100, denyFlags))
			n += copy(buf[n:], ipfw.EncodeRecord(l, ipfw.SentinelRuleNumber, denyFlags))
			// Reported as written, but past the end-of-table rule.
			n += copy(buf[n:], ipfw.EncodeRecord(l, 200, denyFlags))
			return n, nil
		},
		del: func(rule []byte) error {
			rec, err := ipfw.DecodeRecord(l, rule)
			require.NoError(t, err)
			deleted = append(deleted, rec.Number())
			return nil
		},
	}

	alloc := newTrackingAllocator()
	n, err := newTestPurger(alloc).PurgeDenyRules(k)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uint16{100}, deleted)
	alloc.assertClean(t)
}

func TestPurgeDenyRules_PassesExactRecordBytes(t *testing.T) {
	l := ipfw.DefaultLayout
	raw := ipfw.EncodeRecord(l, 4242, denyFlags)
	for i := 60; i < 100; i++ {
		raw[i] = byte(i)
	}

	k := kernel.NewSimKernel(l)
	k.InstallRaw(raw)

	n, err := newTestPurger(newTrackingAllocator()).PurgeDenyRules(k)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, k.Installed())
}

func TestPurgeDenyRules_Idempotent(t *testing.T) {
	alloc := newTrackingAllocator()
	k := kernel.NewSimKernel(ipfw.DefaultLayout)
	installMixed(k, 7, 4)
	p := newTestPurger(alloc)

	n, err := p.PurgeDenyRules(k)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = p.PurgeDenyRules(k)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, k.Installed(), 4)
	alloc.assertClean(t)
}

func TestPurgeDenyRules_DeleteFailureNoRollback(t *testing.T) {
	alloc := newTrackingAllocator()
	reg := metrics.NewRegistry()
	k := kernel.NewSimKernel(ipfw.DefaultLayout)
	denyNums, otherNums := installMixed(k, 6, 2)

	failing := denyNums[3]
	k.DeleteErrs[failing] = syscall.EPERM

	p := NewPurger(Options{Allocator: alloc, Metrics: reg, Logger: quietLogger()})
	n, err := p.PurgeDenyRules(k)
	require.Error(t, err)

	assert.Zero(t, n, "partial count is discarded")
	assert.Equal(t, errors.KindDelete, errors.GetKind(err))
	assert.ErrorIs(t, err, syscall.EPERM)
	assert.Equal(t, failing, errors.GetAttributes(err)["rule"])
	assert.Equal(t, fmt.Sprintf("Failed to delete rule %d: operation not permitted", failing), err.Error())
	assert.Equal(t, StateFailed, p.State())

	assert.Equal(t, denyNums[:3], k.Deleted)
	remaining := k.Installed()
	for _, num := range denyNums[3:] {
		assert.Contains(t, remaining, num)
	}
	for _, num := range otherNums {
		assert.Contains(t, remaining, num)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(reg.RulesDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.DeleteFailures))
	alloc.assertClean(t)
}

func TestPurgeDenyRules_FetchFailure(t *testing.T) {
	alloc := newTrackingAllocator()
	k := kernel.NewSimKernel(ipfw.DefaultLayout)
	k.GetErr = syscall.EACCES

	p := newTestPurger(alloc)
	n, err := p.PurgeDenyRules(k)
	assert.Zero(t, n)
	assert.Equal(t, errors.KindFetch, errors.GetKind(err))
	assert.True(t, errors.HasKind(err, errors.KindKernelQuery))
	assert.Zero(t, k.DeleteCalls)
	assert.Equal(t, StateFailed, p.State())
	alloc.assertClean(t)
}

func TestPurgeDenyRules_OutOfMemory(t *testing.T) {
	k := kernel.NewSimKernel(ipfw.DefaultLayout)
	installMixed(k, 20, 20)

	alloc := NewBufferAllocator(1024)
	_, err := newTestPurger(alloc).PurgeDenyRules(k)
	assert.Equal(t, errors.KindFetch, errors.GetKind(err))
	assert.True(t, errors.HasKind(err, errors.KindOutOfMemory))
	assert.Zero(t, alloc.Stats().Outstanding())
	assert.Len(t, k.Installed(), 40)
}

func TestPurgeDenyRules_DryRun(t *testing.T) {
	alloc := newTrackingAllocator()
	k := kernel.NewSimKernel(ipfw.DefaultLayout)
	installMixed(k, 4, 4)

	p := NewPurger(Options{Allocator: alloc, Logger: quietLogger(), DryRun: true})
	n, err := p.PurgeDenyRules(k)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Zero(t, k.DeleteCalls)
	assert.Len(t, k.Installed(), 8)
	alloc.assertClean(t)
}

func TestPurgeDenyRules_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	k := kernel.NewSimKernel(ipfw.DefaultLayout)
	installMixed(k, 3, 2)

	p := NewPurger(Options{Metrics: reg, Logger: quietLogger()})
	_, err := p.PurgeDenyRules(k)
	require.NoError(t, err)

	assert.Equal(t, 5.0, testutil.ToFloat64(reg.RulesScanned))
	assert.Equal(t, 3.0, testutil.ToFloat64(reg.RulesDeleted))
	assert.Zero(t, testutil.ToFloat64(reg.DeleteFailures))
}

func TestNewPurgerDefaults(t *testing.T) {
	p := NewPurger(Options{})
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, ipfw.DefaultLayout, p.fetcher.layout)
	assert.IsType(t, &BufferAllocator{}, p.fetcher.alloc)
}
