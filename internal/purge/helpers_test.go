// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package purge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"grimm.is/denypurge/internal/errors"
	"grimm.is/denypurge/internal/logging"
)

// trackingAllocator records every buffer it hands out so tests can prove
// each one is released exactly once.
type trackingAllocator struct {
	failOnGrow  int
	grows       int
	live        map[*byte]bool
	releases    int
	doubleFrees int
}

func newTrackingAllocator() *trackingAllocator {
	return &trackingAllocator{live: make(map[*byte]bool)}
}

func (a *trackingAllocator) Grow(old []byte, size int) ([]byte, error) {
	a.grows++
	if a.failOnGrow > 0 && a.grows == a.failOnGrow {
		return nil, errors.New(errors.KindOutOfMemory, "injected allocation failure")
	}
	if old != nil {
		a.Release(old)
	}
	buf := make([]byte, size)
	a.live[&buf[0]] = true
	return buf, nil
}

func (a *trackingAllocator) Release(buf []byte) {
	if len(buf) == 0 || !a.live[&buf[0]] {
		a.doubleFrees++
		return
	}
	delete(a.live, &buf[0])
	a.releases++
}

func (a *trackingAllocator) assertClean(t *testing.T) {
	t.Helper()
	assert.Empty(t, a.live, "leaked buffers")
	assert.Zero(t, a.doubleFrees, "buffers released twice or never allocated")
}

// funcKernel lets a test script each kernel call.
type funcKernel struct {
	get func(buf []byte) (int, error)
	del func(rule []byte) error
}

func (k *funcKernel) GetRules(buf []byte) (int, error) { return k.get(buf) }

func (k *funcKernel) DeleteRule(rule []byte) error {
	if k.del == nil {
		return nil
	}
	return k.del(rule)
}

func (k *funcKernel) Close() error { return nil }

func quietLogger() *logging.Logger {
	return logging.New(logging.Config{Level: logging.LevelError, Output: &bytes.Buffer{}})
}
