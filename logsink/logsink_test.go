/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package logsink

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestSinkWritesFormattedRecord(t *testing.T) {
	var buf syncBuffer
	s := New(&buf, "logrep-test")
	defer s.Close()

	s.Info("search started", KV("profile", "errors"))
	waitFor(t, func() bool { return strings.Contains(buf.String(), "search started") })
	require.Contains(t, buf.String(), "logrep-test")
}

func TestSinkDropsOldestOnSaturation(t *testing.T) {
	var buf syncBuffer
	s := NewCapacity(&buf, "logrep-test", 2)
	defer s.Close()

	// fill well beyond capacity before the consumer gets a chance to drain.
	s.mu.Lock()
	for i := 0; i < 10; i++ {
		s.ring = append(s.ring, entry{ts: time.Now(), lvl: INFO, msg: "x"})
	}
	s.mu.Unlock()

	s.Info("final")
	waitFor(t, func() bool { return strings.Contains(buf.String(), "final") })
}

func TestKVErr(t *testing.T) {
	p := KVErr(errors.New("boom"))
	require.Equal(t, "error", p.Name)
	require.Equal(t, "boom", p.Value)
}

func TestLevelPriorityOrdering(t *testing.T) {
	require.True(t, DEBUG < INFO)
	require.True(t, INFO < WARN)
	require.True(t, WARN < ERROR)
	require.True(t, ERROR < CRITICAL)
}
