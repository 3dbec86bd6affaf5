/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheInvalidatesOnMtimeChange(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logrep.conf")
	require.NoError(t, os.WriteFile(p, []byte(`pattern = "one"`), 0644))

	c, err := NewCache(p)
	require.NoError(t, err)
	defer c.Close()

	doc, err := c.Get()
	require.NoError(t, err)
	s, err := doc.Effective("")
	require.NoError(t, err)
	require.Equal(t, "one", s.Pattern)

	// bump mtime forward so the (mtime,size) pair is guaranteed to differ
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(p, []byte(`pattern = "two"`), 0644))
	require.NoError(t, os.Chtimes(p, future, future))

	doc2, err := c.Get()
	require.NoError(t, err)
	s2, err := doc2.Effective("")
	require.NoError(t, err)
	require.Equal(t, "two", s2.Pattern)
}

func TestCacheMissingFile(t *testing.T) {
	_, err := NewCache(filepath.Join(t.TempDir(), "nope.conf"))
	require.Error(t, err)
}

func TestCacheParseError(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logrep.conf")
	require.NoError(t, os.WriteFile(p, []byte(`bogus = "x"`), 0644))
	_, err := NewCache(p)
	require.Error(t, err)
}
