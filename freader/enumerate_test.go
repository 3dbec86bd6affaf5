/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package freader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestEnumerateCaseFoldedOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.log")
	touch(t, dir, "A.log")
	touch(t, dir, "a.log")

	got, err := Enumerate(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, filepath.Join(dir, "A.log"), got[0])
	require.Equal(t, filepath.Join(dir, "a.log"), got[1])
	require.Equal(t, filepath.Join(dir, "b.log"), got[2])
}

func TestEnumerateNoMatches(t *testing.T) {
	dir := t.TempDir()
	got, err := Enumerate(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestEnumerateSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.log"), 0755))
	touch(t, dir, "app.log")

	got, err := Enumerate(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "app.log")}, got)
}
