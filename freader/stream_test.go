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

func TestReadLineEscapesInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.log")
	// 0xff is never valid as a UTF-8 lead byte.
	require.NoError(t, os.WriteFile(path, []byte("ok \xff end\n"), 0644))

	src, err := Open(path, func(string) {})
	require.NoError(t, err)
	defer src.Close()

	st, ok, err := src.Next()
	require.NoError(t, err)
	require.True(t, ok)

	line, ok, err := st.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `ok \xff end`, line)
}

func TestReadLinePreservesValidMultibyteText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "utf8.log")
	require.NoError(t, os.WriteFile(path, []byte("caf\xc3\xa9\n"), 0644))

	src, err := Open(path, func(string) {})
	require.NoError(t, err)
	defer src.Close()

	st, ok, err := src.Next()
	require.NoError(t, err)
	require.True(t, ok)

	line, ok, err := st.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "café", line)
}

func TestSeekToEndDiscardsRemainder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.log")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0644))

	src, err := Open(path, func(string) {})
	require.NoError(t, err)
	defer src.Close()

	st, ok, err := src.Next()
	require.NoError(t, err)
	require.True(t, ok)

	line, ok, err := st.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", line)

	require.NoError(t, st.SeekToEnd())
	_, ok, err = st.ReadLine()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, st.Rewind())
	line, ok, err = st.ReadLine()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", line)
}
