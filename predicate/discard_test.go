/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package predicate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileDiscardEmpty(t *testing.T) {
	d, err := CompileDiscard("", DiscardBeforeLineNumKey)
	require.NoError(t, err)
	require.True(t, d.Empty())
}

func TestCompileDiscardText(t *testing.T) {
	d, err := CompileDiscard("11", DiscardBeforeLineNumKey)
	require.NoError(t, err)
	require.False(t, d.HasLineNum)
	require.Equal(t, Literal, d.Term.Kind)
	require.True(t, d.Term.MatchString("count is 11 now"))
}

func TestCompileDiscardLineNum(t *testing.T) {
	d, err := CompileDiscard("discard_before_line_num=19", DiscardBeforeLineNumKey)
	require.NoError(t, err)
	require.True(t, d.HasLineNum)
	require.Equal(t, 19, d.LineNum)
	require.True(t, d.Term.Empty())
}

func TestCompileDiscardLineNumWrongKeyFallsBackToText(t *testing.T) {
	// a discard_after value that happens to look like the discard_before
	// reserved form is just ordinary text when checked against the
	// discard_after key instead.
	d, err := CompileDiscard("discard_before_line_num=19", DiscardAfterLineNumKey)
	require.NoError(t, err)
	require.False(t, d.HasLineNum)
	require.Equal(t, Literal, d.Term.Kind)
	require.True(t, d.Term.MatchString("prefix discard_before_line_num=19 suffix"))
}

func TestCompileDiscardLineNumInvalidNumber(t *testing.T) {
	_, err := CompileDiscard("discard_after_line_num=abc", DiscardAfterLineNumKey)
	require.Error(t, err)
}

func TestCompileDiscardLineNumZeroRejected(t *testing.T) {
	_, err := CompileDiscard("discard_after_line_num=0", DiscardAfterLineNumKey)
	require.Error(t, err)
}
