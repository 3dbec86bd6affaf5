/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"testing"

	"github.com/gravwell/logrep/predicate"
	"github.com/stretchr/testify/require"
)

func TestHighlightNoMatches(t *testing.T) {
	term, err := predicate.Compile("nope")
	require.NoError(t, err)
	segs := Highlight("2025-11-06 15:52 INFO test 123 end", term)
	require.Len(t, segs, 1)
	require.False(t, segs[0].Matched)
}

func TestHighlightEmptyTerm(t *testing.T) {
	segs := Highlight("anything", predicate.Term{})
	require.Equal(t, []Segment{{Text: "anything"}}, segs)
}

func TestHighlightRegexAlternationSegments(t *testing.T) {
	term, err := predicate.Compile("(2025)|(INFO)|(123)")
	require.NoError(t, err)
	line := "2025-11-06 15:52 INFO test 123 end"
	segs := Highlight(line, term)

	var rebuilt string
	for _, s := range segs {
		rebuilt += s.Text
	}
	require.Equal(t, line, rebuilt)

	require.Equal(t, Segment{Text: "2025", Matched: true}, segs[0])
	var matchedTexts []string
	for _, s := range segs {
		if s.Matched {
			matchedTexts = append(matchedTexts, s.Text)
		}
	}
	require.Equal(t, []string{"2025", "INFO", "123"}, matchedTexts)
}

func TestHighlightLiteralWithEscapedMetachar(t *testing.T) {
	term, err := predicate.Compile(`5\.0`)
	require.NoError(t, err)
	require.Equal(t, predicate.Literal, term.Kind)

	line := "version 5.0 released, not 5x0"
	segs := Highlight(line, term)
	var matched int
	for _, s := range segs {
		if s.Matched {
			matched++
			require.Equal(t, "5.0", s.Text)
		}
	}
	require.Equal(t, 1, matched)
}
