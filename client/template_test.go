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
	"time"

	"github.com/gravwell/logrep/config"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplateSubstitutesPlaceholders(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 15, 0, 0, time.UTC)
	out := RenderTemplate("[{asctime}] ran: {command}", now, time.UTC, DefaultAsctimeLayout, "--pattern 'four'", nil)
	require.Equal(t, "[2026-07-30 09:15:00] ran: --pattern 'four'", out)
}

func TestRenderTemplateAppliesProcessor(t *testing.T) {
	now := time.Date(2026, 7, 30, 9, 15, 0, 0, time.UTC)
	upper, err := config.ResolveTemplateProcessor("upper")
	require.NoError(t, err)
	out := RenderTemplate("{command}", now, time.UTC, DefaultAsctimeLayout, "hello", upper)
	require.Equal(t, "HELLO", out)
}

func TestReconstructCommandOmitsEmptyFields(t *testing.T) {
	s := config.Settings{Pattern: "four"}
	require.Equal(t, "--pattern 'four'", ReconstructCommand(s))
}

func TestReconstructCommandIncludesContextSizes(t *testing.T) {
	s := config.Settings{Pattern: "four", BeforeContext: 2, AfterContext: 1}
	got := ReconstructCommand(s)
	require.Contains(t, got, "--before-context 2")
	require.Contains(t, got, "--after-context 1")
	require.Contains(t, got, "--pattern 'four'")
}

func TestShellQuoteEscapesEmbeddedQuote(t *testing.T) {
	require.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
