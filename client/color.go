/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"os"

	"golang.org/x/term"
)

// ColorMode controls whether rendered output carries ANSI highlighting.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Enabled resolves mode against fd: auto enables colour iff fd is a
// terminal, always/never are unconditional.
func (m ColorMode) Enabled(fd uintptr) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return term.IsTerminal(int(fd))
	}
}

const (
	ansiMatchStart = "\x1b[1;31m"
	ansiReset      = "\x1b[0m"
)

// colorize renders segs with matched text wrapped in the highlight escape
// sequence, or plain text if enabled is false.
func colorize(segs []Segment, enabled bool) string {
	if !enabled {
		var out string
		for _, s := range segs {
			out += s.Text
		}
		return out
	}
	var out string
	for _, s := range segs {
		if s.Matched {
			out += ansiMatchStart + s.Text + ansiReset
		} else {
			out += s.Text
		}
	}
	return out
}

// stdoutFd is a seam for tests; production code always goes
// through os.Stdout.Fd().
var stdoutFd = func() uintptr { return os.Stdout.Fd() }
