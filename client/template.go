/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"strconv"
	"strings"
	"time"

	"github.com/gravwell/logrep/config"
)

// RenderTemplate expands {asctime} and {command} in tmpl. now is formatted
// in loc using the Go reference layout layout; cmd is the pre-built
// reconstructed command line. proc, if non-nil, is applied to each
// substituted value before insertion.
func RenderTemplate(tmpl string, now time.Time, loc *time.Location, layout, cmd string, proc config.TemplateProcessor) string {
	if proc == nil {
		proc = func(s string) string { return s }
	}
	asctime := proc(now.In(loc).Format(layout))
	command := proc(cmd)
	r := strings.NewReplacer("{asctime}", asctime, "{command}", command)
	return r.Replace(tmpl)
}

// DefaultAsctimeLayout mirrors Python's default asctime-ish rendering
// closely enough for grep-style headers without pulling in a strftime
// dependency purely for a constant format.
const DefaultAsctimeLayout = "2006-01-02 15:04:05"

// ReconstructCommand rebuilds the shell-quoted option-flag form of s, the
// effective settings driving a search, omitting every flag whose value is
// empty/zero. Used for the {command} template placeholder.
func ReconstructCommand(s config.Settings) string {
	var parts []string
	add := func(flag, value string) {
		if value == "" {
			return
		}
		parts = append(parts, flag, shellQuote(value))
	}
	add("--discard-before", s.DiscardBefore)
	if s.BeforeContext != 0 {
		parts = append(parts, "--before-context", strconv.Itoa(s.BeforeContext))
	}
	add("--pattern", s.Pattern)
	add("--except-pattern", s.ExceptPattern)
	if s.AfterContext != 0 {
		parts = append(parts, "--after-context", strconv.Itoa(s.AfterContext))
	}
	add("--discard-after", s.DiscardAfter)
	return strings.Join(parts, " ")
}

// shellQuote wraps v in single quotes, escaping any embedded single quote
// the POSIX-shell way: close the quote, emit an escaped quote, reopen it.
func shellQuote(v string) string {
	if v == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}
