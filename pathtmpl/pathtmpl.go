/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package pathtmpl expands the file_path templating syntax: zero or more
// "<FMT>" or "<FMT|weeks=n,days=n,hours=n,minutes=n,seconds=n>" tokens,
// each replaced by (now + delta).Strftime(FMT) evaluated in a resolved
// timezone. The expanded string is used both as a literal file name
// candidate and as a glob pattern against the directory it lives in.
package pathtmpl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Expand substitutes every "<FMT>"/"<FMT|Δ>" token in raw, evaluating each
// at instant now shifted by its own delta (if any) and formatted in loc.
func Expand(raw string, now time.Time, loc *time.Location) (string, error) {
	var b strings.Builder
	rs := []rune(raw)
	for i := 0; i < len(rs); {
		if rs[i] != '<' {
			b.WriteRune(rs[i])
			i++
			continue
		}
		end := indexRune(rs, i+1, '>')
		if end < 0 {
			// unterminated token: pass the rest through verbatim
			b.WriteString(string(rs[i:]))
			break
		}
		token := string(rs[i+1 : end])
		expanded, err := expandToken(token, now, loc)
		if err != nil {
			return "", err
		}
		b.WriteString(expanded)
		i = end + 1
	}
	return b.String(), nil
}

func indexRune(rs []rune, from int, target rune) int {
	for i := from; i < len(rs); i++ {
		if rs[i] == target {
			return i
		}
	}
	return -1
}

// expandToken handles the body of a single <...> token: FMT, or FMT|deltas.
func expandToken(token string, now time.Time, loc *time.Location) (string, error) {
	format := token
	var delta time.Duration
	if idx := strings.IndexByte(token, '|'); idx >= 0 {
		format = token[:idx]
		d, err := parseDelta(token[idx+1:])
		if err != nil {
			return "", err
		}
		delta = d
	}
	f, err := strftime.New(format)
	if err != nil {
		return "", fmt.Errorf("pathtmpl: invalid strftime format %q: %w", format, err)
	}
	return f.FormatString(now.Add(delta).In(loc)), nil
}

// parseDelta parses a comma-separated list of "unit=n" pairs, n possibly
// negative, and sums them into a single signed duration.
func parseDelta(spec string) (time.Duration, error) {
	var total time.Duration
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return 0, fmt.Errorf("pathtmpl: malformed delta term %q", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return 0, fmt.Errorf("pathtmpl: malformed delta value %q: %w", part, err)
		}
		unit := strings.TrimSpace(kv[0])
		var per time.Duration
		switch unit {
		case "weeks":
			per = 7 * 24 * time.Hour
		case "days":
			per = 24 * time.Hour
		case "hours":
			per = time.Hour
		case "minutes":
			per = time.Minute
		case "seconds":
			per = time.Second
		default:
			return 0, fmt.Errorf("pathtmpl: unknown delta unit %q", unit)
		}
		total += time.Duration(n) * per
	}
	return total, nil
}
