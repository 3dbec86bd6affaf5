/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package pathtmpl

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResolveTimezone turns a configured timezone string into a *time.Location.
// Three forms are accepted, tried in order:
//
//   - empty, which means local time;
//   - a literal offset, optionally "UTC"-prefixed, "±HH:MM", where the sign
//     of HH also governs the sign of MM regardless of how MM is written;
//   - an IANA zone name ("Australia/Sydney"), resolved via time.LoadLocation,
//     the same call the teacher's timegrinder.SetTimezone makes.
//
// A malformed offset (bad digits, out-of-range values) returns a warning
// string describing the problem and falls back to time.Local rather than
// failing the whole expansion.
func ResolveTimezone(tz string) (loc *time.Location, warning string) {
	if tz == "" {
		return time.Local, ""
	}
	if loc, ok := parseOffset(tz); ok {
		return loc, ""
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, ""
	}
	return time.Local, fmt.Sprintf("pathtmpl: malformed timezone %q, falling back to local time", tz)
}

// parseOffset recognizes "UTC±HH:MM" and bare "±HH:MM". It reports ok=false
// for anything else, including a plain IANA name, so the caller can fall
// through to time.LoadLocation.
func parseOffset(tz string) (*time.Location, bool) {
	s := strings.TrimPrefix(tz, "UTC")
	if len(s) == 0 || (s[0] != '+' && s[0] != '-') {
		return nil, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	s = s[1:]
	hh, mm, ok := splitHHMM(s)
	if !ok {
		return nil, false
	}
	// the sign of HH drives the sign of MM as well, regardless of how the
	// minute component was written in the source string.
	offsetSeconds := sign * (hh*3600 + mm*60)
	name := fmt.Sprintf("UTC%+03d:%02d", sign*hh, mm)
	return time.FixedZone(name, offsetSeconds), true
}

func splitHHMM(s string) (hh, mm int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
