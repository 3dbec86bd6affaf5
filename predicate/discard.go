/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

// Reserved key prefixes recognized as the numeric line-boundary shortcut,
// bypassing text scanning entirely in favor of a raw 1-based line count.
const (
	DiscardBeforeLineNumKey = "discard_before_line_num"
	DiscardAfterLineNumKey  = "discard_after_line_num"
)

// Discard is a compiled discard_before/discard_after boundary: either a
// 1-based line number, or a Term evaluated against each line's text.
type Discard struct {
	HasLineNum bool
	LineNum    int
	Term       Term
}

// Empty reports whether neither a line number nor a term was configured.
func (d Discard) Empty() bool {
	return !d.HasLineNum && d.Term.Empty()
}

// CompileDiscard compiles raw, a discard_before or discard_after value, which
// is either a reserved "discard_before_line_num=N" / "discard_after_line_num=N"
// form (key chosen by the caller) or ordinary pattern text handed to Compile.
func CompileDiscard(raw, reservedKey string) (Discard, error) {
	if raw == "" {
		return Discard{}, nil
	}
	if n, ok, err := parseLineNumForm(raw, reservedKey); err != nil {
		return Discard{}, err
	} else if ok {
		return Discard{HasLineNum: true, LineNum: n}, nil
	}
	t, err := Compile(raw)
	if err != nil {
		return Discard{}, err
	}
	return Discard{Term: t}, nil
}

// parseLineNumForm recognizes "<reservedKey>=<N>", N a positive integer.
// Any other prefix, including a bare mention of reservedKey without the
// "=N" suffix, is left for Compile to treat as ordinary pattern text.
func parseLineNumForm(raw, reservedKey string) (int, bool, error) {
	prefix := reservedKey + "="
	if !strings.HasPrefix(raw, prefix) {
		return 0, false, nil
	}
	rest := strings.TrimPrefix(raw, prefix)
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false, fmt.Errorf("%s: invalid line number %q: %w", reservedKey, rest, err)
	}
	if n < 1 {
		return 0, false, fmt.Errorf("%s: line number must be >= 1, got %d", reservedKey, n)
	}
	return n, true, nil
}
