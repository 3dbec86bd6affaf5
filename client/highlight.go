/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import "github.com/gravwell/logrep/predicate"

// Segment is one piece of a highlighted line: either matched or plain
// text, in left-to-right order with no gaps or overlaps.
type Segment struct {
	Text    string
	Matched bool
}

// Highlight walks term's matches over line left-to-right, emitting the
// text between consecutive matches as plain segments and each match
// itself as a matched segment, with any trailing unmatched suffix
// appended last. Used for both the literal and regex cases: Term's
// FindAllStringIndex returns the same shape either way.
func Highlight(line string, term predicate.Term) []Segment {
	if term.Empty() {
		return []Segment{{Text: line}}
	}
	idx := term.FindAllStringIndex(line)
	if len(idx) == 0 {
		return []Segment{{Text: line}}
	}
	var segs []Segment
	pos := 0
	for _, m := range idx {
		if m[0] > pos {
			segs = append(segs, Segment{Text: line[pos:m[0]]})
		}
		segs = append(segs, Segment{Text: line[m[0]:m[1]], Matched: true})
		pos = m[1]
	}
	if pos < len(line) {
		segs = append(segs, Segment{Text: line[pos:]})
	}
	return segs
}
