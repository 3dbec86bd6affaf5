/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package predicate classifies and compiles the user-supplied match
// strings (pattern, except_pattern, discard_before, discard_after) into
// either a literal substring test or a compiled regular expression.
package predicate

import (
	"regexp"
	"strings"
)

type Kind int

const (
	Absent Kind = iota
	Literal
	Regex
)

const metachars = `()[]{}.*+?^$|`
const specialEscapes = `AbdDsSwWzZ`

// Term is one compiled predicate: either absent, a literal substring, or a
// compiled regular expression.
type Term struct {
	Kind    Kind
	literal string
	re      *regexp.Regexp
	raw     string
}

// Empty reports whether the term was never set.
func (t Term) Empty() bool {
	return t.Kind == Absent
}

// String returns the original, uncompiled input.
func (t Term) String() string {
	return t.raw
}

// MatchString reports whether the term fires against s.
func (t Term) MatchString(s string) bool {
	switch t.Kind {
	case Literal:
		return strings.Contains(s, t.literal)
	case Regex:
		return t.re.MatchString(s)
	default:
		return false
	}
}

// FindAllStringIndex returns every non-overlapping match of the term in s,
// in the same shape as (*regexp.Regexp).FindAllStringIndex, so callers
// (the client highlighter) can walk matches uniformly regardless of
// whether the term is literal or a regex.
func (t Term) FindAllStringIndex(s string) [][]int {
	switch t.Kind {
	case Literal:
		if t.literal == "" {
			return nil
		}
		var out [][]int
		off := 0
		for {
			i := strings.Index(s[off:], t.literal)
			if i < 0 {
				break
			}
			start := off + i
			end := start + len(t.literal)
			out = append(out, []int{start, end})
			off = end
		}
		return out
	case Regex:
		return t.re.FindAllStringIndex(s, -1)
	default:
		return nil
	}
}

// Compile classifies raw per the complexity rule -- a string is a regex
// iff it contains an unescaped metacharacter from "(){}[].*+?^$|" or an
// escape of one of A b d D s S w W z Z; otherwise it is a literal
// substring with any "\X" (X a metacharacter) collapsed to X.
func Compile(raw string) (Term, error) {
	if raw == "" {
		return Term{Kind: Absent}, nil
	}
	if isComplex(raw) {
		re, err := regexp.Compile(raw)
		if err != nil {
			return Term{}, err
		}
		return Term{Kind: Regex, re: re, raw: raw}, nil
	}
	return Term{Kind: Literal, literal: unescapeLiteral(raw), raw: raw}, nil
}

func isComplex(s string) bool {
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\\' && i+1 < len(rs) {
			n := rs[i+1]
			if strings.ContainsRune(specialEscapes, n) {
				return true
			}
			i++ // skip the escaped character entirely, it cannot itself trigger complexity
			continue
		}
		if strings.ContainsRune(metachars, r) {
			return true
		}
	}
	return false
}

// unescapeLiteral collapses "\X" to "X" for every metacharacter X; any
// other backslash sequence passes through untouched.
func unescapeLiteral(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\\' && i+1 < len(rs) {
			n := rs[i+1]
			if strings.ContainsRune(metachars, n) {
				b.WriteRune(n)
				i++
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
