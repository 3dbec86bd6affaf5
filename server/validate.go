/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package server implements the HTTP request surface: profile resolution,
// request-field layering, predicate compilation, and zstd response
// compression above a size floor.
package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gravwell/logrep/config"
	"github.com/gravwell/logrep/engine"
	"github.com/gravwell/logrep/predicate"
)

// ValidationError carries the HTTP status a failed validation should
// produce, alongside a message naming the offending parameter.
type ValidationError struct {
	Status int
	Msg    string
}

func (e *ValidationError) Error() string { return e.Msg }

func badRequest(format string, a ...interface{}) error {
	return &ValidationError{Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, a...)}
}

func notFound(format string, a ...interface{}) error {
	return &ValidationError{Status: http.StatusNotFound, Msg: fmt.Sprintf(format, a...)}
}

// rawRequest is the query/body shape shared by GET and POST.
type rawRequest struct {
	Profile           string  `json:"profile"`
	DiscardBefore     *string `json:"discard_before"`
	BeforeContext     *int    `json:"before_context"`
	Pattern           *string `json:"pattern"`
	ExceptPattern     *string `json:"except_pattern"`
	AfterContext      *int    `json:"after_context"`
	DiscardAfter      *string `json:"discard_after"`
	FilesWithMatches  bool    `json:"files_with_matches"`
}

func rawRequestFromQuery(q url.Values) (rawRequest, error) {
	var rr rawRequest
	rr.Profile = q.Get("profile")
	if v := q.Get("discard_before"); q.Has("discard_before") {
		rr.DiscardBefore = &v
	}
	if v := q.Get("pattern"); q.Has("pattern") {
		rr.Pattern = &v
	}
	if v := q.Get("except_pattern"); q.Has("except_pattern") {
		rr.ExceptPattern = &v
	}
	if v := q.Get("discard_after"); q.Has("discard_after") {
		rr.DiscardAfter = &v
	}
	if q.Has("before_context") {
		n, err := strconv.Atoi(q.Get("before_context"))
		if err != nil {
			return rr, badRequest("before_context: %v", err)
		}
		rr.BeforeContext = &n
	}
	if q.Has("after_context") {
		n, err := strconv.Atoi(q.Get("after_context"))
		if err != nil {
			return rr, badRequest("after_context: %v", err)
		}
		rr.AfterContext = &n
	}
	if q.Has("files_with_matches") {
		b, err := strconv.ParseBool(q.Get("files_with_matches"))
		if err != nil {
			return rr, badRequest("files_with_matches: %v", err)
		}
		rr.FilesWithMatches = b
	}
	return rr, nil
}

func (rr rawRequest) override() config.RequestOverride {
	return config.RequestOverride{
		DiscardBefore: rr.DiscardBefore,
		BeforeContext: rr.BeforeContext,
		Pattern:       rr.Pattern,
		ExceptPattern: rr.ExceptPattern,
		AfterContext:  rr.AfterContext,
		DiscardAfter:  rr.DiscardAfter,
	}
}

// resolved is the fully validated outcome of one request: the settings
// used to resolve file_path/timezone, and the compiled engine.Args ready
// to drive a search.
type resolved struct {
	settings config.Settings
	args     engine.Args
}

// validate runs the C7 pipeline: resolve profile, layer request fields,
// compile terms, assert a non-empty predicate, reject negative context.
func validate(doc *config.Document, rr rawRequest) (resolved, error) {
	base, err := doc.Effective(rr.Profile)
	if err != nil {
		return resolved{}, notFound("unknown profile: %s", rr.Profile)
	}
	s := rr.override().Apply(base)

	pattern, err := predicate.Compile(s.Pattern)
	if err != nil {
		return resolved{}, badRequest("pattern: %v", err)
	}
	except, err := predicate.Compile(s.ExceptPattern)
	if err != nil {
		return resolved{}, badRequest("except_pattern: %v", err)
	}
	discardBefore, err := predicate.CompileDiscard(s.DiscardBefore, predicate.DiscardBeforeLineNumKey)
	if err != nil {
		return resolved{}, badRequest("discard_before: %v", err)
	}
	discardAfter, err := predicate.CompileDiscard(s.DiscardAfter, predicate.DiscardAfterLineNumKey)
	if err != nil {
		return resolved{}, badRequest("discard_after: %v", err)
	}

	if !s.HasPredicate() {
		return resolved{}, badRequest("at least one of discard_before, pattern, or discard_after must be set")
	}

	if s.BeforeContext < 0 {
		return resolved{}, badRequest("before_context must be >= 0")
	}
	if s.AfterContext < 0 {
		return resolved{}, badRequest("after_context must be >= 0")
	}

	return resolved{
		settings: s,
		args: engine.Args{
			BeforeContext:    s.BeforeContext,
			AfterContext:     s.AfterContext,
			Pattern:          pattern,
			Except:           except,
			DiscardBefore:    discardBefore,
			DiscardAfter:     discardAfter,
			FilesWithMatches: rr.FilesWithMatches,
		},
	}, nil
}
