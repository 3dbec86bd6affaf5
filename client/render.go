/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"fmt"
	"io"
	"time"

	"github.com/gravwell/logrep/config"
	"github.com/gravwell/logrep/engine"
	"github.com/gravwell/logrep/predicate"
)

// RenderOptions configures how a record stream is turned into grep-style
// text output.
type RenderOptions struct {
	Color        ColorMode
	Fd           uintptr // terminal fd Color.Enabled checks for "auto"
	LineNumbers  bool
	Pattern      predicate.Term // drives highlighting on "pattern" records
	Settings     config.Settings
	TemplateZone *time.Location
}

// Renderer consumes engine.Records in arrival order and writes grep-style
// output to w, tracking per-file header/footer and separator state across
// calls to Render.
type Renderer struct {
	w    io.Writer
	opts RenderOptions
	proc config.TemplateProcessor

	colorEnabled  bool
	prevLine      uint
	havePrevLine  bool
	footerPending bool
}

// NewRenderer builds a Renderer writing to w. proc is applied to template
// placeholder values (nil means identity).
func NewRenderer(w io.Writer, opts RenderOptions, proc config.TemplateProcessor) *Renderer {
	if proc == nil {
		proc = func(s string) string { return s }
	}
	return &Renderer{
		w:            w,
		opts:         opts,
		proc:         proc,
		colorEnabled: opts.Color.Enabled(opts.Fd),
	}
}

// Render processes one record, writing whatever output it implies.
func (r *Renderer) Render(rec engine.Record) {
	if rec.Kind == engine.KindFilePath {
		r.onFilePath(rec)
		return
	}

	if r.havePrevLine && rec.LineNum != r.prevLine+1 && r.prevLine > 0 {
		fmt.Fprintln(r.w, "--")
	}

	sep := "-"
	if rec.Kind == engine.KindPattern {
		sep = ":"
	}

	text := rec.Payload
	if r.opts.Color != "" && r.colorEnabled && rec.Kind == engine.KindPattern {
		text = colorize(Highlight(rec.Payload, r.opts.Pattern), true)
	}

	if r.opts.LineNumbers {
		fmt.Fprintf(r.w, "%d%s%s\n", rec.LineNum, sep, text)
	} else {
		fmt.Fprintln(r.w, text)
	}

	r.prevLine = rec.LineNum
	r.havePrevLine = true
}

// onFilePath flushes any pending footer, emits the header for the new
// file, and resets separator tracking.
func (r *Renderer) onFilePath(rec engine.Record) {
	if r.footerPending && r.opts.Settings.FooterTemplate != "" {
		r.writeTemplate(r.opts.Settings.FooterTemplate)
	}
	r.footerPending = false
	r.havePrevLine = false
	r.prevLine = 0

	if r.opts.Settings.HeaderTemplate != "" {
		r.writeTemplate(r.opts.Settings.HeaderTemplate)
	}
	fmt.Fprintln(r.w, rec.Payload+":")
	r.footerPending = true
}

// Close flushes a trailing pending footer at end of stream, if any.
func (r *Renderer) Close() {
	if r.footerPending && r.opts.Settings.FooterTemplate != "" {
		r.writeTemplate(r.opts.Settings.FooterTemplate)
	}
	r.footerPending = false
}

func (r *Renderer) writeTemplate(tmpl string) {
	loc := r.opts.TemplateZone
	if loc == nil {
		loc = time.Local
	}
	cmd := ReconstructCommand(r.opts.Settings)
	out := RenderTemplate(tmpl, renderNow(), loc, DefaultAsctimeLayout, cmd, r.proc)
	fmt.Fprintln(r.w, out)
}

// renderNow is a seam so tests can pin the clock; production always uses
// the real time since templates only ever render at output time, never
// as part of a cached or replayed computation.
var renderNow = time.Now
