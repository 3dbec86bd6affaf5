/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package ndjson batches engine.Records into size-bounded frames and
// encodes each frame as one compact JSON array followed by a newline,
// implementing the search engine's Sink interface.
package ndjson

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/gravwell/logrep/engine"
)

// MinimumSize is the payload-size threshold, in bytes, at or above which a
// pending frame is flushed rather than grown further.
const MinimumSize = 1000

// wireRecord is the [line_num, kind, payload] triple each Record encodes
// to. Kind is carried as a single-character string.
type wireRecord [3]interface{}

// Batcher accumulates Records and writes newline-delimited JSON frames to
// w once their accumulated payload size reaches MinimumSize, and again on
// Flush for whatever remains. It implements engine.Sink.
type Batcher struct {
	w           io.Writer
	buf         []wireRecord
	payloadSize int
	pendingName string
	havePending bool
}

// NewBatcher returns a Batcher writing frames to w.
func NewBatcher(w io.Writer) *Batcher {
	return &Batcher{w: w}
}

// OnOpen registers name as the pending file_path record for the next file.
// It is not written until a real record for that file is emitted, or
// AnnounceMatch forces it out with nothing else.
func (b *Batcher) OnOpen(name string) {
	b.pendingName = name
	b.havePending = true
}

// Emit flushes the pending file name (if any) ahead of rec, then appends
// rec to the current frame, flushing the frame once its size threshold is
// reached.
func (b *Batcher) Emit(rec engine.Record) {
	b.flushPendingName()
	b.append(rec.LineNum, string(rec.Kind), rec.Payload)
	b.maybeFlush()
}

// AnnounceMatch is the files-with-matches shortcut: it forces the pending
// file name out on its own, with no accompanying record.
func (b *Batcher) AnnounceMatch() {
	b.flushPendingName()
	b.maybeFlush()
}

func (b *Batcher) flushPendingName() {
	if !b.havePending {
		return
	}
	b.append(0, string(engine.KindFilePath), b.pendingName)
	b.havePending = false
	b.pendingName = ""
}

func (b *Batcher) append(lineNum uint, kind, payload string) {
	b.buf = append(b.buf, wireRecord{lineNum, kind, payload})
	b.payloadSize += len(payload)
}

func (b *Batcher) maybeFlush() {
	if b.payloadSize >= MinimumSize {
		b.Flush()
	}
}

// Flush writes whatever records are buffered as a single frame, even if
// the size threshold has not been reached, and resets the buffer. It is a
// no-op when nothing is buffered.
func (b *Batcher) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	enc := json.NewEncoder(b.w)
	if err := enc.Encode(b.buf); err != nil {
		return err
	}
	b.buf = b.buf[:0]
	b.payloadSize = 0
	return nil
}
