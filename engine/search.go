/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package engine

import (
	"github.com/gravwell/logrep/freader"
	"github.com/gravwell/logrep/predicate"
)

// Args is the validated, compiled form of one request's search criteria.
type Args struct {
	BeforeContext    int
	AfterContext     int
	Pattern          predicate.Term
	Except           predicate.Term
	DiscardBefore    predicate.Discard
	DiscardAfter     predicate.Discard
	FilesWithMatches bool
}

// Search enumerates path (which may carry a glob leaf) and runs the state
// machine over every logical stream it yields, in Enumerate order. A
// single file's I/O error is logged by the caller via onFileError and does
// not abort the remaining files; onFileError may be nil.
func Search(path string, args Args, sink Sink, onFileError func(name string, err error)) error {
	paths, err := freader.Enumerate(path)
	if err != nil {
		return err
	}
	for _, p := range paths {
		src, err := freader.Open(p, sink.OnOpen)
		if err != nil {
			if onFileError != nil {
				onFileError(p, err)
			}
			continue
		}
		runSource(src, args, sink, onFileError)
		src.Close()
	}
	return nil
}

func runSource(src *freader.Source, args Args, sink Sink, onFileError func(name string, err error)) {
	for {
		st, ok, err := src.Next()
		if err != nil {
			if onFileError != nil {
				onFileError(src.Name(), err)
			}
			return
		}
		if !ok {
			return
		}
		if err := searchStream(st, args, sink); err != nil && onFileError != nil {
			onFileError(st.Name(), err)
		}
		st.Close()
	}
}

// searchStream runs the per-file procedure: an optional discard_before
// first pass, then the single main pass that produces before-context,
// pattern, after-context, and discard_after records.
func searchStream(st *freader.Stream, args Args, sink Sink) error {
	dbLine, err := resolveDiscardBeforeLine(st, args.DiscardBefore)
	if err != nil {
		return err
	}

	beforeBuf := newRingBuffer(args.BeforeContext)
	afterRemaining := 0
	inAfterWindow := false

	var lineNum uint
	for {
		line, ok, err := st.ReadLine()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		lineNum++

		if dbLine > 0 && lineNum < uint(dbLine) {
			continue
		}
		if dbLine > 0 && lineNum == uint(dbLine) {
			sink.Emit(Record{LineNum: lineNum, Kind: KindDiscardBefore, Payload: line})
		}

		patternFires := !args.Pattern.Empty() && args.Pattern.MatchString(line)
		exceptFires := !args.Except.Empty() && args.Except.MatchString(line)
		isMatch := patternFires && !exceptFires

		if isMatch && args.FilesWithMatches {
			sink.AnnounceMatch()
			return st.SeekToEnd()
		} else if isMatch {
			for _, pending := range beforeBuf.drain() {
				sink.Emit(Record{LineNum: pending.lineNum, Kind: KindBeforeContext, Payload: pending.text})
			}
			sink.Emit(Record{LineNum: lineNum, Kind: KindPattern, Payload: line})
			afterRemaining = args.AfterContext
			inAfterWindow = afterRemaining > 0
		} else {
			beforeBuf.push(lineNum, line)
			if inAfterWindow {
				sink.Emit(Record{LineNum: lineNum, Kind: KindAfterContext, Payload: line})
				afterRemaining--
				if afterRemaining <= 0 {
					inAfterWindow = false
				}
			}
		}

		fires, err := discardAfterFires(args.DiscardAfter, lineNum, line)
		if err != nil {
			return err
		}
		if fires {
			sink.Emit(Record{LineNum: lineNum, Kind: KindDiscardAfter, Payload: line})
			return nil
		}
	}
	return nil
}

// resolveDiscardBeforeLine returns the 1-indexed boundary line for
// discard_before, or 0 if none applies. The reserved numeric form is used
// directly with no scan; a text/regex form requires a full first pass to
// find its *last* occurrence, after which the stream is rewound so the
// main pass starts from the beginning again.
func resolveDiscardBeforeLine(st *freader.Stream, d predicate.Discard) (int, error) {
	if d.HasLineNum {
		return d.LineNum, nil
	}
	if d.Term.Empty() {
		return 0, nil
	}
	var last, lineNum int
	for {
		line, ok, err := st.ReadLine()
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		lineNum++
		if d.Term.MatchString(line) {
			last = lineNum
		}
	}
	if err := st.Rewind(); err != nil {
		return 0, err
	}
	return last, nil
}

func discardAfterFires(d predicate.Discard, lineNum uint, line string) (bool, error) {
	if d.HasLineNum {
		return uint(d.LineNum) == lineNum, nil
	}
	if d.Term.Empty() {
		return false, nil
	}
	return d.Term.MatchString(line), nil
}
