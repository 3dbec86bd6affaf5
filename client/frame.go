/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package client implements the logrep CLI's side of the protocol: NDJSON
// frame consumption, grep-style rendering with before/after separators,
// header/footer template expansion, and terminal colour highlighting.
package client

import (
	"bufio"
	"io"

	"github.com/goccy/go-json"

	"github.com/gravwell/logrep/engine"
)

// ReadFrames decodes body as a sequence of newline-terminated NDJSON
// frames, calling onRecord for every record in arrival order. A malformed
// frame is logged via onError and skipped without aborting the stream.
func ReadFrames(body io.Reader, onRecord func(engine.Record), onError func(error)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw [][3]json.RawMessage
		if err := json.Unmarshal(line, &raw); err != nil {
			if onError != nil {
				onError(err)
			}
			continue
		}
		for _, triple := range raw {
			rec, err := decodeRecord(triple)
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onRecord(rec)
		}
	}
	return scanner.Err()
}

func decodeRecord(triple [3]json.RawMessage) (engine.Record, error) {
	var lineNum uint
	var kind, payload string
	if err := json.Unmarshal(triple[0], &lineNum); err != nil {
		return engine.Record{}, err
	}
	if err := json.Unmarshal(triple[1], &kind); err != nil {
		return engine.Record{}, err
	}
	if err := json.Unmarshal(triple[2], &payload); err != nil {
		return engine.Record{}, err
	}
	if len(kind) != 1 {
		return engine.Record{}, errInvalidKind
	}
	return engine.Record{LineNum: lineNum, Kind: engine.Kind(kind[0]), Payload: payload}, nil
}
