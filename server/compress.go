/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import (
	"bytes"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// MinimumSize mirrors ndjson.MinimumSize: bodies at or above this many
// bytes are zstd-compressed before being written out.
const MinimumSize = 1000

// acceptsZstd reports whether the client's Accept-Encoding line permits
// zstd. Clients default to advertising zstd; an explicit "identity"
// disables compression.
func acceptsZstd(acceptEncoding string) bool {
	if acceptEncoding == "" {
		return true
	}
	for _, tok := range strings.Split(acceptEncoding, ",") {
		tok = strings.TrimSpace(strings.ToLower(tok))
		if tok == "identity" {
			return false
		}
		if tok == "zstd" || tok == "*" {
			return true
		}
	}
	return false
}

// maybeCompress returns body unchanged, or zstd-compressed, according to
// size and the client's accepted encodings. The second return value is
// the Content-Encoding header value to send, empty when uncompressed.
func maybeCompress(body []byte, acceptEncoding string) ([]byte, string) {
	if len(body) < MinimumSize || !acceptsZstd(acceptEncoding) {
		return body, ""
	}
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return body, ""
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return body, ""
	}
	if err := w.Close(); err != nil {
		return body, ""
	}
	return buf.Bytes(), "zstd"
}
