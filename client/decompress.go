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
	"strings"

	"github.com/klauspost/compress/zstd"
)

// DecodeBody wraps body according to contentEncoding (the response's
// Content-Encoding header), undoing the server's C8 zstd compression so
// ReadFrames always sees plain NDJSON. An empty or "identity" encoding
// passes body through unchanged. The returned closer must be closed by the
// caller in addition to the original response body.
func DecodeBody(body io.Reader, contentEncoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return io.NopCloser(body), nil
	case "zstd":
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("client: zstd: %w", err)
		}
		return zstdCloser{zr}, nil
	default:
		return nil, fmt.Errorf("client: unsupported Content-Encoding %q", contentEncoding)
	}
}

// zstdCloser adapts *zstd.Decoder's void Close() to the io.Closer shape
// ReadFrames' caller expects, mirroring freader's decompressLayer.
type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Read(p []byte) (int, error) { return z.d.Read(p) }
func (z zstdCloser) Close() error                { z.d.Close(); return nil }
