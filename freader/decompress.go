/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package freader

import (
	"compress/bzip2"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type kind int

const (
	kindPlain kind = iota
	kindGzip
	kindBzip2
	kindXz
	kindZstd
	kindTar
	kindTarGz
	kindTarBz2
	kindTarXz
	kindTarZst
	kindZip
)

// classify determines a source's archive/compression kind from its file
// name suffix, checking compound tar extensions before the plain
// single-file compressor suffixes they'd otherwise also match.
func classify(path string) kind {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return kindTarGz
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz"):
		return kindTarBz2
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return kindTarXz
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return kindTarZst
	case strings.HasSuffix(lower, ".tar"):
		return kindTar
	case strings.HasSuffix(lower, ".zip"):
		return kindZip
	case strings.HasSuffix(lower, ".gz"):
		return kindGzip
	case strings.HasSuffix(lower, ".bz2"):
		return kindBzip2
	case strings.HasSuffix(lower, ".xz"):
		return kindXz
	case strings.HasSuffix(lower, ".zst"):
		return kindZstd
	default:
		return kindPlain
	}
}

// isArchive reports whether k needs member-level iteration rather than a
// single logical stream.
func (k kind) isArchive() bool {
	switch k {
	case kindTar, kindTarGz, kindTarBz2, kindTarXz, kindTarZst, kindZip:
		return true
	}
	return false
}

// decompressLayer wraps r with the single-file decompressor for k, or
// returns r unchanged for kindPlain/kindTar. The zstd reader needs an
// explicit Close to release internal workers/buffers, so the result is
// always wrapped in a ReadCloser even when the underlying type (bzip2, xz,
// plain) has no Close of its own.
func decompressLayer(r io.Reader, k kind) (io.ReadCloser, error) {
	switch k {
	case kindGzip, kindTarGz:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("freader: gzip: %w", err)
		}
		return zr, nil
	case kindBzip2, kindTarBz2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case kindXz, kindTarXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("freader: xz: %w", err)
		}
		return io.NopCloser(xr), nil
	case kindZstd, kindTarZst:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("freader: zstd: %w", err)
		}
		return zstdCloser{zr}, nil
	default:
		return io.NopCloser(r), nil
	}
}

// zstdCloser adapts *zstd.Decoder's void Close() to the io.Closer shape the
// rest of this package expects.
type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Read(p []byte) (int, error) { return z.d.Read(p) }
func (z zstdCloser) Close() error                { z.d.Close(); return nil }
