/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package freader

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
)

// OnOpen is invoked once per logical stream, with its display name, the
// moment the stream is opened -- including on each re-open of the file
// that backs an archive during Next().
type OnOpen func(name string)

// Source walks one enumerated path, yielding every logical stream it
// contains: one stream for a plain or singly-compressed file, or one
// stream per regular-file member for a tar or zip archive.
type Source struct {
	path    string
	k       kind
	onOpen  OnOpen
	members []tarMember // listed by Open for tar kinds
	zr      *zip.ReadCloser
	zIdx    int
	done    bool
	single  bool
}

type tarMember struct {
	name string
	idx  int // ordinal position among regular-file headers
}

// Open prepares iteration over path without yet producing any stream.
func Open(path string, onOpen OnOpen) (*Source, error) {
	k := classify(path)
	s := &Source{path: path, k: k, onOpen: onOpen}
	if !k.isArchive() {
		s.single = true
		return s, nil
	}
	if k == kindZip {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, fmt.Errorf("freader: zip: %w", err)
		}
		s.zr = zr
		return s, nil
	}
	members, err := listTarMembers(path, k)
	if err != nil {
		return nil, err
	}
	s.members = members
	return s, nil
}

// Name is the path this Source was opened from.
func (s *Source) Name() string { return s.path }

// Close releases any archive handle held open across Next() calls.
func (s *Source) Close() error {
	if s.zr != nil {
		return s.zr.Close()
	}
	return nil
}

// Next returns the next logical stream, or ok=false once every member (or
// the single file) has been produced.
func (s *Source) Next() (stream *Stream, ok bool, err error) {
	if s.done {
		return nil, false, nil
	}
	if s.single {
		s.done = true
		name := s.path
		st, err := newStream(name, singleFileOpener(s.path, s.k))
		if err != nil {
			return nil, false, err
		}
		if s.onOpen != nil {
			s.onOpen(name)
		}
		return st, true, nil
	}
	if s.zr != nil {
		for s.zIdx < len(s.zr.File) {
			f := s.zr.File[s.zIdx]
			s.zIdx++
			if f.FileInfo().IsDir() {
				continue
			}
			name := fmt.Sprintf("%s#%s", s.path, f.Name)
			st, err := newStream(name, zipMemberOpener(f))
			if err != nil {
				return nil, false, err
			}
			if s.onOpen != nil {
				s.onOpen(name)
			}
			return st, true, nil
		}
		s.done = true
		return nil, false, nil
	}
	if len(s.members) == 0 {
		s.done = true
		return nil, false, nil
	}
	m := s.members[0]
	s.members = s.members[1:]
	name := fmt.Sprintf("%s#%s", s.path, m.name)
	st, err := newStream(name, tarMemberOpener(s.path, s.k, m.idx))
	if err != nil {
		return nil, false, err
	}
	if s.onOpen != nil {
		s.onOpen(name)
	}
	if len(s.members) == 0 {
		s.done = true
	}
	return st, true, nil
}

func singleFileOpener(path string, k kind) opener {
	return func() (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		dc, err := decompressLayer(f, k)
		if err != nil {
			f.Close()
			return nil, err
		}
		return multiCloser{primary: dc, also: f}, nil
	}
}

func zipMemberOpener(f *zip.File) opener {
	return func() (io.ReadCloser, error) {
		return f.Open()
	}
}

// tarMemberOpener rebuilds the full decompression chain from the start of
// the underlying file and skips forward to the idx'th regular-file header
// every time it is called -- on first open and on every Rewind -- because
// tar provides no generic random-access seek.
func tarMemberOpener(path string, k kind, idx int) opener {
	return func() (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		dc, err := decompressLayer(f, k)
		if err != nil {
			f.Close()
			return nil, err
		}
		tr := tar.NewReader(dc)
		ordinal := 0
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				dc.Close()
				f.Close()
				return nil, fmt.Errorf("freader: tar member %d not found in %s", idx, path)
			}
			if err != nil {
				dc.Close()
				f.Close()
				return nil, err
			}
			if !hdr.FileInfo().Mode().IsRegular() {
				continue
			}
			if ordinal == idx {
				return multiCloser{primary: io.NopCloser(tr), also: dc, also2: f}, nil
			}
			ordinal++
		}
	}
}

func listTarMembers(path string, k kind) ([]tarMember, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dc, err := decompressLayer(f, k)
	if err != nil {
		return nil, err
	}
	defer dc.Close()

	tr := tar.NewReader(dc)
	var members []tarMember
	ordinal := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// a malformed member truncates the archive from this point on;
			// whatever was already found is still usable.
			break
		}
		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}
		members = append(members, tarMember{name: hdr.Name, idx: ordinal})
		ordinal++
	}
	return members, nil
}

// multiCloser closes up to three layers (innermost decompressor first, then
// any wrapping layers) in the order a tar/gzip-over-file chain needs torn
// down.
type multiCloser struct {
	primary io.Reader
	also    io.Closer
	also2   io.Closer
}

func (m multiCloser) Read(p []byte) (int, error) { return m.primary.Read(p) }

func (m multiCloser) Close() error {
	var firstErr error
	if c, ok := m.primary.(io.Closer); ok {
		if err := c.Close(); err != nil {
			firstErr = err
		}
	}
	if m.also != nil {
		if err := m.also.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.also2 != nil {
		if err := m.also2.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
