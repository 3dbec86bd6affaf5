/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gravwell/logrep/client"
	"github.com/gravwell/logrep/config"
	"github.com/gravwell/logrep/engine"
	"github.com/gravwell/logrep/logsink"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, logDir, uuid string) *Server {
	t.Helper()
	confPath := filepath.Join(t.TempDir(), "logrep.conf")
	doc := `
uuid = "` + uuid + `"
file_path = "` + filepath.Join(logDir, "app.log") + `"
`
	require.NoError(t, os.WriteFile(confPath, []byte(doc), 0644))
	cache, err := config.NewCache(confPath)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	var discard discardWriter
	sink := logsink.New(discard, "logrep-test")
	t.Cleanup(func() { sink.Close() })
	return New(cache, sink)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestServerUnknownUUIDNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte("four\n"), 0644))
	srv := newTestServer(t, dir, "secret")

	req := httptest.NewRequest(http.MethodGet, "/wrong/search?pattern=four", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerWrongMethodNotFound(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir, "secret")

	req := httptest.NewRequest(http.MethodDelete, "/secret/search", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerEmptyPredicateBadRequest(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir, "secret")

	req := httptest.NewRequest(http.MethodGet, "/secret/search", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServerNegativeContextBadRequest(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir, "secret")

	req := httptest.NewRequest(http.MethodGet, "/secret/search?pattern=four&before_context=-1", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServerSuccessfulSearch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte("one\nfour\ntwo\n"), 0644))
	srv := newTestServer(t, dir, "secret")

	req := httptest.NewRequest(http.MethodGet, "/secret/search?pattern=four", nil)
	req.Header.Set("Accept-Encoding", "identity")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))
	require.Empty(t, w.Header().Get("Content-Encoding"))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `"p","four"`)
	require.Contains(t, string(body), `"l",`)
}

func TestServerCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var doc strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&doc, "filler line %d\n", i)
	}
	doc.WriteString("needle\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte(doc.String()), 0644))
	srv := newTestServer(t, dir, "secret")

	req := httptest.NewRequest(http.MethodGet, "/secret/search?pattern=needle&before_context=200", nil)
	// No Accept-Encoding override: the client's real default is zstd, and
	// the body here is well over MinimumSize, so the server must compress.
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "zstd", w.Header().Get("Content-Encoding"))
	require.Greater(t, w.Body.Len(), 0)

	rc, err := client.DecodeBody(w.Body, w.Header().Get("Content-Encoding"))
	require.NoError(t, err)
	defer rc.Close()

	var records []string
	onRecord := func(rec engine.Record) { records = append(records, rec.Payload) }
	require.NoError(t, client.ReadFrames(rc, onRecord, nil))
	require.Contains(t, records, "needle")
}

func TestServerPOSTJSONBody(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte("four\n"), 0644))
	srv := newTestServer(t, dir, "secret")

	req := httptest.NewRequest(http.MethodPost, "/secret/search", strings.NewReader(`{"pattern":"four"}`))
	req.Header.Set("Accept-Encoding", "identity")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
