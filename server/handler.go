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
	"encoding/json"
	"net/http"
	"time"

	"github.com/gravwell/logrep/config"
	"github.com/gravwell/logrep/engine"
	"github.com/gravwell/logrep/logsink"
	"github.com/gravwell/logrep/ndjson"
	"github.com/gravwell/logrep/pathtmpl"
)

// Server is the HTTP request surface over a config.Cache. Everything
// lives under /<uuid>/search, the uuid drawn from the top-level Settings
// at request time so a config reload can rotate the instance secret.
type Server struct {
	cache *config.Cache
	sink  *logsink.Sink
}

// New wires cache and sink into a Server ready to be handed to
// http.ListenAndServe (or ...TLS).
func New(cache *config.Cache, sink *logsink.Sink) *Server {
	return &Server{cache: cache, sink: sink}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc, err := s.cache.Get()
	if err != nil {
		s.sink.Error("config load failed", logsink.KVErr(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	top, err := doc.Effective("")
	if err != nil {
		s.sink.Error("top-level settings unavailable", logsink.KVErr(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if r.URL.Path != "/"+top.UUID+"/search" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	rr, err := s.parseRequest(r)
	if err != nil {
		s.writeValidationError(w, err)
		return
	}

	res, err := validate(doc, rr)
	if err != nil {
		s.writeValidationError(w, err)
		return
	}

	s.runSearch(w, r, res)
}

func (s *Server) parseRequest(r *http.Request) (rawRequest, error) {
	if r.Method == http.MethodGet {
		return rawRequestFromQuery(r.URL.Query())
	}
	var rr rawRequest
	if err := json.NewDecoder(r.Body).Decode(&rr); err != nil {
		return rawRequest{}, badRequest("malformed JSON body: %v", err)
	}
	return rr, nil
}

func (s *Server) writeValidationError(w http.ResponseWriter, err error) {
	if ve, ok := err.(*ValidationError); ok {
		http.Error(w, ve.Msg, ve.Status)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, res resolved) {
	loc, warn := pathtmpl.ResolveTimezone(res.settings.Timezone)
	if warn != "" {
		s.sink.Warn(warn)
	}
	path, err := pathtmpl.Expand(res.settings.FilePath, time.Now(), loc)
	if err != nil {
		s.sink.Error("file_path template expansion failed", logsink.KVErr(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	batcher := ndjson.NewBatcher(&buf)
	onFileError := func(name string, ferr error) {
		s.sink.Error("file scan error", logsink.KV("file", name), logsink.KVErr(ferr))
	}

	ctx := r.Context()
	done := make(chan error, 1)
	go func() {
		done <- engine.Search(path, res.args, batcher, onFileError)
	}()

	select {
	case <-ctx.Done():
		// client disconnected; the search worker finishes on its own time
		// since it owns the file handles, but the response is abandoned.
		return
	case err := <-done:
		if err != nil {
			s.sink.Error("search failed", logsink.KVErr(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	if err := batcher.Flush(); err != nil {
		s.sink.Error("frame flush failed", logsink.KVErr(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	body, encoding := maybeCompress(buf.Bytes(), r.Header.Get("Accept-Encoding"))
	w.Header().Set("Content-Type", "application/x-ndjson")
	if encoding != "" {
		w.Header().Set("Content-Encoding", encoding)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
