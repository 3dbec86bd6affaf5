/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import (
	dlog "log"
	"net/http"
	"time"

	"github.com/gravwell/logrep/logsink"
)

// Listen builds the *http.Server for addr (host:port) and blocks serving
// it, choosing TLS automatically when both certFile and keyFile are set.
// SSLKeyfilePassword, if the configured key is itself encrypted, is not
// honoured: the standard library's tls.LoadX509KeyPair has no support for
// encrypted PEM private keys.
func Listen(addr string, handler http.Handler, sink *logsink.Sink, certFile, keyFile string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          dlog.New(sinkWriter{sink}, "", 0),
	}
	if certFile != "" && keyFile != "" {
		return srv.ListenAndServeTLS(certFile, keyFile)
	}
	return srv.ListenAndServe()
}

// sinkWriter adapts *logsink.Sink to io.Writer so the stdlib *log.Logger
// used for http.Server's ErrorLog routes through the same channel as
// every other server log line.
type sinkWriter struct{ sink *logsink.Sink }

func (w sinkWriter) Write(p []byte) (int, error) {
	w.sink.Error(string(p))
	return len(p), nil
}
