/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command logrepd is the logrep search daemon: it loads a settings
// document, exposes it as an HTTP search endpoint, and logs via a
// bounded, drop-oldest sink.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"runtime/debug"

	"github.com/gravwell/logrep/config"
	"github.com/gravwell/logrep/logsink"
	"github.com/gravwell/logrep/server"
)

var (
	confPath = flag.String("config", "/etc/logrep/logrep.conf", "Path to the settings document")
	appname  = flag.String("appname", "logrepd", "Application name reported in structured log entries")
	verbose  = flag.Bool("verbose", false, "Log a startup message with the listen address")
)

func main() {
	debug.SetTraceback("all")
	flag.Parse()

	cache, err := config.NewCache(*confPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v\n", *confPath, err)
	}
	defer cache.Close()

	sink := logsink.New(os.Stderr, *appname)
	defer sink.Close()

	doc, err := cache.Get()
	if err != nil {
		log.Fatalf("failed to read settings: %v\n", err)
	}
	top, err := doc.Effective("")
	if err != nil {
		log.Fatalf("failed to resolve top-level settings: %v\n", err)
	}
	if top.UUID == "" {
		log.Fatal("settings document must set uuid")
	}

	srv := server.New(cache, sink)

	addr := net.JoinHostPort(top.Host, fmt.Sprintf("%d", top.Port))
	if *verbose {
		sink.Info("starting logrepd", logsink.KV("addr", addr), logsink.KV("uuid", top.UUID))
	}
	if err := server.Listen(addr, srv, sink, top.SSLCertificate, top.SSLKeyfile); err != nil {
		sink.Critical("server exited", logsink.KVErr(err))
		log.Fatalf("server exited: %v\n", err)
	}
}
