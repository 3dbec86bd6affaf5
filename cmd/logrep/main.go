/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command logrep is the search client: it resolves effective settings
// from an optional local configuration section and command-line flags,
// issues the search request, and renders the NDJSON response as
// grep-style text.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/gravwell/logrep/client"
	"github.com/gravwell/logrep/config"
	"github.com/gravwell/logrep/predicate"
)

var (
	confPath = flag.String("S", "", "Path to a local settings document (section via -P)")
	section  = flag.String("section", "", "Alias of -S")
	profile  = flag.String("P", "", "Client config section / server profile name")
	profileL = flag.String("profile", "", "Alias of -P")
	srvURL   = flag.String("url", "https://127.0.0.1:4770", "Base URL of the logrep server")
	verify   = flag.Bool("verify", true, "Verify the server's TLS certificate")

	discardBefore  = flag.String("D", "", "Discard every line up to and including the last occurrence of this pattern")
	discardBeforeL = flag.String("discard-before", "", "Alias of -D")
	context        = flag.Int("C", -1, "Lines of context before and after a match")
	beforeContext  = flag.Int("B", -1, "Lines of context before a match")
	beforeContextL = flag.Int("before-context", -1, "Alias of -B")
	pattern        = flag.String("e", "", "Pattern to search for")
	patternL       = flag.String("pattern", "", "Alias of -e")
	exceptPattern  = flag.String("E", "", "Pattern that suppresses an otherwise matching line")
	exceptL        = flag.String("except-pattern", "", "Alias of -E")
	afterContext   = flag.Int("A", -1, "Lines of context after a match")
	afterContextL  = flag.Int("after-context", -1, "Alias of -A")
	discardAfter   = flag.String("d", "", "Stop scanning after this pattern is seen")
	discardAfterL  = flag.String("discard-after", "", "Alias of -d")
	lineNumber     = flag.Bool("n", false, "Prefix each line with its line number")
	lineNumberL    = flag.Bool("line-number", false, "Alias of -n")
	colorFlag      = flag.String("color", "auto", "Colour mode: auto, always, or never")
	verbose        = flag.Bool("verbose", false, "Print response headers, malformed-frame warnings and error bodies to stderr")
	logFile        = flag.String("log-file", "", "With --verbose, also mirror diagnostics to this file with ANSI colour codes stripped")
	noCompression  = flag.Bool("N", false, "Send Accept-Encoding: identity, disabling response compression")

	filesWithMatches = flag.Bool("l", false, "Print only the names of files containing a match")
)

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstSet(vals ...int) int {
	for _, v := range vals {
		if v >= 0 {
			return v
		}
	}
	return -1
}

// flagWasSet reports whether name was explicitly passed on the command
// line, as opposed to carrying its zero-value default.
func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func main() {
	debug.SetTraceback("all")
	flag.Parse()

	if code := run(); code != 0 {
		os.Exit(code)
	}
}

func run() int {
	confSection := firstNonEmpty(*section, *confPath)
	prof := firstNonEmpty(*profileL, *profile)

	// Local settings, if -S names a document, establish the section's
	// defaults; every CLI flag below overrides them, matching the
	// documented CLI > section > top-level precedence.
	var local config.Settings
	if confSection != "" {
		if data, err := os.ReadFile(confSection); err == nil {
			doc, err := config.ParseDocument(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid settings document %s: %v\n", confSection, err)
				return 1
			}
			local, err = doc.Effective(prof)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to resolve section %q: %v\n", prof, err)
				return 1
			}
		}
	}

	q := url.Values{}
	if prof != "" {
		q.Set("profile", prof)
	}

	db := firstNonEmpty(*discardBeforeL, *discardBefore, local.DiscardBefore)
	if db != "" {
		q.Set("discard_before", db)
	}
	pat := firstNonEmpty(*patternL, *pattern)
	if pat == "" && flag.NArg() > 0 {
		pat = flag.Arg(0)
	}
	pat = firstNonEmpty(pat, local.Pattern)
	if pat != "" {
		q.Set("pattern", pat)
	}
	ep := firstNonEmpty(*exceptL, *exceptPattern, local.ExceptPattern)
	if ep != "" {
		q.Set("except_pattern", ep)
	}
	da := firstNonEmpty(*discardAfterL, *discardAfter, local.DiscardAfter)
	if da != "" {
		q.Set("discard_after", da)
	}

	// Settings has no way to distinguish "section set context to 0" from
	// "section never mentioned context", so a local 0 is treated the same
	// as absent here; a CLI flag wins whenever it is given, since the flags
	// default to -1, meaning "not given".
	localBefore, localAfter := -1, -1
	if local.BeforeContext > 0 {
		localBefore = local.BeforeContext
	}
	if local.AfterContext > 0 {
		localAfter = local.AfterContext
	}
	before := firstSet(*beforeContextL, *beforeContext, *context, localBefore)
	if before >= 0 {
		q.Set("before_context", strconv.Itoa(before))
	}
	after := firstSet(*afterContextL, *afterContext, *context, localAfter)
	if after >= 0 {
		q.Set("after_context", strconv.Itoa(after))
	}
	if *filesWithMatches {
		q.Set("files_with_matches", "true")
	}

	base := *srvURL
	if !flagWasSet("url") && local.Host != "" {
		scheme := "https"
		if local.SSLCertificate == "" {
			scheme = "http"
		}
		base = fmt.Sprintf("%s://%s:%d", scheme, local.Host, local.Port)
	}
	u, err := url.Parse(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --url: %v\n", err)
		return 1
	}
	// The instance uuid is a secret embedded in the search path; --url is
	// expected to carry it already (https://host:port/<uuid>/search). If
	// the caller passed a bare host with no path, fall back to the
	// section's configured uuid, then to the section name itself.
	if u.Path == "" || u.Path == "/" {
		uuid := firstNonEmpty(local.UUID, confSection)
		if uuid == "" {
			fmt.Fprintln(os.Stderr, "--url must include the /<uuid>/search path, or pass -S/--section")
			return 1
		}
		u.Path = "/" + uuid + "/search"
	}
	u.RawQuery = q.Encode()

	var diagFile io.WriteCloser
	if *verbose && *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open --log-file %s: %v\n", *logFile, err)
			return 1
		}
		diagFile = f
	}
	diag := client.NewTee(os.Stderr, diagFile)
	defer diag.Close()

	httpClient := &http.Client{}
	if !*verify {
		httpClient.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build request: %v\n", err)
		return 1
	}
	if *noCompression {
		req.Header.Set("Accept-Encoding", "identity")
	} else {
		req.Header.Set("Accept-Encoding", "zstd")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if *verbose {
		fmt.Fprintln(diag, resp.Header)
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "server returned %s\n", resp.Status)
		if *verbose {
			body := make([]byte, 4096)
			n, _ := resp.Body.Read(body)
			fmt.Fprintf(diag, "%s\n", body[:n])
		}
		return 1
	}

	body, err := client.DecodeBody(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading response: %v\n", err)
		return 1
	}
	defer body.Close()

	term, err := predicate.Compile(pat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid pattern: %v\n", err)
		return 1
	}

	useLineNumber := *lineNumber || *lineNumberL
	renderer := client.NewRenderer(os.Stdout, client.RenderOptions{
		Color:       client.ColorMode(*colorFlag),
		Fd:          os.Stdout.Fd(),
		LineNumbers: useLineNumber,
		Pattern:     term,
	}, nil)

	onError := func(err error) {
		if *verbose {
			fmt.Fprintf(diag, "malformed frame: %v\n", err)
		}
	}
	if err := client.ReadFrames(body, renderer.Render, onError); err != nil {
		fmt.Fprintf(os.Stderr, "error reading response: %v\n", err)
		return 1
	}
	renderer.Close()
	return 0
}
