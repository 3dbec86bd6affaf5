/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package freader enumerates files matching a (possibly globbed) base path
// and exposes each match as a logical text stream, transparently unwrapping
// single-file compressors and archive formats.
package freader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Enumerate expands basePath, whose final path element may be a glob
// pattern, against its parent directory. Matches are sorted by case-folded
// name with a stable tie-break on the original (case-sensitive) name, so
// "A.txt" sorts before "a.txt".
func Enumerate(basePath string) ([]string, error) {
	dir := filepath.Dir(basePath)
	pattern := filepath.Base(basePath)

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if g.Match(e.Name()) {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		ci, cj := strings.ToLower(matches[i]), strings.ToLower(matches[j])
		if ci != cj {
			return ci < cj
		}
		return matches[i] < matches[j]
	})
	return matches, nil
}
