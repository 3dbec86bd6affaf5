/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Cache is a single-writer, many-reader view over a settings document on
// disk. It is valid while the file's (mtime, size) pair is unchanged;
// readers always get back a whole, immutable *Document snapshot, never a
// partially-updated one, because a reload builds a brand new Document and
// swaps the pointer under the lock rather than mutating in place.
type Cache struct {
	path string

	mu    sync.Mutex
	mtime time.Time
	size  int64
	doc   *Document

	watcher *fsnotify.Watcher
	dirty   atomic.Bool
}

// NewCache loads path immediately and, best-effort, starts an fsnotify
// watch on its parent directory so external edits are noticed without
// waiting for the next Get() call to observe a changed mtime. The watch
// is an optimization layered on top of the mandatory stat-based check in
// Get -- if it cannot be started, the cache still behaves correctly, just
// without the early nudge.
func NewCache(path string) (*Cache, error) {
	c := &Cache{path: path}
	if err := c.reload(); err != nil {
		return nil, err
	}
	c.watchAsync()
	return c, nil
}

func (c *Cache) watchAsync() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	if err := w.Add(filepath.Dir(c.path)); err != nil {
		w.Close()
		return
	}
	c.watcher = w
	go func() {
		for evt := range w.Events {
			if filepath.Clean(evt.Name) != filepath.Clean(c.path) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				c.dirty.Store(true)
			}
		}
	}()
}

// Close stops the background watch, if any.
func (c *Cache) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// Get returns the current Document, reparsing the file if its (mtime,
// size) pair has changed since the last read, or if the fsnotify watch
// flagged a write. Failure kinds per the config model: file missing and
// parse errors are both returned verbatim for the caller to classify as
// fatal (500).
func (c *Cache) Get() (*Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fi, err := os.Stat(c.path)
	if err != nil {
		return nil, err
	}
	if !c.dirty.Load() && fi.ModTime().Equal(c.mtime) && fi.Size() == c.size {
		return c.doc, nil
	}
	if err := c.reloadLocked(fi); err != nil {
		return nil, err
	}
	return c.doc, nil
}

func (c *Cache) reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fi, err := os.Stat(c.path)
	if err != nil {
		return err
	}
	return c.reloadLocked(fi)
}

// reloadLocked must be called with c.mu held.
func (c *Cache) reloadLocked(fi os.FileInfo) error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return err
	}
	c.doc = doc
	c.mtime = fi.ModTime()
	c.size = fi.Size()
	c.dirty.Store(false)
	return nil
}
