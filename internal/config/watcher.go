// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragdesk.
package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the global configuration when the config file changes on
// disk. Editors write config files with rename-and-replace sequences, so
// events are debounced and the reload reads the path, not the inode.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration

	mu      sync.Mutex
	pending bool

	ctx    context.Context
	cancel context.CancelFunc

	// OnReload is called after a successful reload, if set.
	OnReload func(*Config)
}

// NewWatcher creates a watcher for the default config path.
func NewWatcher() (*Watcher, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fw,
		path:     path,
		debounce: 300 * time.Millisecond,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching. Watching the parent directory (not the file) keeps
// the watch alive across rename-and-replace writes.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.mu.Unlock()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the stale config stays active.
		}
	}
}

func (w *Watcher) processPending() {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			fire := w.pending
			w.pending = false
			w.mu.Unlock()
			if !fire {
				continue
			}
			if err := ReloadGlobal(); err != nil {
				continue
			}
			if w.OnReload != nil {
				w.OnReload(Global())
			}
		}
	}
}
