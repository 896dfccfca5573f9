// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package config

import (
	"github.com/fsnotify/fsnotify"

	natgwerrors "github.com/natgw/natgw/internal/errors"
)

// Watcher triggers a callback whenever the active configuration file is
// written, per SPEC_FULL.md §5's ambient convenience: the admin `reload`
// command remains the authoritative trigger (internal/reload.Coordinator
// is what fsnotify calls into here), this just saves an operator from
// having to issue it by hand after editing the file.
type Watcher struct {
	fs   *fsnotify.Watcher
	path string
	done chan struct{}
}

// WatchFile starts watching path and invokes onChange (from its own
// goroutine) on every write or create event, until Close is called.
func WatchFile(path string, onChange func()) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, natgwerrors.Wrap(err, natgwerrors.KindUnavailable, "create config watcher")
	}
	if err := fs.Add(path); err != nil {
		fs.Close()
		return nil, natgwerrors.Wrapf(err, natgwerrors.KindUnavailable, "watch %q", path)
	}

	w := &Watcher{fs: fs, path: path, done: make(chan struct{})}
	go w.loop(onChange)
	return w, nil
}

func (w *Watcher) loop(onChange func()) {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				onChange()
			}
		case <-w.fs.Errors:
			// Watch errors are not fatal to the process: the admin
			// `reload` command remains available regardless.
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
