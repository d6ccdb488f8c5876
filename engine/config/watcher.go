package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

var errWatcherClosed = errors.New("config: watcher already closed")

// Watcher reloads a config file whenever it is written and hands every successfully parsed result to a callback.
// A file that fails to parse or validate is logged and ignored, so the previous configuration stays in effect.
type Watcher struct {
	path     string
	onChange func(*Config)
	logger   *zap.Logger

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// NewWatcher starts watching the directory of path for changes to the file.
// The directory is watched rather than the file so that editors replacing the file are seen.
//
// Parameters:
//   - path: the config file to watch
//   - onChange: called on the watcher goroutine with each reloaded config
//   - options: functional options to configure the watcher
//
// Returns:
//   - *Watcher: the running watcher
//   - error: error if the file system watch could not be set up
func NewWatcher(path string, onChange func(*Config), options ...WatcherBuilderOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		logger:   zap.NewNop(),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, option := range options {
		option(w)
	}
	go w.start()
	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.reload()
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("config reloaded", zap.String("path", w.path))
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops the watcher and waits for its goroutine to exit.
//
// Returns:
//   - error: errWatcherClosed on a second call, or the file system watcher's close error
func (w *Watcher) Close() error {
	err := errWatcherClosed
	w.once.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		<-w.stopped
	})
	return err
}
