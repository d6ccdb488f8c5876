package config

import "go.uber.org/zap"

// WatcherBuilderOption is a functional option for configuring a Watcher during construction.
type WatcherBuilderOption func(*Watcher)

// WithWatcherLogger sets the logger used to report reloads and rejected files.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - WatcherBuilderOption: functional option to set the logger
func WithWatcherLogger(logger *zap.Logger) WatcherBuilderOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}
