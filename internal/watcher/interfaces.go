package watcher

import "context"

// Watcher monitors a model file for changes with debouncing.
type Watcher interface {
	// Start begins watching, calling callback with the model path after each debounced change.
	Start(ctx context.Context, callback func(path string)) error

	// Stop stops the watcher and cleans up resources.
	Stop() error
}
