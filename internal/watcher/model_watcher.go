// Package watcher re-triggers work when a model file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 500 * time.Millisecond

// modelWatcher implements Watcher for a single file. It watches the parent
// directory so that editors replacing the file through a rename are seen.
type modelWatcher struct {
	watcher       *fsnotify.Watcher
	path          string             // Absolute model path
	debounceTime  time.Duration      // Quiet period before firing callback
	logger        *zap.Logger        // Watcher errors and skipped events
	callback      func(path string)  // Callback to invoke after a change
	ctx           context.Context    // Context for lifecycle management
	cancel        context.CancelFunc // Cancel function for internal context
	debounceTimer *time.Timer        // Current debounce timer
	timerMu       sync.Mutex         // Protects debounce timer
	stopOnce      sync.Once          // Ensures Stop() is idempotent
	doneCh        chan struct{}      // Signals watch goroutine has finished
}

// Option configures a model watcher.
type Option func(*modelWatcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(mw *modelWatcher) {
		if d > 0 {
			mw.debounceTime = d
		}
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(logger *zap.Logger) Option {
	return func(mw *modelWatcher) {
		if logger != nil {
			mw.logger = logger
		}
	}
}

// NewModelWatcher creates a watcher for the model file at path. The file must
// exist.
func NewModelWatcher(path string, opts ...Option) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a model file", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	mw := &modelWatcher{
		watcher:      watcher,
		path:         abs,
		debounceTime: DefaultDebounce,
		logger:       zap.NewNop(),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(mw)
	}
	return mw, nil
}

// Start begins watching for changes.
func (mw *modelWatcher) Start(ctx context.Context, callback func(path string)) error {
	if callback == nil {
		return nil
	}

	mw.callback = callback
	mw.ctx, mw.cancel = context.WithCancel(ctx)

	go mw.watch()
	return nil
}

// Stop stops the watcher.
func (mw *modelWatcher) Stop() error {
	var err error
	mw.stopOnce.Do(func() {
		if mw.cancel != nil {
			mw.cancel()

			// Wait for goroutine to finish (only if Start() was called)
			<-mw.doneCh
		} else {
			// Never started, close doneCh manually
			close(mw.doneCh)
		}

		err = mw.watcher.Close()
	})
	return err
}

// watch is the main event loop.
func (mw *modelWatcher) watch() {
	defer close(mw.doneCh)

	changedCh := make(chan struct{}, 1)

	for {
		select {
		case <-mw.ctx.Done():
			mw.stopDebounceTimer()
			return

		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if !mw.shouldProcessEvent(event) {
				continue
			}

			mw.resetDebounceTimer(changedCh)

		case <-changedCh:
			mw.handleDebounceExpired()

		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			mw.logger.Warn("model watcher error", zap.Error(err))
		}
	}
}

// handleDebounceExpired fires the callback for the settled change.
func (mw *modelWatcher) handleDebounceExpired() {
	// Removal without a replacement leaves nothing to process.
	if _, err := os.Stat(mw.path); err != nil {
		mw.logger.Warn("model file is gone", zap.String("path", mw.path), zap.Error(err))
		return
	}

	if mw.callback != nil {
		mw.callback(mw.path)
	}
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (mw *modelWatcher) resetDebounceTimer(changedCh chan struct{}) {
	mw.timerMu.Lock()
	defer mw.timerMu.Unlock()

	if mw.debounceTimer != nil {
		mw.debounceTimer.Stop()
	}

	mw.debounceTimer = time.AfterFunc(mw.debounceTime, func() {
		select {
		case changedCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (mw *modelWatcher) stopDebounceTimer() {
	mw.timerMu.Lock()
	defer mw.timerMu.Unlock()

	if mw.debounceTimer != nil {
		mw.debounceTimer.Stop()
		mw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps write, create and rename events for the model file.
func (mw *modelWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == mw.path
}
