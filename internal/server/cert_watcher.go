package server

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"resumescore/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// CertWatcher watches certificate files and calls onChange, debounced,
// after they are written, created or renamed.
type CertWatcher struct {
	mu sync.Mutex

	files         []string
	debounceDelay time.Duration
	debounceTimer *time.Timer
	onChange      func()
	logger        *errors.Logger

	fsWatcher *fsnotify.Watcher
	stopChan  chan struct{}
	running   bool
}

// NewCertWatcher creates a watcher for files. A zero debounceDelay selects
// one second.
func NewCertWatcher(files []string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *CertWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	return &CertWatcher{
		files:         slices.Clone(files),
		debounceDelay: debounceDelay,
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. Directories are watched rather than files so
// that atomic replacement through rename is seen.
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := make([]string, 0, len(cw.files))
	for _, file := range cw.files {
		dir := filepath.Dir(file)
		if slices.Contains(dirs, dir) {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		dirs = append(dirs, dir)
	}

	cw.fsWatcher = watcher
	cw.stopChan = make(chan struct{})
	cw.running = true
	go cw.watchLoop(watcher, cw.stopChan)

	if cw.logger != nil {
		cw.logger.Info("Certificate file watcher started",
			"files", cw.files,
			"debounce_delay", cw.debounceDelay)
	}
	return nil
}

// Stop stops the watcher
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}
	close(cw.stopChan)
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.running = false

	if err := cw.fsWatcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	if cw.logger != nil {
		cw.logger.Info("Certificate file watcher stopped")
	}
	return nil
}

// IsRunning returns whether the watcher is currently running
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

// WatchedFiles returns the files being watched
func (cw *CertWatcher) WatchedFiles() []string {
	return slices.Clone(cw.files)
}

func (cw *CertWatcher) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if cw.shouldProcessEvent(event) {
				cw.scheduleReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if cw.logger != nil {
				cw.logger.LogError(err, "File watcher error")
			}

		case <-stop:
			return
		}
	}
}

// shouldProcessEvent reports whether event touches a watched file
func (cw *CertWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.ContainsFunc(cw.files, func(file string) bool {
		return filepath.Clean(event.Name) == filepath.Clean(file)
	})
}

// scheduleReload restarts the debounce timer
func (cw *CertWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return
	}
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.debounceDelay, func() {
		if cw.logger != nil {
			cw.logger.Info("Certificate files changed, triggering reload")
		}
		cw.onChange()
	})
}
