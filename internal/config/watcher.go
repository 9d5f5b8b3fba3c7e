package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultWatchInterval is how often [Watcher.Run] polls the file.
const DefaultWatchInterval = 5 * time.Second

// Watcher reloads a config file when its content changes and hands each new
// valid config to a callback. Invalid edits are logged and skipped; the last
// valid config stays current.
//
// Polling happens in [Watcher.Run]; [Watcher.Check] forces a check, e.g. on
// SIGHUP.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(old, new *Config)

	// checkMu serialises checks so callbacks never overlap.
	checkMu sync.Mutex

	mu      sync.Mutex
	current *Config
	mtime   time.Time
	size    int64
	sum     [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval of [Watcher.Run].
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// NewWatcher loads the config at path. onChange may be nil.
func NewWatcher(path string, onChange func(old, new *Config), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: DefaultWatchInterval,
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(w)
	}

	snap, err := w.read()
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	w.apply(snap)
	return w, nil
}

// Current returns the most recently loaded valid config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run polls the file every interval until ctx is done. It always returns
// nil, which lets it run as an errgroup member.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Check(); err != nil {
				slog.Warn("config watcher: reload skipped", "path", w.path, "err", err)
			}
		}
	}
}

// Check re-reads the file if its size or modification time moved and calls
// onChange when the content differs from the current config. It reports
// whether a new config was applied. On error the current config is kept.
func (w *Watcher) Check() (changed bool, err error) {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	info, err := os.Stat(w.path)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	unchanged := info.ModTime().Equal(w.mtime) && info.Size() == w.size
	w.mu.Unlock()
	if unchanged {
		return false, nil
	}

	snap, err := w.read()
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	if snap.sum == w.sum {
		// Touched, same content.
		w.mtime, w.size = snap.mtime, snap.size
		w.mu.Unlock()
		return false, nil
	}
	old := w.current
	w.mu.Unlock()
	w.apply(snap)

	slog.Info("config watcher: configuration reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(old, snap.cfg)
	}
	return true, nil
}

// snapshot is one parsed read of the file.
type snapshot struct {
	cfg   *Config
	mtime time.Time
	size  int64
	sum   [sha256.Size]byte
}

func (w *Watcher) read() (snapshot, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return snapshot{}, err
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		return snapshot{}, err
	}
	cfg, err := loadBytes(data)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{
		cfg:   cfg,
		mtime: info.ModTime(),
		size:  int64(len(data)),
		sum:   sha256.Sum256(data),
	}, nil
}

func (w *Watcher) apply(s snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = s.cfg
	w.mtime, w.size, w.sum = s.mtime, s.size, s.sum
}
