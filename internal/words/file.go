package words

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "wordbot/pkg/logx"
)

const reloadDebounce = 250 * time.Millisecond

// File serves words from an operator-supplied list file.
type File struct {
	path string
	log  logx.Logger
	p    *pool
}

// NewFile loads path. The file must hold at least BatchSize distinct words.
func NewFile(path string, rng *rand.Rand, log logx.Logger) (*File, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	words, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if len(words) < BatchSize {
		return nil, fmt.Errorf("word file %s: %w: want %d, have %d", path, ErrNotEnoughWords, BatchSize, len(words))
	}
	return &File{path: path, log: log, p: newPool(words, rng)}, nil
}

func loadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	words, err := parseList(f)
	if err != nil {
		return nil, fmt.Errorf("read word file %s: %w", path, err)
	}
	return words, nil
}

func (f *File) Words(ctx context.Context, n int) ([]string, error) { return f.p.pick(ctx, n) }

func (f *File) Len() int { return f.p.size() }

func (f *File) Path() string { return f.path }

// Reload re-reads the file. On error, or if the file now has fewer than
// BatchSize words, the current list is kept.
func (f *File) Reload() error {
	words, err := loadFile(f.path)
	if err != nil {
		return err
	}
	if len(words) < BatchSize {
		return fmt.Errorf("%w: want %d, have %d", ErrNotEnoughWords, BatchSize, len(words))
	}
	f.p.set(words)
	return nil
}

// Watch reloads the file whenever it changes, until ctx is done.
// The parent directory is watched so editors that replace the file are handled.
func (f *File) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(f.path)
	name := filepath.Clean(f.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	f.log.Debug("word file watcher started", logx.String("path", f.path))

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDebounce, func() {
			if ctx.Err() != nil {
				return
			}
			if err := f.Reload(); err != nil {
				f.log.Warn("word file reload failed; keeping previous list", logx.String("path", f.path), logx.Err(err))
				return
			}
			f.log.Info("word file reloaded", logx.String("path", f.path), logx.Int("words", f.Len()))
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			f.log.Warn("word file watcher error", logx.Err(err))
		}
	}
}
