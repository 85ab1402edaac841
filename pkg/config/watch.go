package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*Config)
	errChan  chan error
	done     chan struct{}
	once     sync.Once
}

// Watch starts watching configPath. onChange runs on the watcher goroutine
// with the reloaded config after each settled write.
func Watch(configPath string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := fw.Add(filepath.Dir(configPath)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	w := &Watcher{
		path:     configPath,
		watcher:  fw,
		onChange: onChange,
		errChan:  make(chan error, 1),
		done:     make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// watchLoop is the only sender on errChan and closes it on exit.
func (w *Watcher) watchLoop() {
	defer close(w.errChan)

	var settle <-chan time.Time
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			settle = time.After(debounceDelay)

		case <-settle:
			settle = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.report(fmt.Errorf("reload config: %w", err))
		return
	}
	log.Debugf("Reloaded config from %s", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errChan <- err:
	default:
		log.Debugf("Dropped config watcher error: %v", err)
	}
}

// Errors returns watch and reload errors. Errors are dropped when nobody
// reads, and the channel is closed once the watcher stops.
func (w *Watcher) Errors() <-chan error {
	return w.errChan
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
