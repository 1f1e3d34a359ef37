package screenersource

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"screener-service/internal/pkg/constvars"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounceDelay coalesces the bursts of writes editors produce.
const DefaultDebounceDelay = 200 * time.Millisecond

// Watcher reports changed screener files by screener type.
type Watcher struct {
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	onChange func(screenerType string)
	delay    time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    chan struct{}
	stopped sync.WaitGroup
}

// Watch calls onChange once per burst of writes, creations, removals or
// renames of a <screenerType>.json file in dir.
func Watch(dir string, log *zap.Logger, onChange func(screenerType string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Clean(dir)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		log:      log,
		onChange: onChange,
		delay:    DefaultDebounceDelay,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	w.stopped.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.stopped.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("screenersource.Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, schemaExtension) {
		return
	}
	screenerType := strings.ToLower(strings.TrimSuffix(name, schemaExtension))

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[screenerType]; ok {
		t.Stop()
	}
	w.pending[screenerType] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, screenerType)
		w.mu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}

		w.log.Info("screenersource.Watcher screener file changed",
			zap.String(constvars.LoggingScreenerTypeKey, screenerType),
			zap.String(constvars.LoggingFileNameKey, event.Name),
		)
		w.onChange(screenerType)
	})
}

// Stop ends the watch. Pending notifications are dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	select {
	case <-w.done:
		w.mu.Unlock()
		return
	default:
	}
	close(w.done)
	for key, t := range w.pending {
		t.Stop()
		delete(w.pending, key)
	}
	w.mu.Unlock()

	w.watcher.Close()
	w.stopped.Wait()
}
