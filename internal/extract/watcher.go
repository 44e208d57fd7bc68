package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/rht/internal/config"
	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/parser"
)

// FileEventType is the kind of change a debounced batch reports for a path.
type FileEventType int

const (
	FileEventChange FileEventType = iota
	FileEventRemove
)

// WatchStats summarizes a watcher's activity.
type WatchStats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time

	// Changed files whose content matched the last parse.
	CacheHits int
}

// Watcher re-extracts C/C++ files below the project root when they change.
// Events are debounced: a burst of writes to one file yields one extraction.
type Watcher struct {
	watcher   *fsnotify.Watcher
	filter    *Filter
	extractor *Extractor
	index     *parser.Index
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	onResult func(FileResult)
	onRemove func(path string)

	stats   WatchStats
	statsMu sync.RWMutex
}

// NewWatcher creates a watcher for cfg's project. onResult receives the facts
// of every changed file; onRemove receives deleted or renamed-away paths.
// Either callback may be nil. Callbacks run on the debounce goroutine, one
// batch at a time.
func NewWatcher(cfg *config.Config, e *Extractor, onResult func(FileResult), onRemove func(path string)) (*Watcher, error) {
	filter, err := NewFilterFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	idx, err := parser.NewIndex()
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		idx.Close()
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:   fsw,
		filter:    filter,
		extractor: e,
		index:     idx,
		ctx:       ctx,
		cancel:    cancel,
		onResult:  onResult,
		onRemove:  onRemove,
	}
	w.debouncer = newEventDebouncer(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, w.flush)
	return w, nil
}

// Start adds watches for every directory the filter accepts and begins
// processing events.
func (w *Watcher) Start() error {
	root := w.filter.Root()
	debug.LogWatch("starting file watcher for %s\n", root)

	if err := w.addWatches(root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}

	w.wg.Add(1)
	go w.processEvents()

	debug.Infof("watching %s", root)
	return nil
}

// Stop ends event processing. A batch already being extracted finishes
// before Stop returns; pending events are dropped.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.cancel()
		if cerr := w.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close file watcher: %w", cerr)
		}
		w.wg.Wait()
		w.debouncer.stop()
		w.index.Close()
		debug.LogWatch("file watcher stopped\n")
	})
	return err
}

// Stats returns a snapshot of the watcher's counters.
func (w *Watcher) Stats() WatchStats {
	w.statsMu.RLock()
	stats := w.stats
	w.statsMu.RUnlock()
	stats.CacheHits, _ = w.index.Stats()
	return stats
}

func (w *Watcher) addWatches(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return err
	}
	visited := map[string]bool{}
	var add func(dir string)
	add = func(dir string) {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil || visited[real] {
			return
		}
		visited[real] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			debug.LogWatch("cannot read %s: %v\n", dir, err)
			return
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if !w.filter.Match(path, true) {
				continue
			}
			if err := w.watcher.Add(path); err != nil {
				debug.Infof("failed to add watch for %s: %v", path, err)
				continue
			}
			add(path)
		}
	}
	add(root)
	return nil
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.incrementStats(0, 1)
			debug.Errorf("file watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("received %v for %s\n", event.Op, path)

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if w.filter.Match(path, false) {
			w.debouncer.addEvent(path, FileEventRemove)
		}
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && w.filter.Match(path, true) {
			if err := w.addWatches(path); err != nil {
				debug.Infof("failed to add watch for new directory %s: %v", path, err)
			}
		}
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !w.filter.Match(path, false) {
		debug.LogWatch("ignoring %s\n", path)
		return
	}
	w.debouncer.addEvent(path, FileEventChange)
}

// flush handles one debounced batch: removals first, then changed files.
func (w *Watcher) flush(events map[string]FileEventType) {
	var removes, changes []string
	for path, eventType := range events {
		if eventType == FileEventRemove {
			removes = append(removes, path)
		} else {
			changes = append(changes, path)
		}
	}
	debug.LogWatch("processing %d removed and %d changed files\n", len(removes), len(changes))

	for _, path := range removes {
		w.index.Invalidate(path)
		if w.onRemove != nil {
			w.onRemove(path)
		}
		w.incrementStats(1, 0)
	}
	for _, path := range changes {
		result := w.extractor.ExtractCached(w.index, path)
		if result.Err != nil {
			debug.Errorf("%s: %v", path, result.Err)
			w.incrementStats(1, 1)
		} else {
			w.incrementStats(1, 0)
		}
		if w.onResult != nil {
			w.onResult(result)
		}
	}
}

func (w *Watcher) incrementStats(events, errs int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.EventsProcessed += events
	w.stats.ErrorCount += errs
	if events > 0 {
		w.stats.LastEventTime = time.Now()
	}
}

// eventDebouncer collects the latest event per path and hands the batch to
// its callback once no event has arrived for the debounce interval.
type eventDebouncer struct {
	mu       sync.Mutex
	events   map[string]FileEventType
	debounce time.Duration
	timer    *time.Timer
	closed   bool
	onFlush  func(map[string]FileEventType)

	// flushMu is held while a batch is handed out, so stop can wait for it.
	flushMu sync.Mutex
}

func newEventDebouncer(debounce time.Duration, onFlush func(map[string]FileEventType)) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]FileEventType),
		debounce: debounce,
		onFlush:  onFlush,
	}
}

func (d *eventDebouncer) addEvent(path string, eventType FileEventType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.events[path] = eventType
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) flush() {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	d.mu.Lock()
	if d.closed || len(d.events) == 0 {
		d.mu.Unlock()
		return
	}
	events := d.events
	d.events = make(map[string]FileEventType)
	d.mu.Unlock()

	d.onFlush(events)
}

// stop discards pending events and waits for a running flush to return.
func (d *eventDebouncer) stop() {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]FileEventType)
	d.mu.Unlock()

	d.flushMu.Lock()
	defer d.flushMu.Unlock()
}
