package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"spectra/internal/service"
)

// EventSamplesFileChanged tells the frontend that the samples file was
// rewritten by another process (for example the standalone MCP server).
const EventSamplesFileChanged = "samples:file-changed"

// samplesWatcher polls the samples file and emits EventSamplesFileChanged
// when its fingerprint changes. The in-memory selection is left alone; the
// frontend decides whether to reopen it.
type samplesWatcher struct {
	ctx      context.Context
	path     string
	emitter  service.EventEmitter
	interval time.Duration

	mu     sync.Mutex
	last   string
	stopCh chan struct{}
}

func newSamplesWatcher(ctx context.Context, path string, emitter service.EventEmitter) *samplesWatcher {
	return &samplesWatcher{ctx: ctx, path: path, emitter: emitter, interval: 2 * time.Second}
}

// Start begins the polling loop. Should be called once.
func (w *samplesWatcher) Start() {
	w.mu.Lock()
	w.last = fingerprint(w.path)
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.pollLoop(stop)
}

// Stop terminates the polling loop.
func (w *samplesWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

// Acknowledge records the current file state, so a write made by this
// process is not reported back to it.
func (w *samplesWatcher) Acknowledge() {
	w.mu.Lock()
	w.last = fingerprint(w.path)
	w.mu.Unlock()
}

func (w *samplesWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *samplesWatcher) check() {
	current := fingerprint(w.path)

	w.mu.Lock()
	changed := w.last != current
	w.last = current
	w.mu.Unlock()

	if changed {
		w.emitter.Emit(w.ctx, EventSamplesFileChanged, map[string]string{"path": w.path})
	}
}

// fingerprint is size and modification time, or "" when the file is absent.
func fingerprint(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano())
}
