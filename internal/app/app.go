package app

import (
	"context"
	"fmt"
	"log"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"spectra/internal/domain"
	"spectra/internal/paths"
	"spectra/internal/service"
	"spectra/internal/settings"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context
	*core

	watcher *samplesWatcher
	cancel  context.CancelFunc
}

// New resolves the application directories and builds the services. The
// database client is created in Startup.
func New() (*App, error) {
	layout, err := paths.Resolve()
	if err != nil {
		return nil, err
	}
	return newApp(layout)
}

func newApp(layout *paths.Layout) (*App, error) {
	a := &App{}
	c, err := newCore(layout, wailsEmitter{app: a})
	if err != nil {
		return nil, err
	}
	a.core = c
	return a, nil
}

// wailsEmitter forwards service events to the frontend. Events raised
// before Startup are dropped.
type wailsEmitter struct {
	app *App
}

func (e wailsEmitter) Emit(_ context.Context, event string, data any) {
	if e.app.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(e.app.ctx, event, data)
}

// InitialWindowSize returns the size the main window opens with.
func (a *App) InitialWindowSize() service.WindowSize {
	return a.window.LoadWindowSize()
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.connect()

	watchCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	// Edits made outside the shell (an editor, the MCP server) rebuild the
	// client so the next page load sees them.
	if err := a.settings.Watch(watchCtx, func(res settings.LoadResult) {
		if res.Status == settings.StatusDegraded {
			return
		}
		a.connect()
	}); err != nil {
		log.Printf("[APP] settings watcher unavailable: %v", err)
	}

	a.watcher = newSamplesWatcher(watchCtx, a.layout.SamplesFile(), wailsEmitter{app: a})
	a.watcher.Start()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if w, h := wailsRuntime.WindowGetSize(ctx); w > 0 && h > 0 {
		a.window.SaveWindowSize(w, h)
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.nav.Wait(ctx)
	a.close()
}

// ============================================================
// Settings
// ============================================================

// GetSettings returns the whole settings record.
func (a *App) GetSettings() SettingsView {
	res := a.settings.Load()
	view := SettingsView{Values: res.Record, Status: res.Status.String()}
	if res.Err != nil {
		view.Error = res.Err.Error()
	}
	return view
}

// GetSetting returns one value, or nil when the key is absent.
func (a *App) GetSetting(key string) any {
	return a.settings.Get(key, nil)
}

// SetSetting stores a value. Connection keys take effect immediately.
func (a *App) SetSetting(key string, value any) bool {
	ok := a.settings.Set(a.ctx, key, value)
	if ok {
		a.connect()
	}
	return ok
}

// UnsetSetting removes a key.
func (a *App) UnsetSetting(key string) bool {
	ok := a.settings.Unset(a.ctx, key)
	if ok {
		a.connect()
	}
	return ok
}

// GetProfile returns the connection profile derived from the settings.
func (a *App) GetProfile() ProfileView {
	return toProfileView(a.settings.Profile())
}

// ============================================================
// Navigation
// ============================================================

// ListPages returns the navigation tree.
func (a *App) ListPages() []domain.Page {
	return a.nav.Pages()
}

// Navigate loads the content for a page.
func (a *App) Navigate(pageID string) (*domain.PageView, error) {
	return a.nav.Navigate(a.ctx, pageID)
}

// ============================================================
// Sample selection
// ============================================================

// OpenSamples loads the saved selection, as when the dialog opens.
func (a *App) OpenSamples() []SampleView {
	return toSampleViews(a.samples.Open(a.ctx))
}

// ListSamples returns the rows currently in the dialog.
func (a *App) ListSamples() []SampleView {
	return toSampleViews(a.samples.Rows())
}

// AddSample appends a row to the selection.
func (a *App) AddSample(row SampleView) (*SampleView, error) {
	added, err := a.samples.Add(a.ctx, row.SampleRow)
	if err != nil {
		return nil, err
	}
	return &SampleView{ID: added.ID, SampleRow: added}, nil
}

// DeleteSample removes a row by id.
func (a *App) DeleteSample(id string) bool {
	return a.samples.Delete(a.ctx, id)
}

// ClearSamples empties the selection.
func (a *App) ClearSamples() {
	a.samples.Clear(a.ctx)
}

// AcceptSamples saves the selection and returns the final rows.
func (a *App) AcceptSamples() []SampleView {
	rows := a.samples.Accept(a.ctx)
	if a.watcher != nil {
		a.watcher.Acknowledge()
	}
	return toSampleViews(rows)
}

// ResolveProduct returns the display name for a product id, or "-1".
func (a *App) ResolveProduct(id int64) string {
	return a.names.Resolve(a.ctx, id)
}

// ============================================================
// Database
// ============================================================

// TestConnection pings the configured database.
func (a *App) TestConnection() error {
	db := a.client()
	if db == nil {
		return fmt.Errorf("no database connection configured")
	}
	return db.Ping(a.ctx)
}

// ReconnectDatabase rebuilds the client from the current settings.
func (a *App) ReconnectDatabase() {
	a.reconnect()
}
