package app

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"spectra/internal/domain"
	"spectra/internal/paths"
	"spectra/internal/service"
	"spectra/internal/settings"
)

func newTestCore(t *testing.T, emitter service.EventEmitter) *core {
	t.Helper()
	layout := paths.New(paths.ModeDevelopment, t.TempDir())
	c, err := newCore(layout, emitter)
	if err != nil {
		t.Fatalf("newCore: %v", err)
	}
	t.Cleanup(func() {
		c.close()
		log.SetOutput(os.Stderr)
	})
	return c
}

// useSQLite points the settings at a fresh SQLite file with a product table.
func useSQLite(t *testing.T, c *core) {
	t.Helper()
	store := c.settings.Store()
	store.Set(settings.KeyDBType, "sqlite")
	store.Set(settings.KeyDatabase, filepath.Join(c.layout.DataDir(), "lab.db"))
	c.connect()

	db := c.client()
	if db == nil {
		t.Fatal("expected a client after connect")
	}
	ctx := context.Background()
	for _, q := range []string{
		`CREATE TABLE product (id INTEGER PRIMARY KEY, name TEXT, ac_nmb INTEGER)`,
		`INSERT INTO product (id, name, ac_nmb) VALUES (1, 'Quartz', 1), (2, 'Basalt', 1), (3, 'Retired', 0)`,
	} {
		if _, err := db.Execute(ctx, q, nil); err != nil {
			t.Fatalf("setup %q: %v", q, err)
		}
	}
}

func TestNewCore_CreatesLayout(t *testing.T) {
	c := newTestCore(t, nil)

	for _, dir := range []string{c.layout.ConfigDir(), c.layout.DataDir(), c.layout.LogDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
	if _, err := os.Stat(c.layout.ConfigFile()); err != nil {
		t.Errorf("expected default settings file: %v", err)
	}
}

func TestCore_ProductsPageAndLookup(t *testing.T) {
	c := newTestCore(t, service.NopEmitter{})
	useSQLite(t, c)
	ctx := context.Background()

	view, err := c.nav.Navigate(ctx, "products")
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if view.Error != "" {
		t.Fatalf("unexpected page error: %s", view.Error)
	}
	if len(view.Rows) != 2 {
		t.Fatalf("expected 2 active products, got %d", len(view.Rows))
	}
	if name, _ := view.Rows[0].Get("name"); name != "Basalt" {
		t.Errorf("expected products ordered by name, got %v", name)
	}

	if got := c.names.Resolve(ctx, 1); got != "Quartz" {
		t.Errorf("expected Quartz, got %q", got)
	}
	if got := c.names.Resolve(ctx, 3); got != "-1" {
		t.Errorf("expected sentinel for inactive product, got %q", got)
	}
}

func TestCore_ReconnectKeepsLookupEntries(t *testing.T) {
	c := newTestCore(t, nil)
	useSQLite(t, c)
	ctx := context.Background()

	c.names.Resolve(ctx, 1)
	first := c.client()
	c.reconnect()
	if c.client() == first {
		t.Error("expected a new client after reconnect")
	}
	if c.names.Len() != 1 {
		t.Errorf("expected cached entry to survive reconnect, got %d", c.names.Len())
	}
}

func TestCore_BadLookupScheduleIsLogged(t *testing.T) {
	c := newTestCore(t, nil)
	c.settings.Store().Set(settings.KeyLookupReset, "not a schedule")
	c.connect()
	if c.client() == nil {
		t.Error("a bad reset schedule should not drop the client")
	}
}

func TestCore_ConnectSkipsUnchangedSettings(t *testing.T) {
	c := newTestCore(t, nil)
	useSQLite(t, c)

	first := c.client()
	c.connect()
	if c.client() != first {
		t.Error("connect with unchanged settings should keep the client")
	}

	c.settings.Store().Set(settings.KeyPoolSize, 2)
	c.connect()
	if c.client() == first {
		t.Error("a new pool size should rebuild the client")
	}
}

func TestCore_ConcurrentConnectsLeaveOneClient(t *testing.T) {
	c := newTestCore(t, nil)
	useSQLite(t, c)
	c.settings.Store().Set(settings.KeyLookupReset, "@every 1h")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.connect()
		}()
	}
	wg.Wait()

	db := c.client()
	if db == nil {
		t.Fatal("expected a client")
	}
	if _, err := db.FetchAll(context.Background(), "SELECT id FROM product", nil); err != nil {
		t.Errorf("surviving client should be open: %v", err)
	}
}

func TestApp_SetSettingKeepsClientForUnrelatedKey(t *testing.T) {
	a, err := newApp(paths.New(paths.ModeDevelopment, t.TempDir()))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() {
		a.close()
		log.SetOutput(os.Stderr)
	})
	useSQLite(t, a.core)

	first := a.client()
	if !a.SetSetting("window_width", int64(1400)) {
		t.Fatal("SetSetting failed")
	}
	if a.client() != first {
		t.Error("a non-connection key should not rebuild the client")
	}
	if _, err := first.FetchAll(context.Background(), "SELECT id FROM product", nil); err != nil {
		t.Errorf("client closed under the caller: %v", err)
	}
}

func TestCore_QueryRunnerNilWhenDisconnected(t *testing.T) {
	c := newTestCore(t, nil)
	if c.queryRunner() != nil {
		t.Error("expected nil query runner before connect")
	}
}

// ─────────────────────────────────────────────────────────────
// samplesWatcher
// ─────────────────────────────────────────────────────────────

type recordingEmitter struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEmitter) Emit(_ context.Context, event string, _ any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingEmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestSamplesWatcher_DetectsExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.json")
	em := &recordingEmitter{}
	w := newSamplesWatcher(context.Background(), path, em)
	w.Start()
	defer w.Stop()

	w.check()
	if em.count() != 0 {
		t.Fatal("no change expected before the file exists")
	}

	if err := os.WriteFile(path, []byte("[]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w.check()
	if em.count() != 1 {
		t.Fatalf("expected one event after write, got %d", em.count())
	}
	if em.events[0] != EventSamplesFileChanged {
		t.Errorf("unexpected event %q", em.events[0])
	}

	// Own writes are acknowledged and not reported.
	later := time.Now().Add(time.Second)
	os.WriteFile(path, []byte("[ ]\n"), 0644)
	os.Chtimes(path, later, later)
	w.Acknowledge()
	w.check()
	if em.count() != 1 {
		t.Errorf("acknowledged write should not emit, got %d events", em.count())
	}
}

func TestToSampleViews_CarriesID(t *testing.T) {
	rows := []domain.SampleRow{{ID: "abc", ProductID: 4}}
	views := toSampleViews(rows)
	if len(views) != 1 || views[0].ID != "abc" || views[0].ProductID != 4 {
		t.Errorf("unexpected views %+v", views)
	}
}
