package app

import (
	"fmt"
	"io"
	"log"
	"sync"

	"spectra/internal/dbclient"
	"spectra/internal/domain"
	"spectra/internal/logging"
	"spectra/internal/lookup"
	"spectra/internal/paths"
	"spectra/internal/secret"
	"spectra/internal/service"
	"spectra/internal/settings"
)

// core holds the services shared by the desktop shell and the standalone
// MCP server. There is exactly one of each per process.
type core struct {
	layout *paths.Layout
	logs   io.Closer

	settings *service.SettingsService
	samples  *service.SampleService
	nav      *service.NavigationService
	window   *service.WindowSettingsService
	names    *lookup.Cache

	mu sync.Mutex
	db *dbclient.Client

	// connMu serializes connect; conn is what the current client was built from.
	connMu    sync.Mutex
	conn      connKey
	connected bool
}

// connKey is the part of the settings a client depends on.
type connKey struct {
	profile domain.Profile
	pool    int
	reset   string
}

// newCore creates the directory layout, routes logging to the log file and
// builds the services. It does not connect to the database; see connect.
func newCore(layout *paths.Layout, emitter service.EventEmitter) (*core, error) {
	if err := layout.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("prepare %s: %w", layout.Root, err)
	}
	c := &core{layout: layout, logs: logging.Setup(layout.LogFile())}
	log.Printf("[APP] starting (%s mode, root %s)", layout.Mode, layout.Root)

	store := settings.NewStore(layout.ConfigFile())
	if res := store.Load(); res.Status != settings.StatusLoaded {
		log.Printf("[APP] settings %s", res.Status)
	}
	secrets := secret.Chain{secret.NewKeychainStore(), secret.NewEnvStore()}

	c.settings = service.NewSettingsService(store, secrets, emitter)
	c.window = service.NewWindowSettingsService(store)
	c.samples = service.NewSampleService(layout.SamplesFile(), emitter)
	c.names = lookup.New()
	c.nav = service.NewNavigationService(c.samples, c.names, emitter)
	return c, nil
}

// connect (re)builds the data-access client from the current settings and
// hands it to the lookup cache and the DB-backed pages. It does nothing when
// the profile, pool size and lookup reset schedule are unchanged since the
// last build. A profile that cannot produce a client leaves the shell without
// a database; pages report that.
func (c *core) connect() { c.rebuild(false) }

// reconnect rebuilds the client even if the settings did not change.
func (c *core) reconnect() { c.rebuild(true) }

func (c *core) rebuild(force bool) {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	store := c.settings.Store()
	key := connKey{
		profile: c.settings.Profile(),
		pool:    store.GetInt(settings.KeyPoolSize, 8),
		reset:   store.GetString(settings.KeyLookupReset, ""),
	}
	if c.connected && !force && key == c.conn {
		return
	}
	c.conn, c.connected = key, true
	profile := key.profile

	client, err := dbclient.New(profile, key.pool)
	if err != nil {
		log.Printf("[DB] %s profile unusable: %v", profile.Driver, err)
		client = nil
	}

	c.mu.Lock()
	old := c.db
	c.db = client
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}

	if client != nil {
		log.Printf("[DB] using %s database %q", client.Dialect().Name(), client.Database())
		c.names.Configure(client)
		c.nav.SetDB(client)
	} else {
		c.names.Configure(nil)
		c.nav.SetDB(nil)
	}

	if err := c.names.ScheduleReset(key.reset); err != nil {
		log.Printf("[LOOKUP] %v", err)
	}
}

// client returns the current data-access client, or nil.
func (c *core) client() *dbclient.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

func (c *core) close() {
	c.names.StopReset()
	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()
	if db != nil {
		db.Close()
	}
	log.Println("[APP] stopped")
	if c.logs != nil {
		c.logs.Close()
	}
}
