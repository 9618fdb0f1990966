package settings_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"spectra/internal/domain"
	"spectra/internal/settings"
)

func newStore(t *testing.T) *settings.Store {
	t.Helper()
	return settings.NewStore(filepath.Join(t.TempDir(), "config", "settings.json"))
}

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	s := newStore(t)

	res := s.Load()
	if res.Status != settings.StatusDefaulted {
		t.Fatalf("expected defaulted, got %s", res.Status)
	}
	if res.Record[settings.KeyDBType] != "postgres" {
		t.Errorf("expected postgres discriminator, got %v", res.Record[settings.KeyDBType])
	}
	if res.Record[settings.KeyPoolSize] != int64(8) || res.Record[settings.KeySchemaVersion] != int64(1) {
		t.Errorf("expected counters {8, 1}, got {%v, %v}",
			res.Record[settings.KeyPoolSize], res.Record[settings.KeySchemaVersion])
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("expected settings file to exist: %v", err)
	}

	// The file now holds the defaults.
	again := s.Load()
	if again.Status != settings.StatusLoaded {
		t.Fatalf("expected loaded on second read, got %s", again.Status)
	}
	if !reflect.DeepEqual(again.Record, settings.Defaults()) {
		t.Errorf("expected defaults on disk, got %v", again.Record)
	}
}

func TestLoad_EmptyFileWritesDefaults(t *testing.T) {
	s := newStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), nil, 0644); err != nil {
		t.Fatal(err)
	}

	res := s.Load()
	if res.Status != settings.StatusDefaulted {
		t.Fatalf("expected defaulted, got %s", res.Status)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"db_type": "postgres"`) {
		t.Errorf("expected indented defaults on disk, got %s", data)
	}
}

func TestLoad_MalformedFileDegrades(t *testing.T) {
	s := newStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	res := s.Load()
	if res.Status != settings.StatusDegraded {
		t.Fatalf("expected degraded, got %s", res.Status)
	}
	if res.Err == nil {
		t.Error("expected a cause on degraded load")
	}
	if len(res.Record) != 2 {
		t.Errorf("expected minimal two-key fallback, got %v", res.Record)
	}

	// The corrupt file is left in place.
	data, _ := os.ReadFile(s.Path())
	if string(data) != "{not json" {
		t.Errorf("expected corrupt file untouched, got %q", data)
	}
}

func TestSetUnset_MutationsFailOnDegradedFile(t *testing.T) {
	s := newStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("[1,2"), 0644); err != nil {
		t.Fatal(err)
	}
	if s.Set("host", "db.local") {
		t.Error("expected Set to report failure on unreadable file")
	}
	data, _ := os.ReadFile(s.Path())
	if string(data) != "[1,2" {
		t.Errorf("expected file unchanged, got %q", data)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newStore(t)
	rec := settings.Record{
		"db_type":   "sqlserver",
		"server":    "lab-01",
		"port":      int64(1433),
		"ratio":     0.5,
		"enabled":   true,
		"label":     "Spektrometer Ü <α>",
		"extra_key": "kept",
	}
	if !s.Save(rec) {
		t.Fatal("Save failed")
	}
	res := s.Load()
	if res.Status != settings.StatusLoaded {
		t.Fatalf("expected loaded, got %s", res.Status)
	}
	if !reflect.DeepEqual(res.Record, rec) {
		t.Errorf("round trip mismatch:\nwant %v\ngot  %v", rec, res.Record)
	}

	data, _ := os.ReadFile(s.Path())
	if !strings.Contains(string(data), "Spektrometer Ü <α>") {
		t.Errorf("expected non-ASCII and HTML characters unescaped, got %s", data)
	}
}

func TestSaveLoad_NumbersComeBackNormalized(t *testing.T) {
	s := newStore(t)
	rec := settings.Record{
		"port":    5432,
		"ratio":   2.0,
		"scale":   1.5,
		"small":   float32(0.1),
		"offsets": []any{1, 2.5},
		"limits":  map[string]any{"max": uint16(9)},
	}
	if !s.Save(rec) {
		t.Fatal("Save failed")
	}
	got := s.Load().Record
	want := settings.Normalize(rec)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\nwant %#v\ngot  %#v", want, got)
	}
	if want["port"] != int64(5432) || want["ratio"] != int64(2) || want["scale"] != 1.5 || want["small"] != 0.1 {
		t.Errorf("unexpected normalized numbers %#v", want)
	}
}

func TestGet_DefaultForAbsentKey(t *testing.T) {
	s := newStore(t)
	s.Load()

	if got := s.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("expected default, got %v", got)
	}
	if got := s.Get(settings.KeyHost, "x"); got != "localhost" {
		t.Errorf("expected stored value, got %v", got)
	}
	if got := s.GetInt(settings.KeyPort, 0); got != 5432 {
		t.Errorf("expected 5432, got %d", got)
	}
	if got := s.GetString(settings.KeyPort, "n/a"); got != "n/a" {
		t.Errorf("expected default for non-string value, got %q", got)
	}
}

func TestGet_RereadsDisk(t *testing.T) {
	s := newStore(t)
	s.Load()

	// Simulate an external edit.
	data, _ := json.Marshal(map[string]any{"host": "edited"})
	if err := os.WriteFile(s.Path(), data, 0644); err != nil {
		t.Fatal(err)
	}
	if got := s.GetString(settings.KeyHost, ""); got != "edited" {
		t.Errorf("expected fresh value from disk, got %q", got)
	}
}

func TestSetUnset(t *testing.T) {
	s := newStore(t)

	if !s.Set("custom", "value") {
		t.Fatal("Set failed")
	}
	if got := s.Get("custom", nil); got != "value" {
		t.Errorf("expected value, got %v", got)
	}
	// Defaults were materialized by the first read-modify-write.
	if got := s.GetString(settings.KeyDBType, ""); got != "postgres" {
		t.Errorf("expected defaults kept, got %q", got)
	}

	if !s.Unset("custom") {
		t.Fatal("Unset failed")
	}
	if got := s.Get("custom", "gone"); got != "gone" {
		t.Errorf("expected key removed, got %v", got)
	}
}

func TestProfile_Shapes(t *testing.T) {
	tests := []struct {
		name string
		rec  settings.Record
		want domain.Profile
	}{
		{
			name: "postgres",
			rec: settings.Record{
				"db_type": "postgres", "host": "pg", "port": int64(5433),
				"database": "lab", "user": "u", "password": "p", "server": "ignored",
			},
			want: domain.Profile{
				Driver: domain.DatabaseDriverPostgres, Host: "pg", Port: 5433,
				Database: "lab", User: "u", Password: "p",
			},
		},
		{
			name: "sqlserver via odbc alias",
			rec: settings.Record{
				"db_type": "odbc", "server": "sql01", "port": "1433",
				"database": "lab", "user": "sa", "password": "pw", "driver": "ODBC Driver 18",
				"host": "ignored",
			},
			want: domain.Profile{
				Driver: domain.DatabaseDriverSQLServer, Server: "sql01", Port: 1433,
				Database: "lab", User: "sa", Password: "pw", ODBCDriver: "ODBC Driver 18",
			},
		},
		{
			name: "sqlite",
			rec:  settings.Record{"db_type": "sqlite", "database": "/tmp/x.db", "user": "ignored"},
			want: domain.Profile{Driver: domain.DatabaseDriverSQLite, Database: "/tmp/x.db"},
		},
		{
			name: "unknown discriminator falls back to postgres",
			rec:  settings.Record{"db_type": "oracle", "host": "h"},
			want: domain.Profile{Driver: domain.DatabaseDriverPostgres, Host: "h"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := settings.ProfileFrom(tt.rec); got != tt.want {
				t.Errorf("want %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestWatch_ExternalEdit(t *testing.T) {
	s := newStore(t)
	s.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan settings.LoadResult, 4)
	if err := s.Watch(ctx, func(res settings.LoadResult) { changed <- res }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	other := settings.NewStore(s.Path())
	if !other.Set(settings.KeyHost, "remote") {
		t.Fatal("Set failed")
	}

	select {
	case res := <-changed:
		if res.Record[settings.KeyHost] != "remote" {
			t.Errorf("expected new host, got %v", res.Record[settings.KeyHost])
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}
