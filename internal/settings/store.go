package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Record is the whole settings file: string keys to JSON values.
// Unknown keys are preserved across writes. A loaded record holds numbers
// as int64 when they are integral and float64 otherwise; Normalize gives
// any record that shape.
type Record map[string]any

// Status tells how a record was obtained by Load.
type Status int

const (
	// StatusLoaded means the file existed and parsed.
	StatusLoaded Status = iota
	// StatusDefaulted means the file was missing or empty and the default
	// record was written in its place.
	StatusDefaulted
	// StatusDegraded means the file could not be read or parsed; the minimal
	// fallback record was returned and the file was left alone.
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusDefaulted:
		return "defaulted"
	case StatusDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// LoadResult carries the record together with how it was obtained.
type LoadResult struct {
	Record Record
	Status Status
	Err    error // cause when Status is StatusDegraded
}

// Settings keys.
const (
	KeyDBType        = "db_type"
	KeyHost          = "host"
	KeyServer        = "server"
	KeyPort          = "port"
	KeyDatabase      = "database"
	KeyUser          = "user"
	KeyPassword      = "password"
	KeyDriver        = "driver"
	KeyPoolSize      = "pool_size"
	KeySchemaVersion = "schema_version"
	KeyLookupReset   = "lookup_reset"
)

// Defaults returns the record written on first run.
func Defaults() Record {
	return Record{
		KeyDBType:        "postgres",
		KeyHost:          "localhost",
		KeyPort:          int64(5432),
		KeyDatabase:      "spectra",
		KeyUser:          "postgres",
		KeyPassword:      "",
		KeyServer:        "localhost",
		KeyDriver:        "ODBC Driver 17 for SQL Server",
		KeyPoolSize:      int64(8),
		KeySchemaVersion: int64(1),
		KeyLookupReset:   "",
	}
}

// Fallback returns the minimal record handed out when the file is unreadable.
func Fallback() Record {
	return Record{
		KeyDBType: "postgres",
		KeyHost:   "localhost",
	}
}

// Store is a JSON-file backed key-value settings store.
// Every read goes to disk; every mutation is a whole-file read-modify-write.
type Store struct {
	path string
	mu   sync.Mutex // serializes read-modify-write within this process
}

// NewStore creates a Store for the file at path. Nothing is read yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing or empty file is replaced by the
// default record. Read or parse failures are logged and yield the minimal
// fallback record. Load never fails.
func (s *Store) Load() LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() LoadResult {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) || (err == nil && len(bytes.TrimSpace(data)) == 0) {
		rec := Defaults()
		if werr := s.writeLocked(rec); werr != nil {
			log.Printf("[SETTINGS] write defaults to %s: %v", s.path, werr)
		}
		return LoadResult{Record: rec, Status: StatusDefaulted}
	}
	if err != nil {
		log.Printf("[SETTINGS] read %s: %v", s.path, err)
		return LoadResult{Record: Fallback(), Status: StatusDegraded, Err: err}
	}

	rec, err := decode(data)
	if err != nil {
		log.Printf("[SETTINGS] parse %s: %v", s.path, err)
		return LoadResult{Record: Fallback(), Status: StatusDegraded, Err: err}
	}
	return LoadResult{Record: rec, Status: StatusLoaded}
}

// Get re-reads the file and returns the value for key, or def when absent.
func (s *Store) Get(key string, def any) any {
	rec := s.Load().Record
	if v, ok := rec[key]; ok {
		return v
	}
	return def
}

// GetString is Get for string values. Non-string values yield def.
func (s *Store) GetString(key, def string) string {
	if v, ok := s.Get(key, def).(string); ok {
		return v
	}
	return def
}

// GetInt is Get for integer values. Strings holding a number are accepted.
func (s *Store) GetInt(key string, def int) int {
	return toInt(s.Get(key, def), def)
}

// Set stores value under key. Failures are logged and the file is left as it
// was; the return value reports whether the write happened.
func (s *Store) Set(key string, value any) bool {
	return s.mutate(func(rec Record) { rec[key] = value })
}

// Unset removes key. Same failure policy as Set.
func (s *Store) Unset(key string) bool {
	return s.mutate(func(rec Record) { delete(rec, key) })
}

// Save replaces the whole record. Same failure policy as Set.
func (s *Store) Save(rec Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeLocked(rec); err != nil {
		log.Printf("[SETTINGS] save %s: %v", s.path, err)
		return false
	}
	return true
}

func (s *Store) mutate(fn func(Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.loadLocked()
	if res.Status == StatusDegraded {
		// Writing the fallback would wipe whatever is recoverable on disk.
		log.Printf("[SETTINGS] refusing to modify unreadable %s", s.path)
		return false
	}
	fn(res.Record)
	if err := s.writeLocked(res.Record); err != nil {
		log.Printf("[SETTINGS] write %s: %v", s.path, err)
		return false
	}
	return true
}

// writeLocked writes rec to a temp file next to the target and renames it
// into place, so a failed write never leaves a truncated settings file.
func (s *Store) writeLocked(rec Record) error {
	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// encode writes indented JSON with non-ASCII and HTML characters unescaped.
func encode(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode parses a JSON object, turning integral numbers into int64.
func decode(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("settings file is not a JSON object")
	}
	return Normalize(raw), nil
}

// Normalize returns a copy of rec with numbers in the form Load produces
// them: int64 for integral values, float64 for the rest. Nested objects and
// arrays are converted too. Saving rec and loading it back yields
// Normalize(rec).
func Normalize(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case Record:
		return map[string]any(Normalize(n))
	case map[string]any:
		return map[string]any(Normalize(n))
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = normalize(e)
		}
		return out
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return normalizeUint(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return normalizeUint(n)
	case float32:
		// Encoded with float32 precision, read back as float64.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(n), 'g', -1, 32), 64)
		return normalizeFloat(f)
	case float64:
		return normalizeFloat(n)
	}
	return v
}

func normalizeUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return float64(u)
}

// normalizeFloat mirrors encoding/json: integral values below 1e21 are
// written without an exponent and so read back as int64 when they fit.
func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}
