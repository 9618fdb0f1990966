package dbclient_test

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"spectra/internal/dbclient"
	"spectra/internal/domain"
)

func newSQLiteClient(t *testing.T) *dbclient.Client {
	t.Helper()
	c, err := dbclient.New(domain.Profile{
		Driver:   domain.DatabaseDriverSQLite,
		Database: filepath.Join(t.TempDir(), "lab.db"),
	}, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	if _, err := c.Execute(ctx, `CREATE TABLE product (id INTEGER PRIMARY KEY, name TEXT, ac_nmb INTEGER)`, nil); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return c
}

func TestNew_UnsupportedDriver(t *testing.T) {
	if _, err := dbclient.New(domain.Profile{Driver: "oracle"}, 0); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestClient_ExecuteAndFetch(t *testing.T) {
	c := newSQLiteClient(t)
	ctx := context.Background()

	n, err := c.Execute(ctx, `INSERT INTO product (id, name, ac_nmb) VALUES (?, ?, ?), (?, ?, ?)`,
		[]any{1, "Iron", 1, 2, "Copper", 1})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 affected rows, got %d", n)
	}

	rows, err := c.FetchAll(ctx, `SELECT name, id FROM product ORDER BY id`, []any{})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if cols := rows[0].Columns(); len(cols) != 2 || cols[0] != "name" || cols[1] != "id" {
		t.Errorf("expected projection order [name id], got %v", cols)
	}
	if v, _ := rows[1].Get("name"); v != "Copper" {
		t.Errorf("expected Copper, got %v", v)
	}
	if v, _ := rows[0].Get("id"); v != int64(1) {
		t.Errorf("expected id 1, got %#v", v)
	}
}

func TestClient_FetchOne(t *testing.T) {
	c := newSQLiteClient(t)
	ctx := context.Background()

	if _, err := c.Execute(ctx, `INSERT INTO product (id, name, ac_nmb) VALUES (?, ?, ?)`, []any{7, "Zinc", 1}); err != nil {
		t.Fatal(err)
	}

	row, err := c.FetchOne(ctx, `SELECT name FROM product WHERE id = ?`, []any{7})
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row")
	}
	if v, _ := row.Get("name"); v != "Zinc" {
		t.Errorf("expected Zinc, got %v", v)
	}

	row, err = c.FetchOne(ctx, `SELECT name FROM product WHERE id = ?`, []any{999})
	if err != nil {
		t.Fatalf("FetchOne miss: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil row on miss, got %v", row)
	}
}

func TestClient_ExecuteFailureRollsBack(t *testing.T) {
	c := newSQLiteClient(t)
	ctx := context.Background()

	if _, err := c.Execute(ctx, `INSERT INTO product (id, name) VALUES (?, ?)`, []any{1, "Iron"}); err != nil {
		t.Fatal(err)
	}
	_, err := c.Execute(ctx, `INSERT INTO product (id, name) VALUES (?, ?)`, []any{1, "Duplicate"})
	if err == nil {
		t.Fatal("expected primary key violation")
	}
	var execErr *dbclient.ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), execErr.Err.Error()) {
		t.Errorf("expected wrapped error text %q in %q", execErr.Err.Error(), err.Error())
	}

	rows, err := c.FetchAll(ctx, `SELECT name FROM product`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("expected original row only, got %d rows", len(rows))
	}
}

func TestClient_FetchReadOnlyDiscardsWrites(t *testing.T) {
	c := newSQLiteClient(t)
	ctx := context.Background()

	if _, err := c.Execute(ctx, `INSERT INTO product (id, name, ac_nmb) VALUES (1, 'Iron', 1), (2, 'Zinc', 1)`, nil); err != nil {
		t.Fatal(err)
	}

	rows, err := c.FetchReadOnly(ctx, `SELECT name FROM product WHERE ac_nmb = ? ORDER BY id`, []any{1})
	if err != nil {
		t.Fatalf("FetchReadOnly: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// A write hidden behind a CTE runs, but is rolled back.
	if _, err := c.FetchReadOnly(ctx, `WITH x AS (SELECT 1) DELETE FROM product`, nil); err != nil {
		t.Fatalf("FetchReadOnly delete: %v", err)
	}
	left, err := c.FetchAll(ctx, `SELECT id FROM product`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 2 {
		t.Errorf("expected rows to survive, got %d", len(left))
	}
}

func TestClient_ConnectFailure(t *testing.T) {
	c, err := dbclient.New(domain.Profile{Driver: domain.DatabaseDriverSQLite}, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.FetchAll(context.Background(), "SELECT 1", nil)
	if !errors.Is(err, dbclient.ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
	if !errors.Is(err, dbclient.ErrIncompleteProfile) {
		t.Errorf("expected ErrIncompleteProfile cause, got %v", err)
	}
}

func TestClient_NilParamsSentVerbatim(t *testing.T) {
	c := newSQLiteClient(t)
	// A literal '?' in a verbatim query must reach the driver untouched.
	row, err := c.FetchOne(context.Background(), `SELECT '?' AS q`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := row.Get("q"); v != "?" {
		t.Errorf("expected literal ?, got %v", v)
	}
}

func TestDialect_DSN(t *testing.T) {
	pg, _ := dbclient.DialectFor(domain.DatabaseDriverPostgres)
	dsn, err := pg.DSN(domain.Profile{Host: "pg", Database: "lab", User: "u", Password: ""})
	if err != nil {
		t.Fatal(err)
	}
	if want := "host=pg port=5432 user=u password='' dbname=lab sslmode=disable"; dsn != want {
		t.Errorf("postgres: want %q, got %q", want, dsn)
	}

	ms, _ := dbclient.DialectFor(domain.DatabaseDriverSQLServer)
	dsn, err = ms.DSN(domain.Profile{Server: "sql01", Port: 1433, Database: "lab", User: "sa", Password: "p@ss"})
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("sqlserver DSN not a URL: %v", err)
	}
	if u.Scheme != "sqlserver" || u.Host != "sql01:1433" || u.Query().Get("database") != "lab" {
		t.Errorf("sqlserver: unexpected DSN %q", dsn)
	}
	if pw, _ := u.User.Password(); pw != "p@ss" {
		t.Errorf("sqlserver: expected password preserved, got %q", pw)
	}

	my, _ := dbclient.DialectFor(domain.DatabaseDriverMySQL)
	dsn, err = my.DSN(domain.Profile{Host: "db", Database: "lab", User: "u", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dsn, "tcp(db:3306)/lab") || !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("mysql: unexpected DSN %q", dsn)
	}
}

func TestDialect_DSNIncomplete(t *testing.T) {
	for _, driver := range []domain.DatabaseDriver{
		domain.DatabaseDriverPostgres,
		domain.DatabaseDriverSQLServer,
		domain.DatabaseDriverMySQL,
		domain.DatabaseDriverSQLite,
	} {
		d, err := dbclient.DialectFor(driver)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.DSN(domain.Profile{Driver: driver}); !errors.Is(err, dbclient.ErrIncompleteProfile) {
			t.Errorf("%s: expected ErrIncompleteProfile, got %v", driver, err)
		}
	}
}
