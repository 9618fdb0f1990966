package dbclient

import (
	"testing"
)

func TestRebind_Postgres(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"no placeholders", "SELECT 1", "SELECT 1"},
		{"in order", "SELECT * FROM t WHERE a = ? AND b = ? OR c = ?", "SELECT * FROM t WHERE a = $1 AND b = $2 OR c = $3"},
		{"skips string literal", "SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
		{"escaped quote in literal", "SELECT 'it''s ?' WHERE a = ?", "SELECT 'it''s ?' WHERE a = $1"},
		{"skips quoted identifier", `SELECT "col?" FROM t WHERE a = ?`, `SELECT "col?" FROM t WHERE a = $1`},
		{"skips line comment", "SELECT a -- why?\nFROM t WHERE a = ?", "SELECT a -- why?\nFROM t WHERE a = $1"},
		{"trailing comment", "SELECT ? -- done?", "SELECT $1 -- done?"},
		{"skips block comment", "SELECT /* why? */ name FROM product WHERE id = ?", "SELECT /* why? */ name FROM product WHERE id = $1"},
		{"multi-line block comment", "SELECT ? /* a?\nb? */, ?", "SELECT $1 /* a?\nb? */, $2"},
		{"unterminated block comment", "SELECT ? /* open?", "SELECT $1 /* open?"},
	}
	d := postgresDialect{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Rebind(tt.query); got != tt.want {
				t.Errorf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRebind_SQLServer(t *testing.T) {
	got := sqlServerDialect{}.Rebind("UPDATE t SET a = ?, b = ? WHERE id = ?")
	want := "UPDATE t SET a = @p1, b = @p2 WHERE id = @p3"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestRebind_PassthroughDialects(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ?"
	for _, d := range []Dialect{mysqlDialect{}, sqliteDialect{}} {
		if got := d.Rebind(q); got != q {
			t.Errorf("%s: expected query unchanged, got %q", d.Name(), got)
		}
	}
}

func TestRebind_TenPlusParams(t *testing.T) {
	q := "VALUES (?,?,?,?,?,?,?,?,?,?,?)"
	want := "VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)"
	if got := (postgresDialect{}).Rebind(q); got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
