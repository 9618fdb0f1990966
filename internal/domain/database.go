package domain

import (
	"bytes"
	"encoding/json"
)

// DatabaseDriver represents the type of database engine selected by the
// db_type discriminator in the settings file.
type DatabaseDriver string

const (
	DatabaseDriverPostgres  DatabaseDriver = "postgres"
	DatabaseDriverSQLServer DatabaseDriver = "sqlserver"
	DatabaseDriverMySQL     DatabaseDriver = "mysql"
	DatabaseDriverSQLite    DatabaseDriver = "sqlite"
)

// Profile is the read-only connection view derived from the settings record.
// Which fields matter depends on Driver: postgres/mysql use Host, sqlserver
// uses Server and ODBCDriver, sqlite uses Database as a file path.
type Profile struct {
	Driver     DatabaseDriver `json:"driver"`
	Host       string         `json:"host,omitempty"`
	Server     string         `json:"server,omitempty"`
	Port       int            `json:"port,omitempty"`
	Database   string         `json:"database"`
	User       string         `json:"user,omitempty"`
	Password   string         `json:"-"`
	ODBCDriver string         `json:"odbcDriver,omitempty"`
}

// Row is one query result record. Columns keep the order of the projection.
type Row struct {
	cols []string
	vals []any
}

// NewRow zips column names with values positionally.
// Extra values or columns beyond the shorter slice are dropped.
func NewRow(cols []string, vals []any) Row {
	n := len(cols)
	if len(vals) < n {
		n = len(vals)
	}
	return Row{cols: cols[:n:n], vals: vals[:n:n]}
}

// Columns returns the column names in projection order.
func (r Row) Columns() []string { return r.cols }

// Values returns the values in projection order.
func (r Row) Values() []any { return r.vals }

// Len returns the number of columns.
func (r Row) Len() int { return len(r.cols) }

// Get returns the value for a column name.
func (r Row) Get(col string) (any, bool) {
	for i, c := range r.cols {
		if c == col {
			return r.vals[i], true
		}
	}
	return nil, false
}

// Map converts the row into a plain map (order is lost).
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.cols))
	for i, c := range r.cols {
		m[c] = r.vals[i]
	}
	return m
}

// MarshalJSON encodes the row as an object whose keys follow column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.vals[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
