package settings

import (
	"strconv"
	"strings"

	"spectra/internal/domain"
)

// Profile derives the connection profile from the current record.
// The db_type discriminator picks the shape; unknown values fall back to postgres.
func (s *Store) Profile() domain.Profile {
	return ProfileFrom(s.Load().Record)
}

// ProfileFrom derives a connection profile from rec without touching disk.
func ProfileFrom(rec Record) domain.Profile {
	driver := ParseDriver(str(rec, KeyDBType))
	p := domain.Profile{
		Driver:   driver,
		Database: str(rec, KeyDatabase),
		User:     str(rec, KeyUser),
		Password: str(rec, KeyPassword),
		Port:     toInt(rec[KeyPort], 0),
	}
	switch driver {
	case domain.DatabaseDriverSQLServer:
		p.Server = str(rec, KeyServer)
		p.ODBCDriver = str(rec, KeyDriver)
	case domain.DatabaseDriverSQLite:
		p.User, p.Password, p.Port = "", "", 0
	default:
		p.Host = str(rec, KeyHost)
	}
	return p
}

// ParseDriver maps a discriminator value (and its common aliases) to a driver.
func ParseDriver(v string) domain.DatabaseDriver {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sqlserver", "mssql", "odbc":
		return domain.DatabaseDriverSQLServer
	case "mysql", "mariadb":
		return domain.DatabaseDriverMySQL
	case "sqlite", "sqlite3":
		return domain.DatabaseDriverSQLite
	default:
		return domain.DatabaseDriverPostgres
	}
}

func str(rec Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return toString(v)
	}
}

func toString(v any) string {
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return ""
	}
}

func toInt(v any, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}
