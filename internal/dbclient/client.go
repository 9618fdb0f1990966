package dbclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"spectra/internal/domain"
)

const defaultPoolSize = 5

// Client is the data-access wrapper shared by the pages and the lookup cache.
// Queries are written with '?' placeholders; the dialect rewrites them.
type Client struct {
	dialect  Dialect
	profile  domain.Profile
	poolSize int

	mu sync.Mutex
	db *sql.DB // opened lazily on first Connect
}

// New creates a Client for profile. No connection is made until the first query.
// poolSize <= 0 selects a small default suited to a desktop app.
func New(profile domain.Profile, poolSize int) (*Client, error) {
	dialect, err := DialectFor(profile.Driver)
	if err != nil {
		return nil, err
	}
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	return &Client{dialect: dialect, profile: profile, poolSize: poolSize}, nil
}

// Dialect returns the dialect chosen at construction.
func (c *Client) Dialect() Dialect { return c.dialect }

// Database returns the target database name.
func (c *Client) Database() string { return c.profile.Database }

func (c *Client) open() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db, nil
	}

	dsn, err := c.dialect.DSN(c.profile)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(c.dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.dialect.DriverName(), err)
	}
	if c.dialect.Name() == domain.DatabaseDriverSQLite {
		// SQLite only supports one writer.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(c.poolSize)
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	c.db = db
	return db, nil
}

// Connect acquires a live connection, runs fn with it and releases it on
// every exit path. Failures to connect are logged and returned wrapped in ErrConnect.
func (c *Client) Connect(ctx context.Context, fn func(conn *sql.Conn) error) error {
	db, err := c.open()
	if err != nil {
		log.Printf("[DB] %s connect: %v", c.dialect.Name(), err)
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		log.Printf("[DB] %s connect to %q: %v", c.dialect.Name(), c.profile.Database, err)
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer conn.Close()

	return fn(conn)
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.Connect(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// prepare applies placeholder rewriting. A nil params slice means the query
// is sent verbatim with no arguments.
func (c *Client) prepare(query string, params []any) (string, []any) {
	if params == nil {
		return query, nil
	}
	return c.dialect.Rebind(query), params
}

// FetchAll runs query and returns every row.
func (c *Client) FetchAll(ctx context.Context, query string, params []any) ([]domain.Row, error) {
	return c.fetch(ctx, query, params, -1)
}

// FetchOne runs query and returns the first row, or nil when nothing matched.
func (c *Client) FetchOne(ctx context.Context, query string, params []any) (*domain.Row, error) {
	rows, err := c.fetch(ctx, query, params, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// fetch reads up to limit rows; limit < 0 reads everything.
func (c *Client) fetch(ctx context.Context, query string, params []any, limit int) ([]domain.Row, error) {
	q, args := c.prepare(query, params)

	var result []domain.Row
	err := c.Connect(ctx, func(conn *sql.Conn) error {
		var err error
		result, err = queryRows(ctx, conn, q, args, limit)
		return err
	})
	if err != nil {
		log.Printf("[DB] fetch failed: %v", err)
		return nil, err
	}
	return result, nil
}

// FetchReadOnly is FetchAll inside a transaction that is always rolled back,
// so a statement that turns out to modify data leaves no trace. Where the
// driver supports it the transaction is also opened read-only and the
// server refuses writes outright.
func (c *Client) FetchReadOnly(ctx context.Context, query string, params []any) ([]domain.Row, error) {
	q, args := c.prepare(query, params)
	opts := &sql.TxOptions{ReadOnly: c.readOnlyTx()}

	var result []domain.Row
	err := c.Connect(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, opts)
		if err != nil {
			return fmt.Errorf("begin read-only tx: %w", err)
		}
		defer func() {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Printf("[DB] rollback: %v", rbErr)
			}
		}()
		result, err = queryRows(ctx, tx, q, args, -1)
		return err
	})
	if err != nil {
		log.Printf("[DB] read-only fetch failed: %v", err)
		return nil, err
	}
	return result, nil
}

// readOnlyTx reports whether the driver honours sql.TxOptions.ReadOnly.
// go-mssqldb rejects the option and SQLite has no read-only transactions.
func (c *Client) readOnlyTx() bool {
	switch c.dialect.Name() {
	case domain.DatabaseDriverPostgres, domain.DatabaseDriverMySQL:
		return true
	default:
		return false
	}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRows(ctx context.Context, q queryer, query string, args []any, limit int) ([]domain.Row, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var result []domain.Row
	for limit < 0 || len(result) < limit {
		if !rows.Next() {
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for j := range values {
			ptrs[j] = &values[j]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for j, v := range values {
			values[j] = formatValue(v)
		}
		result = append(result, domain.NewRow(cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return result, nil
}

// Execute runs a mutating statement in a transaction and returns the number
// of affected rows. On failure the transaction is rolled back and an
// *ExecError is returned.
func (c *Client) Execute(ctx context.Context, query string, params []any) (int64, error) {
	q, args := c.prepare(query, params)

	var affected int64
	err := c.Connect(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return &ExecError{Query: query, Err: fmt.Errorf("begin tx: %w", err)}
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("[DB] rollback: %v", rbErr)
			}
			return &ExecError{Query: query, Err: err}
		}
		if err := tx.Commit(); err != nil {
			return &ExecError{Query: query, Err: fmt.Errorf("commit: %w", err)}
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		log.Printf("[DB] execute failed: %v", err)
		return 0, err
	}
	return affected, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// formatValue turns driver byte slices into strings; everything else is
// returned as the driver produced it.
func formatValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
