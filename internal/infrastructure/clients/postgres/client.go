// Package postgres owns the relational store connection. Production runs on
// PostgreSQL; DB_DRIVER=sqlite swaps in an embedded SQLite file for local
// development and tests, behind the same Client.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/cityexplorer/backend/pkg/config"
	"github.com/cityexplorer/backend/pkg/retry"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Client represents a relational database client
type Client struct {
	db      *sql.DB
	driver  string
	dialect goqu.DialectWrapper
}

// NewClient opens the configured database and verifies it with exponential backoff
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open(sqlDriverName(cfg.Driver), cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 25
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	logger := log.With().Str("driver", cfg.Driver).Logger()
	err = retry.DoWithLog(ctx, retry.DefaultConfig(), cfg.Driver, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}, &logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s after retries: %w", cfg.Driver, err)
	}

	logger.Info().Msg("database connection established")
	return NewFromDB(db, cfg.Driver), nil
}

// NewFromDB wraps an already opened handle
func NewFromDB(db *sql.DB, driver string) *Client {
	return &Client{
		db:      db,
		driver:  driver,
		dialect: goqu.Dialect(goquDialectName(driver)),
	}
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Driver returns the configured driver name
func (c *Client) Driver() string {
	return c.driver
}

// Dialect returns the goqu dialect matching the driver
func (c *Client) Dialect() goqu.DialectWrapper {
	return c.dialect
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// BeginTx starts a new transaction
func (c *Client) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// EnsureSchema creates the location and resource tables when missing
func (c *Client) EnsureSchema(ctx context.Context) error {
	raw, err := schemaFS.ReadFile("schema/" + schemaFile(c.driver))
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func sqlDriverName(driver string) string {
	if driver == config.DriverSQLite {
		return "sqlite"
	}
	return "postgres"
}

func goquDialectName(driver string) string {
	if driver == config.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

func schemaFile(driver string) string {
	if driver == config.DriverSQLite {
		return "sqlite.sql"
	}
	return "postgres.sql"
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
