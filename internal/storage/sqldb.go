package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dmml/internal/config"
)

// Pool option keys understood by the database/sql backends.
const (
	OptMaxOpenConns    = "max_open_conns"
	OptMaxIdleConns    = "max_idle_conns"
	OptConnMaxLifetime = "conn_max_lifetime"
	OptPingTimeout     = "ping_timeout"
)

// OpenDB opens a database/sql handle for driver, applies the pool options and
// pings it so that bad DSNs fail at startup.
func OpenDB(ctx context.Context, driver, dsn string, opts config.Options) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if n := opts.Int(OptMaxOpenConns, 0); n > 0 {
		db.SetMaxOpenConns(n)
	}
	if n := opts.Int(OptMaxIdleConns, 0); n > 0 {
		db.SetMaxIdleConns(n)
	}
	if d := opts.Duration(OptConnMaxLifetime, 0); d > 0 {
		db.SetConnMaxLifetime(d)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.Duration(OptPingTimeout, 5*time.Second))
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}
