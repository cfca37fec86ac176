package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"parley/config"
)

// NewDB opens a bun handle over Postgres. The store contract this codebase
// relies on: conditional creates via unique indexes, multi-record atomicity
// via transactions, and live change feeds via LISTEN/NOTIFY.
func NewDB(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Bun.DSN))
	sqldb := sql.OpenDB(connector)
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store.NewDB.Ping: ")
	}
	return db, nil
}
