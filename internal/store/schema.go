package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	accountmodel "parley/internal/account/model"
	channelmodel "parley/internal/channel/model"
)

// Tables lists every model, dependency order, leaves first.
func Tables() []any {
	return []any{
		(*accountmodel.Account)(nil),
		(*channelmodel.Channel)(nil),
		(*channelmodel.Membership)(nil),
		(*channelmodel.Message)(nil),
	}
}

// CreateTables bootstraps the schema. Used by tests and embedders; this is
// deliberately not a migration framework.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, t := range Tables() {
		if _, err := db.NewCreateTable().Model(t).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, "store.CreateTables %T: ", t)
		}
	}
	return nil
}
