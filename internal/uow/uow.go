package uow

import (
	"context"

	"github.com/jackc/pgx/v5"
	postgres "github.com/kirinyoku/gigbook/internal/repository/postgres"
	"github.com/kirinyoku/gigbook/internal/service/ports"
)

// UoW represents a unit of work over the Postgres store.
type UoW struct {
	store *postgres.Store
	opts  *pgx.TxOptions
}

func NewUoW(store *postgres.Store) *UoW {
	return &UoW{store: store}
}

// WithOpts returns a copy running its transactions with opts instead of the
// store default.
func (u *UoW) WithOpts(opts *pgx.TxOptions) *UoW {
	cp := *u
	cp.opts = opts
	return &cp
}

// Do runs fn inside the transaction with repositories bound to it. After a
// successful commit, it executes all after-commit hooks.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, repos ports.Repos, after func(ports.AfterCommit)) error,
) error {
	var hooks []ports.AfterCommit

	err := u.store.RunTx(ctx, u.opts, func(ctx context.Context, tx postgres.DB) error {
		return fn(ctx, u.store.Repos(tx), func(h ports.AfterCommit) {
			hooks = append(hooks, h)
		})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
