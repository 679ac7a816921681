package uow

import (
	"accounts/internal/core/domain/account"
	"context"
)

// Context is an open transaction. Changes made through its repositories
// are invisible to other callers until Commit; Rollback discards them.
type Context interface {
	Rollback(ctx context.Context) error
	Commit(ctx context.Context) error

	Accounts() account.Repository
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Context, error)
}
