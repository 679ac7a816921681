package account

import (
	c "accounts/internal/core/domain/common"
	"context"
	"time"
)

type CreatePendingInput struct {
	Username        Username
	Email           c.Email
	PasswordHash    PasswordHash
	ActivationToken ActivationToken
	CreatedAt       time.Time
}

type ReadOptions struct {
	Limit  uint
	Offset uint
}

type Repository interface {
	// CreatePending fails with ErrEmailAlreadyExists when the email is taken.
	// The uniqueness check and the insert are a single store operation.
	CreatePending(ctx context.Context, input CreatePendingInput) (Account, error)
	GetByEmail(ctx context.Context, email c.Email) (Account, error)
	GetByActivationToken(ctx context.Context, token ActivationToken) (Account, error)
	// Activate returns ErrAccountDoesNotExist if there is no pending account
	// with the ID.
	Activate(ctx context.Context, id ID, at time.Time) (Account, error)
	ReadActive(ctx context.Context, options ReadOptions) ([]Summary, error)
	CountActive(ctx context.Context) (uint, error)
}
