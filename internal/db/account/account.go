package account

import (
	"accounts/internal/core/domain/account"
	c "accounts/internal/core/domain/common"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/db"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"
const EMAIL_CONSTRAINT_NAME = "account_email_idx"

const accountColumns = `id, username, email, password_hash, status, activation_token, created_at, activated_at`

type PgxAccountRepository struct {
	db db.DBTX
}

func NewPgxRepository(db db.DBTX) *PgxAccountRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxAccountRepository{db: db}
}

func (r *PgxAccountRepository) CreatePending(
	ctx context.Context,
	input account.CreatePendingInput,
) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		`
		INSERT INTO account (username, email, password_hash, status, activation_token, created_at)
		VALUES ($1, $2, $3, 'pending', $4, $5)
		RETURNING `+accountColumns,
		string(input.Username),
		string(input.Email),
		string(input.PasswordHash),
		string(input.ActivationToken),
		input.CreatedAt,
	)
	a, err = scanAccount(row)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE && pgErr.ConstraintName == EMAIL_CONSTRAINT_NAME {
			return a, account.ErrEmailAlreadyExists
		}
	}
	if err != nil {
		return a, err
	}
	return a, a.Validate()
}

func (r *PgxAccountRepository) GetByEmail(ctx context.Context, email c.Email) (a account.Account, err error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM account WHERE email = $1`, string(email))
	return r.get(row)
}

func (r *PgxAccountRepository) GetByActivationToken(
	ctx context.Context,
	token account.ActivationToken,
) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+accountColumns+` FROM account WHERE activation_token = $1`,
		string(token),
	)
	return r.get(row)
}

func (r *PgxAccountRepository) Activate(
	ctx context.Context,
	id account.ID,
	at time.Time,
) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		`
		UPDATE account
		SET status = 'active', activation_token = NULL, activated_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+accountColumns,
		int64(id),
		at,
	)
	return r.get(row)
}

func (r *PgxAccountRepository) ReadActive(
	ctx context.Context,
	options account.ReadOptions,
) (summaries []account.Summary, err error) {
	rows, err := r.db.Query(
		ctx,
		`
		SELECT id, username, email
		FROM account
		WHERE status = 'active'
		ORDER BY id
		LIMIT $1 OFFSET $2
		`,
		int64(options.Limit),
		int64(options.Offset),
	)
	if err != nil {
		return summaries, err
	}
	defer rows.Close()

	summaries = make([]account.Summary, 0, options.Limit)
	for rows.Next() {
		var (
			id       int64
			username string
			email    string
		)
		if err := rows.Scan(&id, &username, &email); err != nil {
			return summaries, err
		}
		summaries = append(summaries, account.Summary{
			ID:       account.ID(id),
			Username: account.Username(username),
			Email:    c.Email(email),
		})
	}
	return summaries, rows.Err()
}

func (r *PgxAccountRepository) CountActive(ctx context.Context) (uint, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM account WHERE status = 'active'`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return uint(count), nil
}

func (r *PgxAccountRepository) get(row pgx.Row) (a account.Account, err error) {
	a, err = scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, account.ErrAccountDoesNotExist
	}
	if err != nil {
		return a, err
	}
	return a, a.Validate()
}

func scanAccount(row pgx.Row) (a account.Account, err error) {
	var (
		id              int64
		username        string
		email           string
		passwordHash    string
		status          string
		activationToken sql.NullString
		createdAt       time.Time
		activatedAt     sql.NullTime
	)
	err = row.Scan(&id, &username, &email, &passwordHash, &status, &activationToken, &createdAt, &activatedAt)
	if err != nil {
		return a, err
	}

	parsedStatus, err := account.ParseStatus(status)
	if err != nil {
		return a, fmt.Errorf("could not decode account %d: %w", id, err)
	}
	return account.Account{
		ID:              account.ID(id),
		Username:        account.Username(username),
		Email:           c.Email(email),
		PasswordHash:    account.PasswordHash(passwordHash),
		Status:          parsedStatus,
		ActivationToken: c.NewOptional(account.ActivationToken(activationToken.String), activationToken.Valid),
		CreatedAt:       createdAt,
		ActivatedAt:     c.NewOptional(activatedAt.Time, activatedAt.Valid),
	}, nil
}
