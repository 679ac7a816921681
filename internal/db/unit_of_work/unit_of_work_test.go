package uow

import (
	"accounts/internal/core/domain/account"
	c "accounts/internal/core/domain/common"
	"accounts/internal/db"
	dbaccount "accounts/internal/db/account"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

const EMAIL = c.Email("user1@mail.com")

type testSuite struct {
	suite.Suite
	pool     *pgxpool.Pool
	uow      *PgxUnitOfWork
	accounts *dbaccount.PgxAccountRepository
}

func (suite *testSuite) SetupSuite() {
	suite.pool = db.CreateTestPool(suite.T())
	suite.uow = NewPgxUnitOfWork(suite.pool)
	suite.accounts = dbaccount.NewPgxRepository(suite.pool)
}

func (suite *testSuite) TearDownSuite() {
	suite.pool.Close()
}

func (suite *testSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxUnitOfWork(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func pendingInput(token string) account.CreatePendingInput {
	return account.CreatePendingInput{
		Username:        "user1",
		Email:           EMAIL,
		PasswordHash:    "password-hash",
		ActivationToken: account.ActivationToken(token),
		CreatedAt:       time.Now().UTC(),
	}
}

func (s *testSuite) TestUncommittedAccountIsInvisible() {
	ctx := context.Background()
	uow, err := s.uow.Begin(ctx)
	s.Require().Nil(err)
	defer uow.Rollback(ctx)

	created, err := uow.Accounts().CreatePending(ctx, pendingInput("token"))
	s.Require().Nil(err)

	_, err = uow.Accounts().GetByEmail(ctx, EMAIL)
	s.Nil(err)

	_, err = s.accounts.GetByEmail(ctx, EMAIL)
	s.True(errors.Is(err, account.ErrAccountDoesNotExist))

	s.Require().Nil(uow.Commit(ctx))

	a, err := s.accounts.GetByEmail(ctx, EMAIL)
	s.Nil(err)
	s.Equal(created.ID, a.ID)
}

func (s *testSuite) TestRollbackDiscardsAccount() {
	ctx := context.Background()
	uow, err := s.uow.Begin(ctx)
	s.Require().Nil(err)

	_, err = uow.Accounts().CreatePending(ctx, pendingInput("token"))
	s.Require().Nil(err)
	s.Require().Nil(uow.Rollback(ctx))

	_, err = s.accounts.GetByEmail(ctx, EMAIL)
	s.True(errors.Is(err, account.ErrAccountDoesNotExist))

	_, err = s.accounts.CreatePending(ctx, pendingInput("token"))
	s.Nil(err)
}

func (s *testSuite) TestRollbackAfterCommit() {
	ctx := context.Background()
	uow, err := s.uow.Begin(ctx)
	s.Require().Nil(err)

	_, err = uow.Accounts().CreatePending(ctx, pendingInput("token"))
	s.Require().Nil(err)
	s.Require().Nil(uow.Commit(ctx))

	s.Nil(uow.Rollback(ctx))
	_, err = s.accounts.GetByEmail(ctx, EMAIL)
	s.Nil(err)
}

func (s *testSuite) TestConcurrentRegistrationsWithSameEmail() {
	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			ctx := context.Background()
			uow, err := s.uow.Begin(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			defer uow.Rollback(ctx)

			_, err = uow.Accounts().CreatePending(ctx, pendingInput(fmt.Sprintf("token-%d", i)))
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = uow.Commit(ctx)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(errors.Is(err, account.ErrEmailAlreadyExists))
	}
	s.Equal(1, succeeded)
}

func (s *testSuite) TestSameEmailInsertWaitsForRolledBackTransaction() {
	ctx := context.Background()
	first, err := s.uow.Begin(ctx)
	s.Require().Nil(err)
	defer first.Rollback(ctx)
	_, err = first.Accounts().CreatePending(ctx, pendingInput("token-1"))
	s.Require().Nil(err)

	secondErr := make(chan error, 1)
	go func() {
		second, err := s.uow.Begin(ctx)
		if err != nil {
			secondErr <- err
			return
		}
		defer second.Rollback(ctx)

		if _, err = second.Accounts().CreatePending(ctx, pendingInput("token-2")); err != nil {
			secondErr <- err
			return
		}
		secondErr <- second.Commit(ctx)
	}()

	select {
	case err := <-secondErr:
		s.FailNow("second insert did not wait for the first transaction", "err: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	s.Require().Nil(first.Rollback(ctx))

	s.Require().Nil(<-secondErr)
	a, err := s.accounts.GetByEmail(ctx, EMAIL)
	s.Require().Nil(err)
	s.Equal(account.ActivationToken("token-2"), a.ActivationToken.Value)
}
