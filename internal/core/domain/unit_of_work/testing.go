package uow

import (
	"accounts/internal/core/domain/account"
	"context"
	"fmt"
	"sync"
)

type FakeUnitOfWorkContext struct {
	AccountRepository  *account.FakeRepository
	CommitReturnsError bool
	// WasRollbackCalled is set only by a rollback that discarded changes,
	// i.e. one that happened before a successful commit.
	WasRollbackCalled bool
	WasCommitCalled   bool
	txID              int
	lock              sync.Mutex
}

func NewFakeUnitOfWorkContext(accountRepository *account.FakeRepository, txID int) *FakeUnitOfWorkContext {
	return &FakeUnitOfWorkContext{
		AccountRepository: accountRepository,
		txID:              txID,
	}
}

func (c *FakeUnitOfWorkContext) Rollback(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.WasCommitCalled || c.WasRollbackCalled {
		return nil
	}
	c.WasRollbackCalled = true
	c.AccountRepository.RollbackTx(c.txID)
	return nil
}

func (c *FakeUnitOfWorkContext) Commit(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.CommitReturnsError {
		return fmt.Errorf("could not commit transaction %d", c.txID)
	}
	if c.WasRollbackCalled {
		return fmt.Errorf("transaction %d is already rolled back", c.txID)
	}
	c.WasCommitCalled = true
	c.AccountRepository.CommitTx(c.txID)
	return nil
}

func (c *FakeUnitOfWorkContext) Accounts() account.Repository {
	return c.AccountRepository.InTx(c.txID)
}

type FakeUnitOfWork struct {
	AccountRepository  *account.FakeRepository
	Contexts           []*FakeUnitOfWorkContext
	BeginReturnsError  bool
	CommitReturnsError bool
	lock               sync.Mutex
}

func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{AccountRepository: account.NewFakeRepository()}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) (Context, error) {
	if u.BeginReturnsError {
		return nil, fmt.Errorf("could not begin transaction")
	}
	u.lock.Lock()
	defer u.lock.Unlock()
	c := NewFakeUnitOfWorkContext(u.AccountRepository, len(u.Contexts)+1)
	c.CommitReturnsError = u.CommitReturnsError
	u.Contexts = append(u.Contexts, c)
	return c, nil
}

func (u *FakeUnitOfWork) LastContext() *FakeUnitOfWorkContext {
	u.lock.Lock()
	defer u.lock.Unlock()
	l := len(u.Contexts)
	if l == 0 {
		panic("Unit of work has not been started.")
	}
	return u.Contexts[l-1]
}
