package account

import (
	c "accounts/internal/core/domain/common"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"
	"time"
)

type FakeActivationNoticeSender struct {
	Sent        []Account
	ReturnError bool
	// OnSend is called before the result is decided, while the caller still
	// holds its unit of work open. A non-nil error fails the send.
	OnSend func(account Account) error
	lock   sync.Mutex
}

func NewFakeActivationNoticeSender() *FakeActivationNoticeSender {
	return &FakeActivationNoticeSender{}
}

func (s *FakeActivationNoticeSender) SendActivationNotice(ctx context.Context, account Account) error {
	if s.OnSend != nil {
		if err := s.OnSend(account); err != nil {
			return err
		}
	}
	if s.ReturnError {
		return fmt.Errorf("could not send activation notice to %v", account.Email)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, account)
	return nil
}

func (s *FakeActivationNoticeSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}

func (s *FakeActivationNoticeSender) LastSentTo() Account {
	s.lock.Lock()
	defer s.lock.Unlock()
	l := len(s.Sent)
	if l == 0 {
		panic("Sent count is 0.")
	}
	return s.Sent[l-1]
}

type FakeActivationTokenGenerator struct {
	Token ActivationToken
	// Unique appends a counter to Token so that every call returns a new value.
	Unique bool
	count  int
	lock   sync.Mutex
}

func NewFakeActivationTokenGenerator(token string) *FakeActivationTokenGenerator {
	return &FakeActivationTokenGenerator{Token: ActivationToken(token)}
}

func (g *FakeActivationTokenGenerator) GenerateActivationToken() ActivationToken {
	if !g.Unique {
		return g.Token
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	g.count++
	return ActivationToken(fmt.Sprintf("%s-%d", g.Token, g.count))
}

type FakePasswordHasher struct {
	ReturnError bool
}

func NewFakePasswordHasher() *FakePasswordHasher {
	return &FakePasswordHasher{}
}

func (h *FakePasswordHasher) HashPassword(password RawPassword) (PasswordHash, error) {
	if h.ReturnError {
		return "", fmt.Errorf("could not hash password")
	}
	hash := md5.New()
	io.WriteString(hash, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash.Sum(nil))), nil
}

func (h *FakePasswordHasher) ValidatePassword(password RawPassword, hash PasswordHash) bool {
	actualHash, err := h.HashPassword(password)
	if err != nil {
		return false
	}
	return actualHash == hash
}

// committed marks rows that are visible outside of any transaction.
const committed = 0

type fakeRow struct {
	account Account
	txID    int
}

// FakeRepository keeps accounts in memory and emulates transaction
// visibility: rows created within a transaction are seen only by that
// transaction until CommitTx. Uniqueness behaves like a unique index: an
// insert conflicting with a row of another open transaction waits until
// that transaction ends, then fails only if the row was committed.
type FakeRepository struct {
	CreateReturnsError bool
	ReadReturnsError   bool
	rows               []fakeRow
	lastID             ID
	lock               sync.Mutex
	txEnded            *sync.Cond
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{rows: make([]fakeRow, 0, 10)}
}

// InTx returns a view of the repository bound to the transaction.
func (r *FakeRepository) InTx(txID int) Repository {
	if txID == committed {
		panic("transaction ID must not be 0")
	}
	return &fakeTxRepository{repo: r, txID: txID}
}

func (r *FakeRepository) CommitTx(txID int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix := range r.rows {
		if r.rows[ix].txID == txID {
			r.rows[ix].txID = committed
		}
	}
	r.txEndedCond().Broadcast()
}

func (r *FakeRepository) RollbackTx(txID int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	rows := r.rows[:0]
	for _, row := range r.rows {
		if row.txID != txID {
			rows = append(rows, row)
		}
	}
	r.rows = rows
	r.txEndedCond().Broadcast()
}

// txEndedCond must be called with r.lock held.
func (r *FakeRepository) txEndedCond() *sync.Cond {
	if r.txEnded == nil {
		r.txEnded = sync.NewCond(&r.lock)
	}
	return r.txEnded
}

// Add stores a committed account as is, assigning a new ID.
func (r *FakeRepository) Add(a Account) Account {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.lastID++
	a.ID = r.lastID
	r.rows = append(r.rows, fakeRow{account: a, txID: committed})
	return a
}

// All returns committed accounts.
func (r *FakeRepository) All() []Account {
	r.lock.Lock()
	defer r.lock.Unlock()
	accounts := make([]Account, 0, len(r.rows))
	for _, row := range r.rows {
		if row.txID == committed {
			accounts = append(accounts, row.account)
		}
	}
	return accounts
}

func (r *FakeRepository) CreatePending(ctx context.Context, input CreatePendingInput) (Account, error) {
	return r.createPending(committed, input)
}

func (r *FakeRepository) GetByEmail(ctx context.Context, email c.Email) (Account, error) {
	return r.find(committed, func(a Account) bool { return a.Email == email })
}

func (r *FakeRepository) GetByActivationToken(ctx context.Context, token ActivationToken) (Account, error) {
	return r.find(committed, func(a Account) bool {
		return a.ActivationToken.IsPresent && a.ActivationToken.Value == token
	})
}

func (r *FakeRepository) Activate(ctx context.Context, id ID, at time.Time) (Account, error) {
	return r.activate(committed, id, at)
}

func (r *FakeRepository) ReadActive(ctx context.Context, options ReadOptions) ([]Summary, error) {
	return r.readActive(committed, options)
}

func (r *FakeRepository) CountActive(ctx context.Context) (uint, error) {
	return r.countActive(committed)
}

func (r *FakeRepository) visible(row fakeRow, txID int) bool {
	return row.txID == committed || row.txID == txID
}

func (r *FakeRepository) createPending(txID int, input CreatePendingInput) (a Account, err error) {
	if r.CreateReturnsError {
		return a, fmt.Errorf("could not create account %v", input.Email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for {
		conflict, found := r.conflicting(input)
		if !found {
			break
		}
		if r.visible(conflict, txID) {
			if conflict.account.Email == input.Email {
				return a, ErrEmailAlreadyExists
			}
			return a, fmt.Errorf("activation token %v already exists", input.ActivationToken)
		}
		r.txEndedCond().Wait()
	}
	r.lastID++
	a = Account{
		ID:              r.lastID,
		Username:        input.Username,
		Email:           input.Email,
		PasswordHash:    input.PasswordHash,
		Status:          Pending,
		ActivationToken: c.NewOptional(input.ActivationToken, true),
		CreatedAt:       input.CreatedAt,
	}
	r.rows = append(r.rows, fakeRow{account: a, txID: txID})
	return a, nil
}

func (r *FakeRepository) conflicting(input CreatePendingInput) (fakeRow, bool) {
	for _, row := range r.rows {
		if row.account.Email == input.Email {
			return row, true
		}
		if row.account.ActivationToken.IsPresent && row.account.ActivationToken.Value == input.ActivationToken {
			return row, true
		}
	}
	return fakeRow{}, false
}

func (r *FakeRepository) find(txID int, match func(a Account) bool) (a Account, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, row := range r.rows {
		if r.visible(row, txID) && match(row.account) {
			return row.account, nil
		}
	}
	return a, ErrAccountDoesNotExist
}

func (r *FakeRepository) activate(txID int, id ID, at time.Time) (a Account, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, row := range r.rows {
		if r.visible(row, txID) && row.account.ID == id && row.account.Status == Pending {
			r.rows[ix].account.Status = Active
			r.rows[ix].account.ActivationToken = c.NewOptional(ActivationToken(""), false)
			r.rows[ix].account.ActivatedAt = c.NewOptional(at, true)
			return r.rows[ix].account, nil
		}
	}
	return a, ErrAccountDoesNotExist
}

func (r *FakeRepository) readActive(txID int, options ReadOptions) ([]Summary, error) {
	if r.ReadReturnsError {
		return nil, fmt.Errorf("could not read active accounts")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	summaries := make([]Summary, 0, options.Limit)
	skipped := uint(0)
	for _, row := range r.rows {
		if !r.visible(row, txID) || !row.account.IsActive() {
			continue
		}
		if skipped < options.Offset {
			skipped++
			continue
		}
		if uint(len(summaries)) >= options.Limit {
			break
		}
		summaries = append(summaries, row.account.Summary())
	}
	return summaries, nil
}

func (r *FakeRepository) countActive(txID int) (uint, error) {
	if r.ReadReturnsError {
		return 0, fmt.Errorf("could not count active accounts")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	count := uint(0)
	for _, row := range r.rows {
		if r.visible(row, txID) && row.account.IsActive() {
			count++
		}
	}
	return count, nil
}

type fakeTxRepository struct {
	repo *FakeRepository
	txID int
}

func (r *fakeTxRepository) CreatePending(ctx context.Context, input CreatePendingInput) (Account, error) {
	return r.repo.createPending(r.txID, input)
}

func (r *fakeTxRepository) GetByEmail(ctx context.Context, email c.Email) (Account, error) {
	return r.repo.find(r.txID, func(a Account) bool { return a.Email == email })
}

func (r *fakeTxRepository) GetByActivationToken(ctx context.Context, token ActivationToken) (Account, error) {
	return r.repo.find(r.txID, func(a Account) bool {
		return a.ActivationToken.IsPresent && a.ActivationToken.Value == token
	})
}

func (r *fakeTxRepository) Activate(ctx context.Context, id ID, at time.Time) (Account, error) {
	return r.repo.activate(r.txID, id, at)
}

func (r *fakeTxRepository) ReadActive(ctx context.Context, options ReadOptions) ([]Summary, error) {
	return r.repo.readActive(r.txID, options)
}

func (r *fakeTxRepository) CountActive(ctx context.Context) (uint, error) {
	return r.repo.countActive(r.txID)
}
