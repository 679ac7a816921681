package account

import (
	c "accounts/internal/core/domain/common"
	e "accounts/internal/core/domain/errors"
	"fmt"
	"time"
)

type ID int64

type Username string

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

func (p PasswordHash) MarshalJSON() ([]byte, error) {
	return []byte(`"***"`), nil
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

func (p RawPassword) MarshalJSON() ([]byte, error) {
	return []byte(`"***"`), nil
}

type ActivationToken string

type Status string

const (
	Pending Status = "pending"
	Active  Status = "active"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case Pending, Active:
		return s, nil
	}
	return "", fmt.Errorf("invalid account status: %q", raw)
}

type Account struct {
	ID              ID
	Username        Username
	Email           c.Email
	PasswordHash    PasswordHash
	Status          Status
	ActivationToken c.Optional[ActivationToken]
	CreatedAt       time.Time
	ActivatedAt     c.Optional[time.Time]
}

// Validate checks that the activation token is present exactly while the
// account is pending.
func (a *Account) Validate() error {
	switch a.Status {
	case Pending:
		if !a.ActivationToken.IsPresent {
			return e.NewInvalidStateError(fmt.Sprintf("activation token is not set for pending account %d", a.ID))
		}
	case Active:
		if a.ActivationToken.IsPresent {
			return e.NewInvalidStateError(fmt.Sprintf("activation token is set for active account %d", a.ID))
		}
	default:
		return e.NewInvalidStateError(fmt.Sprintf("unknown status %q of account %d", a.Status, a.ID))
	}
	if a.PasswordHash == "" {
		return e.NewInvalidStateError(fmt.Sprintf("password hash is not set for account %d", a.ID))
	}
	return nil
}

func (a *Account) IsActive() bool {
	return a.Status == Active
}

func (a Account) Summary() Summary {
	return Summary{ID: a.ID, Username: a.Username, Email: a.Email}
}

// Summary is the public projection of an account.
type Summary struct {
	ID       ID
	Username Username
	Email    c.Email
}
