package response

import (
	"accounts/internal/core/domain/account"
)

type AccountSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (a *AccountSummary) FromDomainSummary(s account.Summary) {
	a.ID = int64(s.ID)
	a.Username = string(s.Username)
	a.Email = string(s.Email)
}
