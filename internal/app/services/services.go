package services

import (
	"accounts/internal/app/deps"
	"accounts/internal/core/services"
	activateaccount "accounts/internal/core/services/activate_account"
	listactiveaccounts "accounts/internal/core/services/list_active_accounts"
	registeraccount "accounts/internal/core/services/register_account"
)

type Services struct {
	RegisterAccount    services.Service[registeraccount.Input, registeraccount.Result]
	ActivateAccount    services.Service[activateaccount.Input, activateaccount.Result]
	ListActiveAccounts services.Service[listactiveaccounts.Input, listactiveaccounts.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.RegisterAccount = registeraccount.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.PasswordHasher,
		deps.ActivationTokenGenerator,
		deps.ActivationNoticeSender,
		deps.Now,
	)
	s.ActivateAccount = activateaccount.New(
		deps.Logger,
		deps.AccountRepository,
		deps.Now,
	)
	s.ListActiveAccounts = listactiveaccounts.New(
		deps.Logger,
		deps.AccountRepository,
		deps.Config.DefaultPageSize,
	)

	return s
}
