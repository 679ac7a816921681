package activateaccount

import (
	"accounts/internal/core/domain/account"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/domain/logging"
	"accounts/internal/core/services"
	"context"
	"errors"
	"time"
)

type Input struct {
	ActivationToken account.ActivationToken
}

type Result struct {
	Account account.Account
}

type service struct {
	log               logging.Logger
	accountRepository account.Repository
	now               func() time.Time
}

func New(
	log logging.Logger,
	accountRepository account.Repository,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if accountRepository == nil {
		panic(e.NewNilArgumentError("accountRepository"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:               log,
		accountRepository: accountRepository,
		now:               now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if input.ActivationToken == "" {
		return result, account.ErrInvalidActivationToken
	}

	a, err := s.accountRepository.GetByActivationToken(ctx, input.ActivationToken)
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		s.log.Info(ctx, "Activation token not found.")
		return result, account.ErrInvalidActivationToken
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get account by activation token.",
			logging.Entry("err", err),
		)
		return result, err
	}

	// A concurrent activation of the same token clears it first, in which
	// case no pending row matches here.
	activated, err := s.accountRepository.Activate(ctx, a.ID, s.now())
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		s.log.Info(ctx, "Account has already been activated.", logging.Entry("accountId", a.ID))
		return result, account.ErrInvalidActivationToken
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not activate account.",
			logging.Entry("accountId", a.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "Account successfully activated.", logging.Entry("accountId", activated.ID))
	return Result{Account: activated}, nil
}
