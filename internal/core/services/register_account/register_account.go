package registeraccount

import (
	"accounts/internal/core/domain/account"
	c "accounts/internal/core/domain/common"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/domain/logging"
	uow "accounts/internal/core/domain/unit_of_work"
	"accounts/internal/core/services"
	"context"
	"errors"
	"fmt"
	"time"
)

// Input is expected to be validated by the caller.
type Input struct {
	Username account.Username
	Email    c.Email
	Password account.RawPassword
}

type Result struct {
	Account account.Account
}

type service struct {
	log                      logging.Logger
	unitOfWork               uow.UnitOfWork
	passwordHasher           account.PasswordHasher
	activationTokenGenerator account.ActivationTokenGenerator
	activationNoticeSender   account.ActivationNoticeSender
	now                      func() time.Time
}

// New returns a service that creates a pending account and sends it an
// activation notice. The account is committed only if the notice has been
// accepted for delivery.
func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	passwordHasher account.PasswordHasher,
	activationTokenGenerator account.ActivationTokenGenerator,
	activationNoticeSender account.ActivationNoticeSender,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if activationTokenGenerator == nil {
		panic(e.NewNilArgumentError("activationTokenGenerator"))
	}
	if activationNoticeSender == nil {
		panic(e.NewNilArgumentError("activationNoticeSender"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:                      log,
		unitOfWork:               unitOfWork,
		passwordHasher:           passwordHasher,
		activationTokenGenerator: activationTokenGenerator,
		activationNoticeSender:   activationNoticeSender,
		now:                      now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	passwordHash, err := s.passwordHasher.HashPassword(input.Password)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, err
	}
	activationToken := s.activationTokenGenerator.GenerateActivationToken()

	uow, err := s.unitOfWork.Begin(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not begin unit of work.",
			logging.Entry("input", input),
			logging.Entry("err", err),
		)
		return result, err
	}
	defer uow.Rollback(ctx)

	createdAccount, err := uow.Accounts().CreatePending(ctx, account.CreatePendingInput{
		Username:        input.Username,
		Email:           input.Email,
		PasswordHash:    passwordHash,
		ActivationToken: activationToken,
		CreatedAt:       s.now(),
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, account.ErrEmailAlreadyExists) {
		s.log.Info(
			ctx,
			"Account with the email already exists.",
			logging.Entry("email", input.Email),
		)
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not create pending account.",
			logging.Entry("input", input),
			logging.Entry("err", err),
		)
		return result, err
	}

	err = s.activationNoticeSender.SendActivationNotice(ctx, createdAccount)
	if err != nil {
		if rollbackErr := uow.Rollback(ctx); rollbackErr != nil {
			s.log.Error(
				ctx,
				"Could not roll back unit of work.",
				logging.Entry("accountId", createdAccount.ID),
				logging.Entry("err", rollbackErr),
			)
		}
		if errors.Is(err, context.Canceled) {
			return result, err
		}
		s.log.Error(
			ctx,
			"Could not send activation notice, account discarded.",
			logging.Entry("email", createdAccount.Email),
			logging.Entry("err", err),
		)
		return result, fmt.Errorf("%w: %w", account.ErrDeliveryFailed, err)
	}

	err = uow.Commit(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work.",
			logging.Entry("accountId", createdAccount.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(
		ctx,
		"New account has been registered.",
		logging.Entry("accountId", createdAccount.ID),
		logging.Entry("email", createdAccount.Email),
	)
	return Result{Account: createdAccount}, nil
}
