package listactiveaccounts

import (
	"accounts/internal/core/domain/account"
	c "accounts/internal/core/domain/common"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/domain/logging"
	"accounts/internal/core/services"
	"context"
)

const DEFAULT_PAGE_SIZE = 10

type Input struct {
	Page uint
	Size c.Optional[uint]
}

type Result struct {
	Accounts   []account.Summary
	Page       uint
	Size       uint
	TotalPages uint
}

type service struct {
	log               logging.Logger
	accountRepository account.Repository
	defaultPageSize   uint
}

func New(
	log logging.Logger,
	accountRepository account.Repository,
	defaultPageSize uint,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if accountRepository == nil {
		panic(e.NewNilArgumentError("accountRepository"))
	}
	if defaultPageSize == 0 {
		panic(e.NewInvalidArgumentError("defaultPageSize", "must be positive"))
	}
	return &service{
		log:               log,
		accountRepository: accountRepository,
		defaultPageSize:   defaultPageSize,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	size := s.defaultPageSize
	if input.Size.IsPresent && input.Size.Value > 0 {
		size = input.Size.Value
	}

	totalCount, err := s.accountRepository.CountActive(ctx)
	if err != nil {
		s.log.Error(ctx, "Could not count active accounts.", logging.Entry("err", err))
		return result, err
	}

	accounts := []account.Summary{}
	if input.Page*size < totalCount {
		accounts, err = s.accountRepository.ReadActive(
			ctx,
			account.ReadOptions{Limit: size, Offset: input.Page * size},
		)
		if err != nil {
			s.log.Error(
				ctx,
				"Could not read active accounts.",
				logging.Entry("input", input),
				logging.Entry("err", err),
			)
			return result, err
		}
	}

	s.log.Debug(
		ctx,
		"Active accounts successfully read.",
		logging.Entry("input", input),
		logging.Entry("count", len(accounts)),
		logging.Entry("totalCount", totalCount),
	)
	return Result{
		Accounts:   accounts,
		Page:       input.Page,
		Size:       size,
		TotalPages: (totalCount + size - 1) / size,
	}, nil
}
