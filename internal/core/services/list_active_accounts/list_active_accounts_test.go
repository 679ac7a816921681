package listactiveaccounts

import (
	"accounts/internal/core/domain/account"
	c "accounts/internal/core/domain/common"
	"accounts/internal/core/domain/logging"
	"accounts/internal/core/services"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testSuite struct {
	suite.Suite
	Logger     *logging.FakeLogger
	Repository *account.FakeRepository
	Service    services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.Repository = account.NewFakeRepository()
	suite.Service = New(suite.Logger, suite.Repository, DEFAULT_PAGE_SIZE)
}

func TestListActiveAccountsService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestNoAccounts() {
	result, err := s.Service.Run(context.Background(), Input{})

	s.Nil(err)
	s.Equal(Result{Accounts: []account.Summary{}, Page: 0, Size: 10, TotalPages: 0}, result)
}

func (s *testSuite) TestFirstPageOfElevenAccounts() {
	s.addAccounts(11, account.Active)

	result, err := s.Service.Run(context.Background(), Input{})

	s.Nil(err)
	s.Len(result.Accounts, 10)
	s.Equal(uint(2), result.TotalPages)
	s.Equal(uint(10), result.Size)
	s.Equal(account.Username("user1"), result.Accounts[0].Username)
}

func (s *testSuite) TestSecondPage() {
	s.addAccounts(11, account.Active)

	result, err := s.Service.Run(context.Background(), Input{Page: 1})

	s.Nil(err)
	s.Len(result.Accounts, 1)
	s.Equal(uint(1), result.Page)
	s.Equal(account.Username("user11"), result.Accounts[0].Username)
}

func (s *testSuite) TestPendingAccountsExcluded() {
	s.addAccounts(15, account.Active)
	s.addAccounts(7, account.Pending)

	result, err := s.Service.Run(context.Background(), Input{})
	s.Nil(err)
	s.Equal(uint(2), result.TotalPages)

	result, err = s.Service.Run(context.Background(), Input{Page: 1})
	s.Nil(err)
	s.Len(result.Accounts, 5)
	for _, a := range result.Accounts {
		stored, err := s.Repository.GetByEmail(context.Background(), a.Email)
		s.Nil(err)
		s.True(stored.IsActive())
	}
}

func (s *testSuite) TestOnlyPendingAccounts() {
	s.addAccounts(3, account.Pending)

	result, err := s.Service.Run(context.Background(), Input{})

	s.Nil(err)
	s.Empty(result.Accounts)
	s.Equal(uint(0), result.TotalPages)
}

func (s *testSuite) TestPageOutOfRange() {
	s.addAccounts(5, account.Active)

	result, err := s.Service.Run(context.Background(), Input{Page: 3})

	s.Nil(err)
	s.NotNil(result.Accounts)
	s.Empty(result.Accounts)
	s.Equal(uint(1), result.TotalPages)
	s.Equal(uint(3), result.Page)
}

func (s *testSuite) TestCustomPageSize() {
	s.addAccounts(7, account.Active)

	result, err := s.Service.Run(context.Background(), Input{Size: c.NewOptional(uint(3), true)})

	s.Nil(err)
	s.Len(result.Accounts, 3)
	s.Equal(uint(3), result.Size)
	s.Equal(uint(3), result.TotalPages)
}

func (s *testSuite) TestZeroPageSizeFallsBackToDefault() {
	s.addAccounts(2, account.Active)

	result, err := s.Service.Run(context.Background(), Input{Size: c.NewOptional(uint(0), true)})

	s.Nil(err)
	s.Equal(uint(DEFAULT_PAGE_SIZE), result.Size)
	s.Len(result.Accounts, 2)
}

func (s *testSuite) TestDefaultPageSizeFromConstructor() {
	s.addAccounts(5, account.Active)
	service := New(s.Logger, s.Repository, 2)

	result, err := service.Run(context.Background(), Input{})

	s.Nil(err)
	s.Equal(uint(2), result.Size)
	s.Len(result.Accounts, 2)
	s.Equal(uint(3), result.TotalPages)
}

func (s *testSuite) TestRepositoryError() {
	s.addAccounts(1, account.Active)
	s.Repository.ReadReturnsError = true

	_, err := s.Service.Run(context.Background(), Input{})

	s.NotNil(err)
}

func (s *testSuite) TestZeroDefaultPageSizePanics() {
	s.Panics(func() { New(s.Logger, s.Repository, 0) })
}

func (s *testSuite) addAccounts(n int, status account.Status) {
	s.T().Helper()
	offset := len(s.Repository.All())
	for i := 1; i <= n; i++ {
		a := account.Account{
			Username:     account.Username(fmt.Sprintf("user%d", offset+i)),
			Email:        c.NewEmail(fmt.Sprintf("user%d@mail.com", offset+i)),
			PasswordHash: "hash",
			Status:       status,
			CreatedAt:    time.Now().UTC(),
		}
		if status == account.Pending {
			a.ActivationToken = c.NewOptional(account.ActivationToken(fmt.Sprintf("token%d", offset+i)), true)
		}
		s.Repository.Add(a)
	}
}
