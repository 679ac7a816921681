package app

import (
	"accounts/internal/app/services"
	"accounts/internal/core/domain/account"
	"accounts/internal/core/domain/logging"
	uow "accounts/internal/core/domain/unit_of_work"
	activateaccount "accounts/internal/core/services/activate_account"
	listactiveaccounts "accounts/internal/core/services/list_active_accounts"
	registeraccount "accounts/internal/core/services/register_account"
	registerhandler "accounts/internal/http/handlers/users/register_account"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const ACTIVATION_TOKEN = "test-activation-token"

type testSuite struct {
	suite.Suite
	UnitOfWork *uow.FakeUnitOfWork
	Sender     *account.FakeActivationNoticeSender
	Router     http.Handler
}

func (suite *testSuite) SetupTest() {
	log := logging.NewFakeLogger()
	now := func() time.Time { return time.Now().UTC() }
	suite.UnitOfWork = uow.NewFakeUnitOfWork()
	suite.Sender = account.NewFakeActivationNoticeSender()
	tokenGenerator := account.NewFakeActivationTokenGenerator(ACTIVATION_TOKEN)
	tokenGenerator.Unique = true

	s := &services.Services{
		RegisterAccount: registeraccount.New(
			log,
			suite.UnitOfWork,
			account.NewFakePasswordHasher(),
			tokenGenerator,
			suite.Sender,
			now,
		),
		ActivateAccount:    activateaccount.New(log, suite.UnitOfWork.AccountRepository, now),
		ListActiveAccounts: listactiveaccounts.New(log, suite.UnitOfWork.AccountRepository, 10),
	}
	suite.Router = NewRouter(s, []string{"*"}, true)
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) do(method, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	rw := httptest.NewRecorder()
	suite.Router.ServeHTTP(rw, req)
	return rw
}

func (suite *testSuite) register(i int) string {
	rw := suite.do(
		http.MethodPost,
		"/api/1.0/users",
		fmt.Sprintf(`{"username": "user%d", "email": "user%d@mail.com", "password": "P4ssword"}`, i, i),
	)
	suite.Require().Equal(http.StatusOK, rw.Code)
	return rw.Header().Get(registerhandler.TEST_ACTIVATION_TOKEN_HEADER)
}

func (suite *testSuite) list(url string) (body struct {
	Content []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"content"`
	Page       uint `json:"page"`
	Size       uint `json:"size"`
	TotalPages uint `json:"totalPages"`
}) {
	rw := suite.do(http.MethodGet, url, "")
	suite.Require().Equal(http.StatusOK, rw.Code)
	suite.Require().Nil(json.Unmarshal(rw.Body.Bytes(), &body))
	return body
}

func (suite *testSuite) TestEmptyListing() {
	rw := suite.do(http.MethodGet, "/api/1.0/users", "")

	suite.Equal(http.StatusOK, rw.Code)
	suite.JSONEq(`{"content": [], "page": 0, "size": 10, "totalPages": 0}`, rw.Body.String())
}

func (suite *testSuite) TestRegisteredAccountIsPendingUntilActivated() {
	token := suite.register(1)
	suite.NotEmpty(token)
	suite.Equal(1, suite.Sender.SentCount())

	suite.Empty(suite.list("/api/1.0/users").Content)

	rw := suite.do(http.MethodPost, "/api/1.0/users/token/"+token, "")
	suite.Equal(http.StatusOK, rw.Code)

	body := suite.list("/api/1.0/users")
	suite.Require().Len(body.Content, 1)
	suite.Equal("user1", body.Content[0].Username)
	suite.Equal("user1@mail.com", body.Content[0].Email)
	suite.Equal(uint(1), body.TotalPages)
}

func (suite *testSuite) TestActivationTokenIsSingleUse() {
	token := suite.register(1)

	rw := suite.do(http.MethodPost, "/api/1.0/users/token/"+token, "")
	suite.Equal(http.StatusOK, rw.Code)

	rw = suite.do(http.MethodPost, "/api/1.0/users/token/"+token, "")
	suite.Equal(http.StatusBadRequest, rw.Code)
}

func (suite *testSuite) TestInvalidActivationToken() {
	suite.register(1)

	rw := suite.do(http.MethodPost, "/api/1.0/users/token/unknown", "")
	suite.Equal(http.StatusBadRequest, rw.Code)

	body := struct {
		Path      string `json:"path"`
		Timestamp int64  `json:"timestamp"`
		Message   string `json:"message"`
	}{}
	suite.Require().Nil(json.Unmarshal(rw.Body.Bytes(), &body))
	suite.Equal("/api/1.0/users/token/unknown", body.Path)
	suite.NotZero(body.Timestamp)
	suite.Equal("This account is either active or the token is invalid", body.Message)
}

func (suite *testSuite) TestDuplicateEmail() {
	suite.register(1)

	rw := suite.do(
		http.MethodPost,
		"/api/1.0/users",
		`{"username": "other", "email": "USER1@mail.com", "password": "P4ssword"}`,
	)
	suite.Equal(http.StatusConflict, rw.Code)
}

func (suite *testSuite) TestDeliveryFailure() {
	suite.Sender.ReturnError = true

	rw := suite.do(
		http.MethodPost,
		"/api/1.0/users",
		`{"username": "user1", "email": "user1@mail.com", "password": "P4ssword"}`,
	)
	suite.Equal(http.StatusBadGateway, rw.Code)
	suite.Empty(suite.UnitOfWork.AccountRepository.All())
}

func (suite *testSuite) TestPagination() {
	for i := 0; i < 11; i++ {
		token := suite.register(i)
		rw := suite.do(http.MethodPost, "/api/1.0/users/token/"+token, "")
		suite.Require().Equal(http.StatusOK, rw.Code)
	}

	first := suite.list("/api/1.0/users")
	suite.Len(first.Content, 10)
	suite.Equal(uint(2), first.TotalPages)

	second := suite.list("/api/1.0/users?page=1")
	suite.Len(second.Content, 1)
	suite.Equal(uint(1), second.Page)

	custom := suite.list("/api/1.0/users?size=5&page=2")
	suite.Len(custom.Content, 1)
	suite.Equal(uint(5), custom.Size)
	suite.Equal(uint(3), custom.TotalPages)

	clamped := suite.list("/api/1.0/users?size=1000")
	suite.Equal(uint(10), clamped.Size)
}

func (suite *testSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/1.0/users", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rw := httptest.NewRecorder()

	suite.Router.ServeHTTP(rw, req)

	suite.Equal("*", rw.Header().Get("Access-Control-Allow-Origin"))
}
