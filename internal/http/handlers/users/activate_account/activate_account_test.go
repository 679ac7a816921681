package activateaccount

import (
	"accounts/internal/core/domain/account"
	activateaccount "accounts/internal/core/services/activate_account"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	err   error
	input *activateaccount.Input
}

func (s *stubService) Run(ctx context.Context, input activateaccount.Input) (result activateaccount.Result, err error) {
	s.input = &input
	return result, s.err
}

func post(service *stubService, url string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Method(http.MethodPost, "/api/1.0/users/token/{token}", New(service))

	req := httptest.NewRequest(http.MethodPost, url, nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)
	return rw
}

func TestActivateAccountHandler(t *testing.T) {
	cases := []struct {
		id              string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			id:              "success",
			err:             nil,
			expectedStatus:  http.StatusOK,
			expectedMessage: "Account is activated",
		},
		{
			id:              "invalid token",
			err:             account.ErrInvalidActivationToken,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "This account is either active or the token is invalid",
		},
		{
			id:              "internal error",
			err:             fmt.Errorf("db is down"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "internal error",
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.id, func(t *testing.T) {
			service := &stubService{err: testCase.err}
			rw := post(service, "/api/1.0/users/token/abc-123")

			assert.Equal(t, testCase.expectedStatus, rw.Code)
			body := map[string]interface{}{}
			require.Nil(t, json.Unmarshal(rw.Body.Bytes(), &body))
			assert.Equal(t, testCase.expectedMessage, body["message"])
			require.NotNil(t, service.input)
			assert.Equal(t, account.ActivationToken("abc-123"), service.input.ActivationToken)
		})
	}
}

func TestErrorBodyCarriesPathAndTimestamp(t *testing.T) {
	before := time.Now().UnixMilli()
	rw := post(&stubService{err: account.ErrInvalidActivationToken}, "/api/1.0/users/token/abc-123")

	body := struct {
		Path      string      `json:"path"`
		Timestamp int64       `json:"timestamp"`
		Message   string      `json:"message"`
		Errors    interface{} `json:"errors"`
	}{}
	require.Nil(t, json.Unmarshal(rw.Body.Bytes(), &body))
	assert.Equal(t, "/api/1.0/users/token/abc-123", body.Path)
	assert.GreaterOrEqual(t, body.Timestamp, before)
	assert.Equal(t, MSG_INVALID_TOKEN, body.Message)
	assert.Nil(t, body.Errors)
}

func TestNilService(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}
