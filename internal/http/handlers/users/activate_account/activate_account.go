package activateaccount

import (
	"accounts/internal/core/domain/account"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/services"
	activateaccount "accounts/internal/core/services/activate_account"
	"accounts/internal/http/handlers/response"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	MSG_ACCOUNT_ACTIVATED = "Account is activated"
	MSG_INVALID_TOKEN     = "This account is either active or the token is invalid"
)

type Handler struct {
	service services.Service[activateaccount.Input, activateaccount.Result]
}

func New(
	service services.Service[activateaccount.Input, activateaccount.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	_, err := h.service.Run(
		r.Context(),
		activateaccount.Input{ActivationToken: account.ActivationToken(token)},
	)
	if errors.Is(err, account.ErrInvalidActivationToken) {
		response.RenderError(rw, r, MSG_INVALID_TOKEN, http.StatusBadRequest)
		return
	}
	if err != nil {
		response.RenderInternalError(rw, r)
		return
	}

	response.RenderMessage(rw, MSG_ACCOUNT_ACTIVATED, http.StatusOK)
}
