package registeraccount

import (
	"accounts/internal/core/domain/account"
	c "accounts/internal/core/domain/common"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/services"
	registeraccount "accounts/internal/core/services/register_account"
	"accounts/internal/http/handlers/response"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	MSG_USERNAME_REQUIRED = "Username is required"
	MSG_USERNAME_SIZE     = "Must have 4 and max 32 characters"
	MSG_EMAIL_REQUIRED    = "Email is required"
	MSG_EMAIL_INVALID     = "Email is not valid"
	MSG_EMAIL_IN_USE      = "Email in use"
	MSG_PASSWORD_REQUIRED = "Password is required"
	MSG_PASSWORD_SIZE     = "Password must be at least 6 characters"
	MSG_PASSWORD_PATTERN  = "Password must have at least 1 uppercase, 1 lowercase letter and 1 number"
	MSG_USER_CREATED      = "User created"
	MSG_DELIVERY_FAILED   = "Activation email could not be sent"
	MSG_VALIDATION_FAILED = "Validation Failure"
	MSG_INVALID_REQUEST   = "Invalid request data"

	TEST_ACTIVATION_TOKEN_HEADER = "x-test-activation-token"
)

type Handler struct {
	service    services.Service[registeraccount.Input, registeraccount.Result]
	isTestMode bool
}

func New(
	service services.Service[registeraccount.Input, registeraccount.Result],
	isTestMode bool,
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service, isTestMode: isTestMode}
}

// Input has no status field: new accounts are always pending whatever the
// client sends.
type Input struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (i *Input) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(
			&i.Username,
			validation.Required.Error(MSG_USERNAME_REQUIRED),
			validation.RuneLength(4, 32).Error(MSG_USERNAME_SIZE),
		),
		validation.Field(
			&i.Email,
			validation.Required.Error(MSG_EMAIL_REQUIRED),
			validation.Length(0, 512).Error(MSG_EMAIL_INVALID),
			is.Email.Error(MSG_EMAIL_INVALID),
		),
		validation.Field(
			&i.Password,
			validation.Required.Error(MSG_PASSWORD_REQUIRED),
			validation.Length(6, 256).Error(MSG_PASSWORD_SIZE),
			passwordPattern{message: MSG_PASSWORD_PATTERN},
		),
	)
}

// passwordPattern requires at least one upper case letter, one lower case
// letter and one digit.
type passwordPattern struct {
	message string
}

func (p passwordPattern) Validate(value interface{}) error {
	password, ok := value.(string)
	if !ok || password == "" {
		return nil
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if hasUpper && hasLower && hasDigit {
		return nil
	}
	return errors.New(p.message)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, r, MSG_INVALID_REQUEST, http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		var validationErrors validation.Errors
		if errors.As(err, &validationErrors) {
			response.RenderFieldErrors(rw, r, MSG_VALIDATION_FAILED, validationErrors, http.StatusBadRequest)
			return
		}
		response.RenderInternalError(rw, r)
		return
	}

	result, err := h.service.Run(
		r.Context(),
		registeraccount.Input{
			Username: account.Username(input.Username),
			Email:    c.NewEmail(input.Email),
			Password: account.RawPassword(input.Password),
		},
	)
	switch {
	case err == nil:
	case errors.Is(err, account.ErrEmailAlreadyExists):
		response.RenderFieldErrors(
			rw,
			r,
			MSG_VALIDATION_FAILED,
			map[string]string{"email": MSG_EMAIL_IN_USE},
			http.StatusConflict,
		)
		return
	case errors.Is(err, account.ErrDeliveryFailed):
		response.RenderError(rw, r, MSG_DELIVERY_FAILED, http.StatusBadGateway)
		return
	default:
		response.RenderInternalError(rw, r)
		return
	}

	if h.isTestMode {
		rw.Header().Set(TEST_ACTIVATION_TOKEN_HEADER, string(result.Account.ActivationToken.Value))
	}
	response.RenderMessage(rw, MSG_USER_CREATED, http.StatusOK)
}
