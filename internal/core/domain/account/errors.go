package account

import (
	"errors"
)

var (
	ErrEmailAlreadyExists     = errors.New("email already exists")
	ErrAccountDoesNotExist    = errors.New("account does not exist")
	ErrInvalidActivationToken = errors.New("invalid activation token")
	ErrDeliveryFailed         = errors.New("activation notice delivery failed")
)
