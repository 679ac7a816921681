package activationnoticelogger

import (
	"accounts/internal/core/domain/account"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/domain/logging"
	"context"
)

// Sender only logs activation notices. It is used in test mode, where the
// token is handed back to the client instead of being mailed.
type Sender struct {
	log logging.Logger
}

func New(log logging.Logger) *Sender {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &Sender{log: log}
}

func (s *Sender) SendActivationNotice(ctx context.Context, a account.Account) error {
	s.log.Info(
		ctx,
		"Activation notice has been accepted by log sender.",
		logging.Entry("accountId", a.ID),
		logging.Entry("email", a.Email),
		logging.Entry("activationToken", a.ActivationToken.Value),
	)
	return nil
}
