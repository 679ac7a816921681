package account

import "context"

type ActivationTokenGenerator interface {
	GenerateActivationToken() ActivationToken
}

// ActivationNoticeSender blocks until the notice is accepted for delivery
// or rejected.
type ActivationNoticeSender interface {
	SendActivationNotice(ctx context.Context, account Account) error
}
