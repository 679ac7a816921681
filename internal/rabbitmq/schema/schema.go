package schema

import (
	"encoding/json"
)

// ActivationNotice is the body of messages on the activation notice queue.
type ActivationNotice struct {
	AccountID       int64  `json:"accountId"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	ActivationToken string `json:"activationToken"`
}

func (n *ActivationNotice) Marshal() ([]byte, error) {
	return json.Marshal(n)
}

func (n *ActivationNotice) Unmarshal(data []byte) error {
	return json.Unmarshal(data, n)
}
