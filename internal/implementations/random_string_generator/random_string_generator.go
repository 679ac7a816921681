package randomstringgenerator

import (
	"accounts/internal/core/domain/account"
	e "accounts/internal/core/domain/errors"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const DEFAULT_LENGTH = 16

// Generator renders length bytes from crypto/rand as unpadded URL-safe
// base64, so tokens can be put into activation links as is.
type Generator struct {
	length int
}

func NewGenerator(length int) *Generator {
	if length <= 0 {
		panic(e.NewInvalidArgumentError("length", "must be positive"))
	}
	return &Generator{length: length}
}

func (g *Generator) GenerateActivationToken() account.ActivationToken {
	return account.ActivationToken(g.generate())
}

func (g *Generator) generate() string {
	b := make([]byte, g.length)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("could not read random bytes: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
