package models

import (
	"fmt"
	"time"
)

// LocalAccount is an identity logged in on this device. The access token is
// stored sealed; see cryptox.
type LocalAccount struct {
	ID              int64
	Domain          string
	Username        string
	AccountServerID string
	DisplayName     string

	SealedToken []byte
	TokenNonce  []byte
	TokenSalt   []byte

	CreatedAt time.Time
}

// FullName renders the account as @username@domain.
func (a *LocalAccount) FullName() string {
	return fmt.Sprintf("@%s@%s", a.Username, a.Domain)
}
