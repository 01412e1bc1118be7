// Package identity signs the clinic administrator in against an external
// identity service.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrBadCredentials covers an unknown user, a wrong password and an
	// invalid credential. Everything else is reported as is.
	ErrBadCredentials = errors.New("bad credentials")
	ErrUserDisabled   = errors.New("user disabled")
)

// Principal is the signed-in administrator.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (Principal, error)
}
