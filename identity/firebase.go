package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// FirebaseProvider signs in with Firebase email/password accounts through
// the Identity Toolkit API.
type FirebaseProvider struct {
	svc *identitytoolkit.Service
}

func NewFirebaseProvider(ctx context.Context, apiKey string, opts ...option.ClientOption) (*FirebaseProvider, error) {
	if apiKey == "" {
		return nil, errors.New("FIREBASE_API_KEY not set")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}
	return &FirebaseProvider{svc: svc}, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (Principal, error) {
	resp, err := p.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return Principal{}, classifyFirebaseError(err)
	}
	return Principal{UID: resp.LocalId, Email: resp.Email}, nil
}

// classifyFirebaseError maps the service's error codes. Messages look like
// "INVALID_PASSWORD" or "TOO_MANY_ATTEMPTS_TRY_LATER : details".
func classifyFirebaseError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("firebase sign-in failed: %w", err)
	}

	code := strings.TrimSpace(strings.SplitN(gerr.Message, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return ErrBadCredentials
	case "USER_DISABLED":
		return ErrUserDisabled
	}
	return fmt.Errorf("firebase sign-in failed: %w", err)
}
