package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/snapgram/backend/internal/apperr"
)

// FirebaseVerifier verifies Firebase ID tokens. The subject is the Firebase UID.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", &apperr.Error{Code: apperr.CodeUnauthenticated, Message: "Invalid or expired ID token", Err: err}
	}
	return token.UID, nil
}
