package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"github.com/golang-jwt/jwt/v4"
)

// JWTVerifier verifies HS256 tokens whose subject is the external identity.
// It stands in for Firebase in local and test deployments.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), now: time.Now}
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			msg = "Invalid token signature"
		}
		return "", &apperr.Error{Code: apperr.CodeUnauthenticated, Message: msg, Err: err}
	}
	if !token.Valid || claims.Subject == "" {
		return "", apperr.Unauthenticated("Invalid token")
	}
	return claims.Subject, nil
}

// IssueToken signs a token for subject that expires after ttl
func (v *JWTVerifier) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
