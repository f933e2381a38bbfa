// Package auth turns externally issued access tokens into sessions and
// broadcasts session changes. Sign-up and password flows live elsewhere;
// this package only consumes their tokens.
package auth

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"clockedin/internal/errors"
)

// Session is a signed-in identity. A nil *Session means signed out.
type Session struct {
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email,omitempty"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now. Tokens
// without an expiry never expire.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Claims carried by access tokens. The subject is the user's UUID.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token against secret and returns the session it grants.
func ParseToken(tokenString, secret string) (*Session, error) {
	if secret == "" {
		return nil, errors.NewUnauthenticatedError("remote sync is not configured", nil)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if stderrors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, errors.NewUnauthenticatedError("token expired", err)
		}
		return nil, errors.NewUnauthenticatedError("invalid token", err)
	}
	if !token.Valid {
		return nil, errors.NewUnauthenticatedError("invalid token", nil)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.NewUnauthenticatedError("token subject is not a user id", err)
	}

	session := &Session{
		UserID:      userID,
		Email:       claims.Email,
		AccessToken: tokenString,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// IssueToken signs a token for userID valid for ttl. A zero ttl issues a
// token without expiry.
func IssueToken(userID uuid.UUID, email, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID.String(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
