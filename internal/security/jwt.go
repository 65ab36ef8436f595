package security

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/raincoat98/bookmarkle-bridge/internal/domain"
)

type Claims struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// MakeSessionToken mints the HS256 bearer credential handed to clients
// after interactive sign-in. Clients pass it back to assist session
// restoration when their cache entry has expired.
func MakeSessionToken(secret string, p *domain.Principal, ttl time.Duration) (string, error) {
	c := Claims{
		UID: p.ID, Email: p.Email, Name: p.DisplayName, Picture: p.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Subject:   p.ID,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

func ParseSessionToken(secret, token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// TokenVerifier adapts session-token parsing to the restorer's priming
// hook.
type TokenVerifier struct {
	Secret string
}

func (v TokenVerifier) Verify(_ context.Context, bearer string) (*domain.Principal, error) {
	c, err := ParseSessionToken(v.Secret, bearer)
	if err != nil {
		return nil, err
	}
	if c.UID == "" {
		return nil, errors.New("token missing uid")
	}
	return &domain.Principal{
		ID:          c.UID,
		Email:       c.Email,
		DisplayName: c.Name,
		AvatarURL:   c.Picture,
	}, nil
}
