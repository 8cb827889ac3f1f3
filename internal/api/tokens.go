package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errWrongTokenType = errors.New("not an access token")

// TokenService issues and verifies HS256 bearer tokens for API clients
type TokenService struct {
	Secret    []byte
	Issuer    string
	AccessTTL time.Duration

	now func() time.Time
}

// NewTokenService creates a token service signing with secret
func NewTokenService(secret, issuer string, ttl time.Duration) TokenService {
	return TokenService{Secret: []byte(secret), Issuer: issuer, AccessTTL: ttl}
}

func (t TokenService) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now().UTC()
}

// CreateAccessToken signs a token for nickname and returns it with its unix expiry
func (t TokenService) CreateAccessToken(nickname string) (string, int64, error) {
	now := t.clock()
	exp := now.Add(t.AccessTTL)
	claims := jwt.MapClaims{
		"iss": t.Issuer,
		"sub": nickname,
		"typ": "access",
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp.Unix(), nil
}

// ParseAccessToken verifies the signature, issuer, expiry and token type, and
// returns the nickname the token was issued for.
func (t TokenService) ParseAccessToken(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.Secret, nil
	}, jwt.WithIssuer(t.Issuer), jwt.WithTimeFunc(t.clock))
	if err != nil {
		return "", err
	}
	if claims["typ"] != "access" {
		return "", errWrongTokenType
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return sub, nil
}
