package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

var (
	ErrNoSecret     = errors.New("JWT_SECRET not set")
	ErrInvalidToken = errors.New("invalid token")
)

// Tokens issues and checks the bearer tokens that name a browser session.
// They are anonymous: the only claim is the session id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *Tokens) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("empty sessionID passed to GenerateToken")
	}

	claims := jwt.MapClaims{
		"sessionID": sessionID,
		"iat":       t.now().Unix(),
		"exp":       t.now().Add(t.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken returns the session id carried by a valid token.
func (t *Tokens) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sessionID, _ := claims["sessionID"].(string)
	if sessionID == "" {
		return "", ErrInvalidToken
	}
	return sessionID, nil
}
