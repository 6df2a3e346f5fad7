package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession covers every way a session token can fail validation.
var ErrInvalidSession = errors.New("invalid session token")

// JWTManager issues and validates HS256 session tokens.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		Secret: []byte(secret),
		TTL:    ttl,
		Now:    time.Now,
	}
}

type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Issue signs a token for the interviewer id, valid for TTL from now.
func (m *JWTManager) Issue(interviewerID string) (string, time.Time, error) {
	now := m.Now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		ID: interviewerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Validate returns the interviewer id carried by a token.
func (m *JWTManager) Validate(tokenStr string) (string, error) {
	claims, err := m.parseToken(tokenStr)
	if err != nil {
		return "", ErrInvalidSession
	}
	if claims.ID == "" {
		return "", ErrInvalidSession
	}
	return claims.ID, nil
}

func (m *JWTManager) parseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.Now),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
