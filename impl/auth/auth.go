// Package auth verifies admin bearer tokens. Tokens are HS256 JWTs carrying
// the operator's email and role; the user record must still exist and be
// active.
package auth

import (
	"errors"
	"fmt"
	"teamvest/entity"

	"github.com/golang-jwt/jwt/v5"
)

type Database interface {
	GetUser(email string) (*entity.User, error)
}

// Claims is the token payload issued by the identity service.
type Claims struct {
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
	jwt.RegisteredClaims
}

type Auth struct {
	db     Database
	secret []byte
}

func New(db Database, secret string) *Auth {
	return &Auth{
		db:     db,
		secret: []byte(secret),
	}
}

// UserByToken validates the token signature and expiry, then resolves the
// operator record. A non-empty role claim overrides the stored role for the
// lifetime of the token.
func (a *Auth) UserByToken(token string) (*entity.User, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	if len(a.secret) == 0 {
		return nil, fmt.Errorf("auth secret not configured")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" {
		return nil, errors.New("token has no subject email")
	}

	user, err := a.db.GetUser(claims.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve token user: %w", err)
	}
	if !user.IsActive {
		return nil, errors.New("user is deactivated")
	}
	if claims.Role != "" {
		user.Role = claims.Role
	}
	return user, nil
}
