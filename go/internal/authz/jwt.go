package authz

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/models"
)

type claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	issuer string
}

// NewTokens creates a signer/verifier for secret.
func NewTokens(secret, issuer string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Tokens{secret: []byte(secret), issuer: issuer}, nil
}

// Issue signs a token for p valid for ttl.
func (t *Tokens) Issue(p Principal, ttl time.Duration, now time.Time) (string, error) {
	roles := make([]string, len(p.Roles))
	for i, r := range p.Roles {
		roles[i] = string(r)
	}
	cl := claims{
		Username: p.Username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenStr and returns the principal it names.
func (t *Tokens) Parse(tokenStr string) (Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token: %w", err)
	}

	cl, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return Principal{}, errors.New("invalid token claims")
	}

	userID, err := uuid.Parse(cl.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token subject: %w", err)
	}

	p := Principal{UserID: userID, Username: cl.Username}
	for _, r := range cl.Roles {
		p.Roles = append(p.Roles, models.Role(r))
	}
	return p, nil
}
