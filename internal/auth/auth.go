// Package auth identifies callers by signed bearer tokens whose subject is
// the caller's address.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ryfitz11/NFT-Tickets/internal/clock"
	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

const tokenIssuer = "nft-tickets"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
	ErrNoSecret     = errors.New("auth: signing secret is empty")
)

type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 caller tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewIssuer(secret string, ttl time.Duration, clk clock.Clock) (*Issuer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, clock: clk}, nil
}

// IssueToken returns a signed token identifying caller.
func (i *Issuer) IssueToken(caller domain.Address) (string, error) {
	if caller.IsZero() {
		return "", domain.ErrInvalidAddress
	}
	now := i.clock.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   caller.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies tokenStr and returns the caller it names.
func (i *Issuer) ParseToken(tokenStr string) (domain.Address, error) {
	if tokenStr == "" {
		return domain.ZeroAddress, ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil || !token.Valid {
		return domain.ZeroAddress, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	caller, err := domain.ParseAddress(claims.Subject)
	if err != nil || caller.IsZero() {
		return domain.ZeroAddress, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return caller, nil
}

type callerKey struct{}

// WithCaller returns ctx carrying the authenticated caller.
func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(ctx context.Context) (domain.Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.Address)
	return caller, ok && !caller.IsZero()
}
