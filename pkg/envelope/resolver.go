package envelope

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InvokerClaims are the JWT claims a host token carries for one invocation.
// The "type" claim must align with Kind so tokens resolve cleanly.
type InvokerClaims struct {
	jwt.RegisteredClaims
	Type Kind `json:"type"`
}

var ErrUnresolvableInvoker = errors.New("unresolvable invoker")

// TokenResolver turns a signed bearer token into an Invoker (HS256).
type TokenResolver struct {
	secret []byte
	issuer string
}

func NewTokenResolver(secret []byte, issuer string) *TokenResolver {
	return &TokenResolver{secret: secret, issuer: issuer}
}

// Mint creates a signed token for an invoker. Used by hosts and tests.
func (r *TokenResolver) Mint(inv Invoker, duration time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := InvokerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   inv.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			Issuer:    r.issuer,
		},
		Type: inv.Kind,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// Resolve parses and validates a bearer token and returns the invoker it
// attests. Tokens with an unknown type claim do not resolve.
func (r *TokenResolver) Resolve(tokenString string) (Invoker, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InvokerClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithIssuer(r.issuer))
	if err != nil {
		return Invoker{}, fmt.Errorf("%w: %w", ErrUnresolvableInvoker, err)
	}

	claims, ok := token.Claims.(*InvokerClaims)
	if !ok || !token.Valid {
		return Invoker{}, ErrUnresolvableInvoker
	}
	if claims.Type != KindAccount && claims.Type != KindContract {
		return Invoker{}, fmt.Errorf("%w: unknown type %q", ErrUnresolvableInvoker, claims.Type)
	}
	if claims.Subject == "" {
		return Invoker{}, fmt.Errorf("%w: empty subject", ErrUnresolvableInvoker)
	}

	return Invoker{Kind: claims.Type, ID: claims.Subject}, nil
}
