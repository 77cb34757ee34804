package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StateTTL bounds how long a user may spend on a provider's consent screen.
const StateTTL = 10 * time.Minute

var ErrInvalidState = errors.New("invalid oauth state")

// State travels through the provider redirect and back.
type State struct {
	Provider    string
	CallbackURL string
}

type stateClaims struct {
	Provider    string `json:"prov"`
	CallbackURL string `json:"cb"`
	jwt.RegisteredClaims
}

// StateCodec signs and verifies OAuth state values as short-lived HS256 tokens.
type StateCodec struct {
	secret []byte
	now    func() time.Time
}

func NewStateCodec(secret string) (*StateCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth secret must be at least 16 bytes")
	}
	return &StateCodec{secret: []byte(secret), now: time.Now}, nil
}

// Issue returns a signed state token carrying s.
func (c *StateCodec) Issue(s State) (string, error) {
	now := c.now()
	claims := stateClaims{
		Provider:    s.Provider,
		CallbackURL: SafeCallback(s.CallbackURL),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks that the state returned by the provider is the one issued to this
// browser (stored in its cookie) and is still valid for provider.
func (c *StateCodec) Verify(returned, stored, provider string) (State, error) {
	if returned == "" || returned != stored {
		return State{}, fmt.Errorf("%w: mismatch", ErrInvalidState)
	}

	var claims stateClaims
	_, err := jwt.ParseWithClaims(returned, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if claims.Provider != provider {
		return State{}, fmt.Errorf("%w: issued for %q", ErrInvalidState, claims.Provider)
	}
	return State{Provider: claims.Provider, CallbackURL: SafeCallback(claims.CallbackURL)}, nil
}
