package auth

import (
	"context"

	"sharetome/internal/model"
)

const (
	DevEmail = "dev@example.com"
	DevName  = "Development User"
)

// Dev is the development credential provider. It always signs in the same
// fixed user and must only be enabled outside production.
type Dev struct{}

func (Dev) ID() string   { return "credentials" }
func (Dev) Name() string { return "Dev User" }
func (Dev) Type() string { return TypeCredentials }

func (Dev) Authorize(context.Context) (model.Identity, error) {
	return model.Identity{Email: DevEmail, Name: DevName, Provider: "credentials"}, nil
}
