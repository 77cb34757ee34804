// Package auth signs users in through OAuth providers or, in development,
// a fixed credential, and produces the identity a session is opened for.
package auth

import (
	"context"
	"errors"
	"strings"

	"sharetome/internal/model"
)

const (
	TypeOAuth       = "oauth"
	TypeCredentials = "credentials"
)

var (
	ErrUnknownProvider = errors.New("unknown auth provider")
	ErrNoEmail         = errors.New("provider returned no verified email")
)

// Provider is a sign-in method offered on the login page.
type Provider interface {
	ID() string
	Name() string
	Type() string
}

// OAuthProvider redirects the browser to a third party and turns the returned code into an identity.
type OAuthProvider interface {
	Provider
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (model.Identity, error)
}

// CredentialsProvider signs the user in without leaving the site.
type CredentialsProvider interface {
	Provider
	Authorize(ctx context.Context) (model.Identity, error)
}

// ProviderInfo is the public description of a provider.
type ProviderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SignInURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// Providers is the ordered set of configured sign-in methods.
type Providers struct {
	publicURL string
	order     []Provider
	byID      map[string]Provider
}

func NewProviders(publicURL string, providers ...Provider) *Providers {
	p := &Providers{
		publicURL: strings.TrimRight(publicURL, "/"),
		byID:      make(map[string]Provider, len(providers)),
	}
	for _, pr := range providers {
		if pr == nil {
			continue
		}
		p.order = append(p.order, pr)
		p.byID[pr.ID()] = pr
	}
	return p
}

func (p *Providers) Get(id string) (Provider, error) {
	pr, ok := p.byID[id]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return pr, nil
}

func (p *Providers) Len() int { return len(p.order) }

// List describes every provider keyed by id, the shape the login page reads.
func (p *Providers) List() map[string]ProviderInfo {
	out := make(map[string]ProviderInfo, len(p.order))
	for _, pr := range p.order {
		out[pr.ID()] = ProviderInfo{
			ID:          pr.ID(),
			Name:        pr.Name(),
			Type:        pr.Type(),
			SignInURL:   p.publicURL + "/api/auth/signin/" + pr.ID(),
			CallbackURL: CallbackURL(p.publicURL, pr.ID()),
		}
	}
	return out
}

// Ordered returns providers in configuration order.
func (p *Providers) Ordered() []Provider { return p.order }

// CallbackURL is where a provider sends the browser back to after consent.
func CallbackURL(publicURL, providerID string) string {
	return strings.TrimRight(publicURL, "/") + "/api/auth/callback/" + providerID
}

// SafeCallback keeps post-login redirects on this site. Anything that is not a
// local absolute path becomes "/".
func SafeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}
