package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"sharetome/internal/config"
	"sharetome/internal/model"
)

const githubAPIURL = "https://api.github.com"

// GitHub signs users in with a GitHub OAuth app.
type GitHub struct {
	oauth2.Config
	apiURL string
}

func NewGitHub(client config.OAuthClient, publicURL string) *GitHub {
	return &GitHub{
		Config: oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  CallbackURL(publicURL, "github"),
			Scopes:       []string{"read:user", "user:email"},
		},
		apiURL: githubAPIURL,
	}
}

func (g *GitHub) ID() string   { return "github" }
func (g *GitHub) Name() string { return "GitHub" }
func (g *GitHub) Type() string { return TypeOAuth }

func (g *GitHub) AuthCodeURL(state string) string {
	return g.Config.AuthCodeURL(state)
}

type githubUser struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Identify exchanges code for a token and reads the user's profile. Users with
// a private profile email are resolved through their primary verified address.
func (g *GitHub) Identify(ctx context.Context, code string) (model.Identity, error) {
	tok, err := g.Exchange(ctx, code)
	if err != nil {
		return model.Identity{}, fmt.Errorf("github token exchange: %w", err)
	}
	client := g.Client(ctx, tok)

	var u githubUser
	if err := g.get(ctx, client, "/user", &u); err != nil {
		return model.Identity{}, err
	}

	email := u.Email
	if email == "" {
		var emails []githubEmail
		if err := g.get(ctx, client, "/user/emails", &emails); err != nil {
			return model.Identity{}, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return model.Identity{}, ErrNoEmail
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return model.Identity{Email: strings.ToLower(email), Name: name, Provider: g.ID()}, nil
}

func (g *GitHub) get(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github %s: decode: %w", path, err)
	}
	return nil
}
