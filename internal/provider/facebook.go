package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

var ErrFacebookTokenRejected = errors.New("facebook token rejected")

const facebookGraphURL = "https://graph.facebook.com/me"

// FacebookOAuthProvider verifies Facebook access tokens via the Graph API.
type FacebookOAuthProvider struct {
	client *http.Client
	// baseURL overrides the Graph endpoint in tests.
	baseURL string
}

// NewFacebookOAuthProvider creates a Facebook token verifier.
func NewFacebookOAuthProvider() *FacebookOAuthProvider {
	return &FacebookOAuthProvider{
		client:  &http.Client{},
		baseURL: facebookGraphURL,
	}
}

func (p *FacebookOAuthProvider) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	query := url.Values{}
	query.Set("fields", "email,name")
	query.Set("access_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrFacebookTokenRejected
	}

	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}

	if profile.Email == "" {
		return nil, ErrFacebookTokenRejected
	}

	return &Identity{
		Email: profile.Email,
		Name:  profile.Name,
	}, nil
}
