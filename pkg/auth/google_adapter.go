package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ProviderGoogle is the identifier reported by the Google adapter.
const ProviderGoogle = "google"

// GoogleOAuthConfig holds Google OAuth provider configuration.
type GoogleOAuthConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/userinfo.email,https://www.googleapis.com/auth/userinfo.profile"`
}

type googleAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewGoogleAdapter creates a Google OAuth provider adapter. All provider
// calls run on a bounded-timeout client so a stalled exchange surfaces
// as a network-cause failure instead of hanging the flow.
func NewGoogleAdapter(cfg GoogleOAuthConfig) ProviderAdapter {
	return &googleAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *googleAdapter) ProviderID() string { return ProviderGoogle }

// AuthURL builds the Google authorization URL carrying the CSRF state.
func (a *googleAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ResolveProfile exchanges the authorization code and fetches the user's
// profile from the userinfo endpoint. Identity comes from an
// authenticated API call rather than from decoding the ID token, so no
// unverified claims are ever trusted.
func (a *googleAdapter) ResolveProfile(ctx context.Context, code string) (ProviderProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return ProviderProfile{}, &UpstreamError{Cause: classifyExchangeError(err), Err: err}
	}

	u, err := a.fetchUserinfo(ctx, tok.AccessToken)
	if err != nil {
		return ProviderProfile{}, err
	}

	return ProviderProfile{
		ProviderUserID: u.ID,
		Email:          u.Email,
		EmailVerified:  u.VerifiedEmail,
		Name:           u.Name,
		AvatarURL:      u.Picture,
	}, nil
}

// classifyExchangeError maps a code-exchange failure to its cause: a 4xx
// token-endpoint answer means our code or credentials were bad, a 5xx
// means the provider is down, anything else is the network.
func classifyExchangeError(err error) UpstreamCause {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		if retrieve.Response != nil && retrieve.Response.StatusCode >= 500 {
			return UpstreamProviderOutage
		}
		return UpstreamBadRequest
	}
	return UpstreamNetwork
}

func (a *googleAdapter) fetchUserinfo(ctx context.Context, accessToken string) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, &UpstreamError{Cause: UpstreamNetwork, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Cause: UpstreamNetwork, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 500:
		return nil, &UpstreamError{
			Cause: UpstreamProviderOutage,
			Err:   fmt.Errorf("userinfo returned status %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &UpstreamError{
			Cause: UpstreamBadRequest,
			Err:   fmt.Errorf("userinfo returned status %d", resp.StatusCode),
		}
	}

	var user googleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, &UpstreamError{Cause: UpstreamNetwork, Err: err}
	}
	return &user, nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

var _ ProviderAdapter = (*googleAdapter)(nil)
