package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const tokenURL = "https://www.strava.com/oauth/token"

// NewOAuthConfig builds the oauth2 config used to refresh athlete
// tokens. Only the token endpoint matters here; the authorization code
// exchange happens out of band when an athlete is onboarded.
func NewOAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: tokenURL,
		},
	}
}

// TokenSource wraps oauth2.TokenSource with persistence for one
// athlete. It refreshes the token when it nears expiry and calls
// onRefresh so the new credentials survive a restart.
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource creates a TokenSource that refreshes as needed and
// persists new tokens through onRefresh.
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// Token returns a valid token, refreshing if necessary.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	// 60s buffer so a token never expires mid-request.
	if time.Until(ts.token.Expiry) > 60*time.Second {
		return ts.token, nil
	}

	src := ts.config.TokenSource(context.Background(), ts.token)
	newToken, err := src.Token()
	if err != nil {
		return nil, err
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}
