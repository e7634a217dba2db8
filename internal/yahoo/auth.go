package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// Yahoo OAuth2 endpoints. The "oob" redirect selects the out-of-band flow:
// the user pastes a verification code instead of being redirected.
const (
	authorizeURL = "https://api.login.yahoo.com/oauth2/request_auth"
	tokenURL     = "https://api.login.yahoo.com/oauth2/get_token"
	redirectOOB  = "oob"
)

// OAuthConfig builds the oauth2 config for the Yahoo authorization-code flow.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectOOB,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authorizeURL,
			TokenURL: tokenURL,
		},
	}
}

// AuthCodeURL returns the URL the user must visit to authorize the app.
func AuthCodeURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("", oauth2.AccessTypeOffline)
}

// Exchange trades a pasted verification code for an access/refresh token.
func Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

// SaveToken persists a token as JSON at path, creating parent directories.
// The file is chmod 0600 since it holds live credentials.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// LoadToken reads a previously saved token from path.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file %s (run the auth command first): %w", path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", path, err)
	}
	return &tok, nil
}

// FileTokenSource loads the saved token and wraps it in a refreshing source.
// Refreshed tokens are written back to the same file so subsequent runs skip
// the refresh round-trip.
func FileTokenSource(ctx context.Context, cfg *oauth2.Config, path string) (oauth2.TokenSource, error) {
	tok, err := LoadToken(path)
	if err != nil {
		return nil, err
	}
	return &savingTokenSource{
		path: path,
		last: tok,
		src:  cfg.TokenSource(ctx, tok),
	}, nil
}

type savingTokenSource struct {
	path string
	last *oauth2.Token
	src  oauth2.TokenSource
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last.AccessToken {
		s.last = tok
		if err := SaveToken(s.path, tok); err != nil {
			return nil, err
		}
	}
	return tok, nil
}
