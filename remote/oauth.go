// ABOUTME: OAuth configuration and token storage for the Sheets API backend
// ABOUTME: Tokens live under the XDG data directory with owner-only permissions
package remote

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// SheetsScope grants read/write access to spreadsheets.
const SheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// OAuthRedirectURL is where the local callback server listens during login.
const OAuthRedirectURL = "http://localhost:8080/oauth/callback"

// NewOAuthConfig creates the OAuth2 config from GOOGLE_CLIENT_ID and
// GOOGLE_CLIENT_SECRET.
func NewOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  OAuthRedirectURL,
		Scopes:       []string{SheetsScope},
		Endpoint:     google.Endpoint,
	}
}

// OAuthConfig returns the config or an error when credentials are missing.
func OAuthConfig() (*oauth2.Config, error) {
	config := NewOAuthConfig()
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables")
	}
	return config, nil
}

// TokenPath returns the XDG-compliant location of the stored token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "quotedesk", "google-credentials.json")
}

// SaveToken writes token to TokenPath.
func SaveToken(token *oauth2.Token) error {
	return saveTokenTo(TokenPath(), token)
}

func saveTokenTo(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// LoadToken reads the token saved by SaveToken.
func LoadToken() (*oauth2.Token, error) {
	return loadTokenFrom(TokenPath())
}

func loadTokenFrom(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}
