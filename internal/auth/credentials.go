package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/knpwrs/vidmerge/internal/filesystem"
)

var (
	// ErrCredentialsNotFound is returned when the OAuth client file is missing.
	ErrCredentialsNotFound = errors.New("credentials file not found")
	// ErrNoToken is returned by TokenCache.Load when nothing is cached yet.
	ErrNoToken = errors.New("no cached token")
)

// credentialsHint explains how to obtain the client file. %s is its path.
const credentialsHint = `To create one:
  1. Open the Google Cloud Console and enable the YouTube Data API v3
  2. Under APIs & Services > Credentials, create an OAuth client ID of type "Desktop app"
  3. Download the JSON and save it as %s`

// LoadCredentials reads a Google OAuth client file (the JSON downloaded from
// the Cloud Console) and returns a config for the given scopes.
func LoadCredentials(path string, scopes ...string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s\n"+credentialsHint, ErrCredentialsNotFound, path, path)
		}
		return nil, fmt.Errorf("failed to read credentials %s: %w", path, err)
	}

	cfg, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials file %s: %w", path, err)
	}
	return cfg, nil
}

// TokenCache stores an OAuth token as JSON on the local disk.
//
// The file holds a live credential, so it is written with mode 0600.
type TokenCache struct {
	Path string
}

// Load returns the cached token, or ErrNoToken if the cache file is absent.
func (c TokenCache) Load() (*oauth2.Token, error) {
	b, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token cache %s: %w", c.Path, err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("failed to decode token cache %s: %w", c.Path, err)
	}
	return tok, nil
}

// Save writes tok to the cache, replacing any previous token.
func (c TokenCache) Save(tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := filesystem.WriteFile(c.Path, b, 0600); err != nil {
		return fmt.Errorf("failed to save token cache: %w", err)
	}
	return nil
}
