// Package auth obtains and caches OAuth tokens for Google APIs.
//
// A token is loaded from a local cache file when present. Expired tokens are
// refreshed through the token endpoint; when there is no usable token the
// user is sent through an interactive consent flow once and the result is
// cached for later runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/knpwrs/vidmerge/internal/httpclient"
)

// Consenter obtains a fresh token by asking the user to grant access.
type Consenter interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// Config holds configuration for NewTokenSource.
type Config struct {
	// CredentialsFile is the OAuth client JSON downloaded by the user
	CredentialsFile string
	// TokenFile is where tokens are cached between runs
	TokenFile string
	Scopes    []string

	// Consent runs when no usable token is cached. Defaults to a LocalServerFlow.
	Consent Consenter
	// HTTPClient is used for token endpoint requests. Defaults to a retrying client.
	HTTPClient *http.Client
}

// NewTokenSource resolves a token source from cached or newly granted
// credentials.
//
// Resolution order:
// 1. A valid cached token is used as-is; no consent and no network access
// 2. An expired cached token with a refresh token is refreshed
// 3. Otherwise, or if the refresh is rejected, Consent runs once
//
// Every new token, including later refreshes during the process lifetime, is
// written to the cache.
func NewTokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, error) {
	oauthCfg, err := LoadCredentials(cfg.CredentialsFile, cfg.Scopes...)
	if err != nil {
		return nil, err
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = httpclient.New(httpclient.DefaultOptions())
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)

	cache := TokenCache{Path: cfg.TokenFile}

	tok, err := cache.Load()
	switch {
	case errors.Is(err, ErrNoToken):
		tok = nil
	case err != nil:
		log.Printf("Warning: ignoring unreadable token cache: %v", err)
		tok = nil
	}

	if tok != nil && !tok.Valid() && tok.RefreshToken == "" {
		tok = nil
	}

	if tok != nil {
		ts := newPersistingTokenSource(oauthCfg.TokenSource(ctx, tok), tok, cache.Save)
		_, err := ts.Token()
		if err == nil {
			return ts, nil
		}

		var re *oauth2.RetrieveError
		if !errors.As(err, &re) {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		log.Printf("Cached token was rejected, requesting new authorization: %v", err)
	}

	consent := cfg.Consent
	if consent == nil {
		consent = &LocalServerFlow{}
	}

	tok, err = consent.Authorize(ctx, oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if err := cache.Save(tok); err != nil {
		return nil, err
	}

	return newPersistingTokenSource(oauthCfg.TokenSource(ctx, tok), tok, cache.Save), nil
}

// Client returns an HTTP client that authorizes every request with ts.
//
// API traffic uses the default transport directly; only token endpoint calls
// go through the retrying client.
func Client(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   http.DefaultTransport,
		},
	}
}
