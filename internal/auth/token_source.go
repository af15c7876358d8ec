package auth

import (
	"log"
	"sync"

	"golang.org/x/oauth2"
)

// tokenNotifyFunc is called with each newly obtained token.
type tokenNotifyFunc func(*oauth2.Token) error

// persistingTokenSource wraps a TokenSource and reports every token whose
// access token differs from the last one seen, so refreshed tokens can be
// written back to the cache.
type persistingTokenSource struct {
	mu     sync.Mutex
	src    oauth2.TokenSource
	notify tokenNotifyFunc
	curr   *oauth2.Token
}

func newPersistingTokenSource(src oauth2.TokenSource, tok *oauth2.Token, notify tokenNotifyFunc) *persistingTokenSource {
	return &persistingTokenSource{
		src:    src,
		notify: notify,
		curr:   tok,
	}
}

// Token implements oauth2.TokenSource.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	if s.curr == nil || s.curr.AccessToken != tok.AccessToken {
		s.curr = tok
		// The new token is still usable even if it cannot be stored.
		if err := s.notify(tok); err != nil {
			log.Printf("Warning: failed to persist refreshed token: %v", err)
		}
	}

	return s.curr, nil
}
