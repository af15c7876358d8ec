package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ErrConsentDenied is returned when the user declines access in the browser.
var ErrConsentDenied = errors.New("authorization was denied")

// LocalServerFlow runs the installed-app consent flow.
//
// It listens on a loopback address, opens the authorization page in the
// user's browser, and waits for the provider to redirect back with an
// authorization code, which is then exchanged for a token. The request is
// bound to a random state value and a PKCE verifier.
type LocalServerFlow struct {
	// Host is the loopback address to listen on. Defaults to 127.0.0.1.
	Host string
	// Port to listen on; 0 picks a free port.
	Port int
	// OpenBrowser opens the authorization URL. Defaults to the platform opener.
	OpenBrowser func(url string) error
	// Out receives instructions for the user. Defaults to os.Stdout.
	Out io.Writer
}

type callbackResult struct {
	code string
	err  error
}

// Authorize implements Consenter.
func (f *LocalServerFlow) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	host := f.Host
	if host == "" {
		host = "127.0.0.1"
	}
	open := f.OpenBrowser
	if open == nil {
		open = openBrowser
	}
	out := f.Out
	if out == nil {
		out = os.Stdout
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(f.Port)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for the authorization redirect: %w", err)
	}

	c := *cfg
	c.RedirectURL = "http://" + ln.Addr().String() + "/"

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := c.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)
	defer srv.Close()

	fmt.Fprintf(out, "Opening your browser to authorize access. If it does not open, visit:\n\n  %s\n\n", authURL)
	if err := open(authURL); err != nil {
		fmt.Fprintf(out, "Could not open a browser: %v\n", err)
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := c.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	fmt.Fprintln(out, "Authorization complete.")
	return tok, nil
}

// callbackHandler receives the provider's redirect and reports the first
// outcome on results.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("authorization response has an unexpected state value")
		case q.Get("error") != "":
			res.err = fmt.Errorf("%w: %s", ErrConsentDenied, q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("authorization response has no code")
		default:
			res.code = q.Get("code")
		}

		select {
		case results <- res:
		default:
		}

		if res.err != nil {
			http.Error(w, "Authorization failed: "+res.err.Error(), http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this window and return to the terminal.")
	})
}
