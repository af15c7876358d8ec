package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/knpwrs/vidmerge/internal/auth"
	"github.com/knpwrs/vidmerge/internal/youtube"
)

var forceAuth bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to YouTube and cache the token",
	Long: `Run the browser authorization flow ahead of time and cache the token.

A cached token that is still valid, or can be refreshed, is reused without
opening a browser. Use --force to discard it and authorize again, for example
to switch accounts.`,
	Example: `  # Authorize once so later uploads run unattended
  vidmerge auth

  # Authorize a different account
  vidmerge auth --force --token other_token.json`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&forceAuth, "force", false, "Discard the cached token and authorize again")

	rootCmd.AddCommand(authCmd)
}

// runAuth is the main execution function for the auth command.
func runAuth(cmd *cobra.Command, args []string) error {
	if forceAuth {
		// Keep a working token unless a new one can actually be requested.
		if _, err := auth.LoadCredentials(settings.Credentials, youtube.Scopes...); err != nil {
			return err
		}
		if err := os.Remove(settings.Token); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cached token: %w", err)
		}
	}

	ts, err := tokenSource(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	tok, err := ts.Token()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Token cached in %s\n", settings.Token)
	if verbose && !tok.Expiry.IsZero() {
		fmt.Fprintf(cmd.OutOrStdout(), "Access token expires %s\n", tok.Expiry.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// tokenSource returns a token source for the configured credentials,
// running the consent flow if nothing usable is cached.
func tokenSource(ctx context.Context, out io.Writer) (oauth2.TokenSource, error) {
	if verbose {
		fmt.Fprintf(out, "Credentials: %s\n", settings.Credentials)
		fmt.Fprintf(out, "Token cache: %s\n", settings.Token)
	}
	return auth.NewTokenSource(ctx, auth.Config{
		CredentialsFile: settings.Credentials,
		TokenFile:       settings.Token,
		Scopes:          youtube.Scopes,
		Consent:         &auth.LocalServerFlow{Out: out},
	})
}
