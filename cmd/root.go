package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/knpwrs/vidmerge/internal/config"
)

var (
	configFile      string
	credentialsFile string
	tokenFile       string
	verbose         bool

	// settings is the effective configuration, resolved before each command runs.
	settings *config.Config
)

// rootCmd represents the base command when called without any subcommands.
//
// vidmerge joins the clips of one recording session into a single file and
// publishes the result to YouTube.
var rootCmd = &cobra.Command{
	Use:   "vidmerge",
	Short: "Concatenate video clips and upload them to YouTube",
	Long: `vidmerge is a CLI utility that joins video files in file name order and uploads
the result to YouTube.

Clips exported from a phone or a photo library are usually named by their
timestamp, so sorting by name restores recording order. Files are joined with
ffmpeg's concat demuxer without re-encoding.

Uploading authenticates with an OAuth client file downloaded from the Google
Cloud Console. The first run opens a browser to grant access; the resulting
token is cached and reused afterwards.

Defaults can be kept in a YAML file (.vidmerge.yaml in the working directory
or the home directory). Flags override the file, and the YOUTUBE_SECRETS
environment variable overrides the credentials path set in the file.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
//
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./.vidmerge.yaml, then ~/.vidmerge.yaml)")
	rootCmd.PersistentFlags().StringVar(&credentialsFile, "credentials", config.DefaultCredentialsFile, "OAuth client credentials file")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token", config.DefaultTokenFile, "Token cache file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// loadSettings resolves the configuration for the command about to run.
func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	cfg.Credentials = stringFlag(cmd, "credentials", credentialsFile, cfg.Credentials)
	cfg.Token = stringFlag(cmd, "token", tokenFile, cfg.Token)

	settings = cfg
	return nil
}

// stringFlag returns the flag's value if it was set on the command line and
// fallback otherwise.
func stringFlag(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// boolFlag is stringFlag for boolean flags.
func boolFlag(cmd *cobra.Command, name string, value, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// sliceFlag is stringFlag for list flags.
func sliceFlag(cmd *cobra.Command, name string, value, fallback []string) []string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}
