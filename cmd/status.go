package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knpwrs/vidmerge/internal/youtube"
)

var statusCmd = &cobra.Command{
	Use:   "status VIDEO_ID",
	Short: "Show the processing status of an uploaded video",
	Long: `Look up the upload status of a video: uploaded, processed, failed,
rejected or deleted.`,
	Example: `  vidmerge status dQw4w9WgXcQ`,
	Args:    cobra.ExactArgs(1),
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// runStatus is the main execution function for the status command.
func runStatus(cmd *cobra.Command, args []string) error {
	id := args[0]

	up, err := newUploader(cmd.Context(), cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}

	status, err := up.Status(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, status)
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "URL: %s\n", youtube.WatchURL(id))
	}
	return nil
}
