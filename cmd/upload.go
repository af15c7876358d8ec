package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knpwrs/vidmerge/internal/auth"
	"github.com/knpwrs/vidmerge/internal/progress"
	"github.com/knpwrs/vidmerge/internal/youtube"
)

var (
	title       string
	description string
	privacy     string
	category    string
	tags        []string
	madeForKids bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a video file to YouTube",
	Long: `Upload one video file to YouTube with a title, description and visibility.

The title defaults to the file name without its extension. Visibility is one
of public, private or unlisted and is checked before any authentication.

On the first run a browser window opens to grant access. The token is cached
in the --token file and refreshed automatically on later runs.

Uploads are not retried. If the daily upload quota is used up, run the
command again after it resets.`,
	Example: `  # Upload as unlisted, titled "merged_video"
  vidmerge upload merged_video.mp4

  # Upload publicly with a title and description
  vidmerge upload merged_video.mp4 --title "Summer 2024" --description "Beach day" --privacy public

  # Upload privately with tags in the Travel & Events category
  vidmerge upload trip.mp4 --privacy private --category "Travel & Events" --tags travel,family`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&title, "title", "", "Video title (default: file name without extension)")
	uploadCmd.Flags().StringVar(&description, "description", "", "Video description")
	uploadCmd.Flags().StringVar(&privacy, "privacy", string(youtube.DefaultPrivacy), "Visibility: public, private or unlisted")
	uploadCmd.Flags().StringVar(&category, "category", youtube.DefaultCategory, "Category ID or name")
	uploadCmd.Flags().StringSliceVar(&tags, "tags", []string{}, "Tags (comma-separated)")
	uploadCmd.Flags().BoolVar(&madeForKids, "made-for-kids", false, "Declare the video as made for kids")

	rootCmd.AddCommand(uploadCmd)
}

// runUpload is the main execution function for the upload command.
func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]

	// Everything that can be checked locally is checked before authenticating.
	opts, err := uploadOptions(cmd)
	if err != nil {
		return err
	}
	video, err := youtube.NewVideo(youtube.TitleFromPath(path), opts...)
	if err != nil {
		return err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot upload %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("cannot upload %s: not a regular file", path)
	}

	out := cmd.OutOrStdout()
	if verbose {
		fmt.Fprintf(out, "File: %s (%s)\n", path, progress.FormatBytes(fi.Size()))
		fmt.Fprintf(out, "Title: %s\n", video.Snippet.Title)
		fmt.Fprintf(out, "Privacy: %s\n", video.Status.PrivacyStatus)
		fmt.Fprintf(out, "Category: %s\n", video.Snippet.CategoryId)
		if len(video.Snippet.Tags) > 0 {
			fmt.Fprintf(out, "Tags: %s\n", strings.Join(video.Snippet.Tags, ", "))
		}
		fmt.Fprintln(out)
	}

	tracker := progress.New(out, true, verbose)
	up, err := newUploader(cmd.Context(), out, tracker)
	if err != nil {
		return err
	}

	tracker.Reset()
	fmt.Fprintf(out, "Uploading %s...\n", path)
	vid, err := up.UploadFile(cmd.Context(), path, opts...)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	tracker.PrintSummary("Upload Complete", [][2]string{
		{"Video ID", vid.Id},
		{"Title", video.Snippet.Title},
		{"Privacy", video.Status.PrivacyStatus},
		{"Size", progress.FormatBytes(fi.Size())},
		{"URL", youtube.WatchURL(vid.Id)},
	})
	return nil
}

// uploadOptions turns flags and configured defaults into video options.
func uploadOptions(cmd *cobra.Command) ([]youtube.VideoUploadOption, error) {
	p, err := youtube.ParsePrivacy(stringFlag(cmd, "privacy", privacy, settings.Upload.Privacy))
	if err != nil {
		return nil, err
	}

	opts := []youtube.VideoUploadOption{
		youtube.WithDescription(description),
		youtube.WithPrivacy(p),
		youtube.WithCategory(stringFlag(cmd, "category", category, settings.Upload.Category)),
		youtube.WithTags(sliceFlag(cmd, "tags", tags, settings.Upload.Tags)),
		youtube.WithMadeForKids(boolFlag(cmd, "made-for-kids", madeForKids, settings.Upload.MadeForKids)),
	}
	if title != "" {
		opts = append(opts, youtube.WithTitle(title))
	}
	return opts, nil
}

// newUploader authenticates and returns an Uploader reporting to tracker.
func newUploader(ctx context.Context, out io.Writer, tracker *progress.Tracker) (*youtube.Uploader, error) {
	ts, err := tokenSource(ctx, out)
	if err != nil {
		return nil, err
	}

	var report func(current, total int64)
	if tracker != nil {
		report = tracker.Update
	}
	return youtube.New(ctx, youtube.Config{
		HTTPClient: auth.Client(ts),
		Progress:   report,
	})
}
