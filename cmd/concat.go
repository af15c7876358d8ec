package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knpwrs/vidmerge/internal/concat"
	"github.com/knpwrs/vidmerge/internal/filesystem"
	"github.com/knpwrs/vidmerge/internal/progress"
)

var (
	inputDir   string
	output     string
	listFile   string
	fromList   string
	ffmpegPath string
	extensions []string
	keepList   bool
	overwrite  bool
)

var concatCmd = &cobra.Command{
	Use:   "concat",
	Short: "Join the video files in a directory in file name order",
	Long: `Concatenate every video file in the input directory into one file.

Files are sorted by name, written to an ffmpeg concat list, and joined with
"ffmpeg -c copy", so all clips must share the same codecs. The list file is
removed afterwards unless --keep-list is given.`,
	Example: `  # Join tmp/*.mp4 (and other video types) into merged_video.mp4
  vidmerge concat

  # Join clips from another directory and keep the generated list
  vidmerge concat --input-dir ./downloads --output trip.mp4 --keep-list

  # Join only .mov files, replacing an existing output
  vidmerge concat --ext .mov --overwrite

  # Join the files named in a hand-edited list
  vidmerge concat --from-list concat_list.txt --output edited.mp4`,
	Args: cobra.NoArgs,
	RunE: runConcat,
}

func init() {
	concatCmd.Flags().StringVar(&inputDir, "input-dir", concat.DefaultInputDir, "Directory containing the video files")
	concatCmd.Flags().StringVarP(&output, "output", "o", concat.DefaultOutput, "Output file")
	concatCmd.Flags().BoolVar(&keepList, "keep-list", false, "Keep the concat list file after joining")
	concatCmd.Flags().StringVar(&listFile, "list-file", concat.DefaultListFile, "Path of the generated concat list file")
	concatCmd.Flags().StringVar(&fromList, "from-list", "", "Join the files named in an existing concat list instead of scanning --input-dir")
	concatCmd.Flags().StringVar(&ffmpegPath, "ffmpeg", concat.DefaultFFmpeg, "ffmpeg binary name or path")
	concatCmd.Flags().StringSliceVar(&extensions, "ext", []string{}, "Video file extensions to include (comma-separated, e.g., .mp4,.mov)")
	concatCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the output file if it exists")

	rootCmd.AddCommand(concatCmd)
}

// runConcat is the main execution function for the concat command.
func runConcat(cmd *cobra.Command, args []string) error {
	cfg := concat.Config{
		InputDir:   stringFlag(cmd, "input-dir", inputDir, settings.Concat.InputDir),
		Output:     stringFlag(cmd, "output", output, settings.Concat.Output),
		ListFile:   stringFlag(cmd, "list-file", listFile, settings.Concat.ListFile),
		FromList:   fromList,
		FFmpegPath: stringFlag(cmd, "ffmpeg", ffmpegPath, settings.Concat.FFmpeg),
		Extensions: filesystem.NormalizeExtensions(sliceFlag(cmd, "ext", extensions, settings.Concat.Extensions)),
		KeepList:   boolFlag(cmd, "keep-list", keepList, settings.Concat.KeepList),
		Overwrite:  overwrite,
		Verbose:    verbose,
		Out:        cmd.OutOrStdout(),
	}

	out := cmd.OutOrStdout()
	if verbose {
		fmt.Fprintf(out, "Input directory: %s\n", cfg.InputDir)
		fmt.Fprintf(out, "Output file: %s\n", cfg.Output)
		if len(cfg.Extensions) > 0 {
			fmt.Fprintf(out, "Extensions: %s\n", strings.Join(cfg.Extensions, ", "))
		}
		fmt.Fprintf(out, "Keep list: %v\n", cfg.KeepList)
		fmt.Fprintln(out)
	}

	c := concat.New(cfg)
	tracker := progress.New(out, true, verbose)

	res, err := c.Concatenate(cmd.Context())
	if err != nil {
		return fmt.Errorf("concatenation failed: %w", err)
	}

	rows := [][2]string{
		{"Files Joined", fmt.Sprint(len(res.Inputs))},
		{"Output", res.Output},
	}
	if fi, err := os.Stat(res.Output); err == nil {
		rows = append(rows, [2]string{"Output Size", progress.FormatBytes(fi.Size())})
	}
	if res.ManifestKept {
		rows = append(rows, [2]string{"Concat List", res.ManifestPath})
	}
	tracker.PrintSummary("Concatenation Complete", rows)

	return nil
}
