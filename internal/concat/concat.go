package concat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/knpwrs/vidmerge/internal/filesystem"
	"github.com/knpwrs/vidmerge/internal/progress"
)

// Defaults used when the corresponding Config field is empty.
const (
	DefaultInputDir = "tmp"
	DefaultOutput   = "merged_video.mp4"
	DefaultListFile = "concat_list.txt"
	DefaultFFmpeg   = "ffmpeg"
)

// VideoExtensions are the file types picked up from the input directory.
var VideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".m4v", ".flv", ".wmv"}

var (
	// ErrNoVideos is returned when the input directory has no video files.
	ErrNoVideos = errors.New("no video files found")
	// ErrOutputExists is returned when the output file exists and overwriting
	// was not requested.
	ErrOutputExists = errors.New("output file already exists")
	// ErrFFmpegNotFound is returned when the ffmpeg binary cannot be resolved.
	ErrFFmpegNotFound = errors.New("ffmpeg is not installed")
)

// InstallHint tells the user how to get ffmpeg.
const InstallHint = `Install it with one of:
  Ubuntu/Debian: sudo apt-get install ffmpeg
  macOS:         brew install ffmpeg`

// Concatenator joins video files with ffmpeg's concat demuxer.
//
// Streams are copied, not re-encoded, so inputs must share codecs and
// parameters (as clips from the same camera or phone do).
type Concatenator struct {
	inputDir   string
	output     string
	listFile   string
	fromList   string
	ffmpegPath string
	extensions []string
	keepList   bool
	overwrite  bool
	runner     Runner
	lookPath   func(string) (string, error)
	out        io.Writer
	progress   *progress.Tracker
}

// Config holds configuration for the Concatenator.
type Config struct {
	InputDir   string
	Output     string
	ListFile   string
	FromList   string // Use an existing manifest instead of scanning InputDir
	FFmpegPath string
	Extensions []string
	KeepList   bool
	Overwrite  bool
	Verbose    bool

	// Runner executes ffmpeg. Defaults to ExecRunner.
	Runner Runner
	// LookPath resolves the ffmpeg binary. Defaults to exec.LookPath.
	LookPath func(string) (string, error)
	// Out receives verbose output. Defaults to os.Stdout.
	Out io.Writer
}

// Result describes a completed concatenation.
type Result struct {
	Inputs       []filesystem.Entry
	Output       string
	ManifestPath string
	ManifestKept bool
}

// New creates a new Concatenator with the given configuration.
func New(cfg Config) *Concatenator {
	c := &Concatenator{
		inputDir:   cfg.InputDir,
		output:     cfg.Output,
		listFile:   cfg.ListFile,
		fromList:   cfg.FromList,
		ffmpegPath: cfg.FFmpegPath,
		extensions: filesystem.NormalizeExtensions(cfg.Extensions),
		keepList:   cfg.KeepList,
		overwrite:  cfg.Overwrite,
		runner:     cfg.Runner,
		lookPath:   cfg.LookPath,
	}

	if c.inputDir == "" {
		c.inputDir = DefaultInputDir
	}
	if c.output == "" {
		c.output = DefaultOutput
	}
	if c.listFile == "" {
		c.listFile = DefaultListFile
	}
	if c.ffmpegPath == "" {
		c.ffmpegPath = DefaultFFmpeg
	}
	if len(c.extensions) == 0 {
		c.extensions = VideoExtensions
	}
	if c.runner == nil {
		c.runner = ExecRunner{}
	}
	if c.lookPath == nil {
		c.lookPath = exec.LookPath
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	c.out = out
	c.progress = progress.New(out, true, cfg.Verbose)

	return c
}

// Concatenate performs a single concatenation run.
//
// It:
// 1. Lists the video files in the input directory (or reads FromList)
// 2. Sorts them by file name
// 3. Writes the manifest
// 4. Runs ffmpeg once against the manifest
// 5. Removes the manifest unless KeepList is set
//
// A manifest given through FromList belongs to the user and is never removed.
func (c *Concatenator) Concatenate(ctx context.Context) (*Result, error) {
	res := &Result{Output: c.output}

	var manifest *Manifest
	if c.fromList != "" {
		c.progress.PrintVerbose("Reading manifest: %s", c.fromList)
		m, err := ReadManifest(c.fromList)
		if err != nil {
			return nil, err
		}
		entries, err := statAll(m.Paths)
		if err != nil {
			return nil, err
		}
		manifest = m
		res.Inputs = entries
	} else {
		c.progress.PrintVerbose("Scanning directory: %s", c.inputDir)
		entries, err := filesystem.FindFiles(c.inputDir, c.extensions)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w in %s (supported: %s)",
				ErrNoVideos, c.inputDir, strings.Join(c.extensions, ", "))
		}
		paths := make([]string, len(entries))
		for i, e := range entries {
			paths[i] = e.Path
		}
		manifest = NewManifest(paths)
		res.Inputs = entries
	}
	c.printInputs(res.Inputs)

	if err := c.checkOutput(manifest.Paths); err != nil {
		return nil, err
	}

	ffmpeg, err := c.lookPath(c.ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("%w (%s not found on PATH)\n%s", ErrFFmpegNotFound, c.ffmpegPath, InstallHint)
	}
	c.progress.PrintVerbose("Using ffmpeg at %s", ffmpeg)

	listPath := c.fromList
	if listPath == "" {
		listPath = c.listFile
		if err := filesystem.WriteFile(listPath, manifest.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("failed to write manifest: %w", err)
		}
		c.progress.PrintVerbose("Wrote manifest to %s", listPath)
	}
	res.ManifestPath = listPath

	if dir := filepath.Dir(c.output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	args := ffmpegArgs(listPath, c.output)
	c.progress.PrintVerbose("Running: %s %s", ffmpeg, strings.Join(args, " "))
	runErr := c.runner.Run(ctx, ffmpeg, args...)

	if c.fromList == "" && !c.keepList {
		if err := os.Remove(listPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to remove manifest %s: %v", listPath, err)
			res.ManifestKept = true
		} else {
			c.progress.PrintVerbose("Removed manifest %s", listPath)
		}
	} else {
		res.ManifestKept = true
	}

	if runErr != nil {
		return nil, fmt.Errorf("ffmpeg concat failed: %w", runErr)
	}

	return res, nil
}

// printInputs lists the inputs in concatenation order.
func (c *Concatenator) printInputs(entries []filesystem.Entry) {
	fmt.Fprintf(c.out, "Files to concatenate (%d, in name order):\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(c.out, "  %d. %s (%s, modified %s)\n",
			i+1, e.Name, progress.FormatBytes(e.Size), e.ModTime.Format("2006-01-02 15:04:05"))
	}
}

// checkOutput refuses to clobber an existing file or one of the inputs.
func (c *Concatenator) checkOutput(inputs []string) error {
	absOutput, err := filepath.Abs(c.output)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", c.output, err)
	}
	for _, in := range inputs {
		if in == absOutput {
			return fmt.Errorf("output %s is also an input file", c.output)
		}
	}

	if c.overwrite {
		return nil
	}
	exists, err := filesystem.FileExists(c.output)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", c.output, err)
	}
	if exists {
		return fmt.Errorf("%w: %s (use --overwrite to replace it)", ErrOutputExists, c.output)
	}
	return nil
}

// ffmpegArgs builds a lossless concat invocation. -safe 0 allows absolute
// paths in the manifest. Overwrite policy is enforced by checkOutput, so
// ffmpeg itself is always told -y.
func ffmpegArgs(listPath, output string) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		output,
	}
}

// statAll builds entries for files listed in a manifest, keeping their order.
func statAll(paths []string) ([]filesystem.Entry, error) {
	entries := make([]filesystem.Entry, 0, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		entries = append(entries, filesystem.Entry{
			Path:    p,
			Name:    filepath.Base(p),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return entries, nil
}
