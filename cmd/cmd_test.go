package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/knpwrs/vidmerge/internal/auth"
	"github.com/knpwrs/vidmerge/internal/concat"
	"github.com/knpwrs/vidmerge/internal/config"
	"github.com/knpwrs/vidmerge/internal/youtube"
)

// execute runs the root command with args in an empty working directory and
// returns its error.
func execute(t *testing.T, work string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(work)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.SecretsEnv, "")

	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default between runs.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestUploadRejectsConfiguredPrivacyBeforeAuth(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "merged_video.mp4"), "video")
	writeFile(t, filepath.Join(work, config.FileName), "upload:\n  privacy: friends\n")

	_, err := execute(t, work, "upload", "merged_video.mp4")
	if !errors.Is(err, youtube.ErrInvalidPrivacy) {
		t.Fatalf("Expected ErrInvalidPrivacy, got %v", err)
	}
}

func TestUploadRejectsInvalidPrivacyBeforeAuth(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "merged_video.mp4"), "video")

	_, err := execute(t, work, "upload", "merged_video.mp4", "--privacy", "secret",
		"--credentials", "missing.json", "--token", "token.json")
	if !errors.Is(err, youtube.ErrInvalidPrivacy) {
		t.Fatalf("Expected ErrInvalidPrivacy, got %v", err)
	}
	if errors.Is(err, auth.ErrCredentialsNotFound) {
		t.Error("Credentials should not be read for an invalid privacy value")
	}
	if _, err := os.Stat(filepath.Join(work, "token.json")); !os.IsNotExist(err) {
		t.Errorf("No token should be cached, stat err = %v", err)
	}
}

func TestUploadPrivacyIsCaseSensitive(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "merged_video.mp4"), "video")

	_, err := execute(t, work, "upload", "merged_video.mp4", "--privacy", "Public",
		"--credentials", "missing.json")
	if !errors.Is(err, youtube.ErrInvalidPrivacy) {
		t.Fatalf("Expected ErrInvalidPrivacy, got %v", err)
	}
}

func TestUploadVerboseWritesToCommandOutput(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "merged_video.mp4"), "video")

	out, err := execute(t, work, "upload", "merged_video.mp4", "-v", "--privacy", "private",
		"--credentials", "missing.json")
	if !errors.Is(err, auth.ErrCredentialsNotFound) {
		t.Fatalf("Expected ErrCredentialsNotFound, got %v", err)
	}
	for _, want := range []string{"Title: merged_video", "Privacy: private", "Credentials: missing.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestUploadMissingFileBeforeAuth(t *testing.T) {
	work := t.TempDir()

	_, err := execute(t, work, "upload", "nope.mp4", "--privacy", "private",
		"--credentials", "missing.json")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected a not-exist error, got %v", err)
	}
	if errors.Is(err, auth.ErrCredentialsNotFound) {
		t.Error("Credentials should not be read when the video file is missing")
	}
}

func TestUploadMissingCredentials(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "merged_video.mp4"), "video")

	out, err := execute(t, work, "upload", "merged_video.mp4", "--privacy", "unlisted",
		"--credentials", "missing.json")
	if !errors.Is(err, auth.ErrCredentialsNotFound) {
		t.Fatalf("Expected ErrCredentialsNotFound, got %v", err)
	}
	if !strings.Contains(out, "Desktop app") {
		t.Errorf("Expected setup instructions in output, got:\n%s", out)
	}
}

func TestConcatUsesConfiguredInputDir(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "tmp", "20240101_1.mp4"), "a")
	if err := os.MkdirAll(filepath.Join(work, "clips"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(work, config.FileName), "concat:\n  input_dir: clips\n")

	_, err := execute(t, work, "concat")
	if !errors.Is(err, concat.ErrNoVideos) {
		t.Fatalf("Expected ErrNoVideos for the configured empty directory, got %v", err)
	}
}

func TestConcatMissingFFmpegLeavesNoList(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "tmp", "20240101_1.mp4"), "a")
	writeFile(t, filepath.Join(work, "tmp", "20240101_2.mp4"), "b")

	out, err := execute(t, work, "concat", "--ffmpeg", "vidmerge-test-no-such-ffmpeg")
	if !errors.Is(err, concat.ErrFFmpegNotFound) {
		t.Fatalf("Expected ErrFFmpegNotFound, got %v", err)
	}
	if !strings.Contains(out, "1. 20240101_1.mp4") {
		t.Errorf("Expected the file listing in output, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(work, concat.DefaultListFile)); !os.IsNotExist(err) {
		t.Errorf("No concat list should be left behind, stat err = %v", err)
	}
}

func TestConcatVerboseWritesToCommandOutput(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "tmp", "20240101_1.mp4"), "a")

	out, err := execute(t, work, "concat", "-v", "--ffmpeg", "vidmerge-test-no-such-ffmpeg")
	if !errors.Is(err, concat.ErrFFmpegNotFound) {
		t.Fatalf("Expected ErrFFmpegNotFound, got %v", err)
	}
	for _, want := range []string{"Input directory: tmp", "Output file: merged_video.mp4", "Scanning directory: tmp"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestAuthForceKeepsTokenWithoutCredentials(t *testing.T) {
	work := t.TempDir()
	tokenPath := filepath.Join(work, "token.json")
	writeFile(t, tokenPath, `{"access_token":"still-good","token_type":"Bearer"}`)

	_, err := execute(t, work, "auth", "--force", "--credentials", "missing.json", "--token", "token.json")
	if !errors.Is(err, auth.ErrCredentialsNotFound) {
		t.Fatalf("Expected ErrCredentialsNotFound, got %v", err)
	}
	if _, err := os.Stat(tokenPath); err != nil {
		t.Errorf("Cached token should survive a failed --force, stat err = %v", err)
	}
}
