// Package config loads optional defaults for vidmerge from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/knpwrs/vidmerge/internal/concat"
	"github.com/knpwrs/vidmerge/internal/youtube"
)

const (
	// FileName is the config file looked up when no path is given.
	FileName = ".vidmerge.yaml"
	// SecretsEnv names the OAuth client credentials file and takes precedence
	// over the config file.
	SecretsEnv = "YOUTUBE_SECRETS"

	DefaultCredentialsFile = "client_secrets.json"
	DefaultTokenFile       = "token.json"
)

// Config holds the settings that can come from a config file.
type Config struct {
	Credentials string       `yaml:"credentials"`
	Token       string       `yaml:"token"`
	Concat      ConcatConfig `yaml:"concat"`
	Upload      UploadConfig `yaml:"upload"`
}

// ConcatConfig holds defaults for the concat command.
type ConcatConfig struct {
	InputDir   string   `yaml:"input_dir"`
	Output     string   `yaml:"output"`
	ListFile   string   `yaml:"list_file"`
	FFmpeg     string   `yaml:"ffmpeg"`
	Extensions []string `yaml:"extensions"`
	KeepList   bool     `yaml:"keep_list"`
}

// UploadConfig holds defaults for the upload command.
type UploadConfig struct {
	Privacy     string   `yaml:"privacy"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
	MadeForKids bool     `yaml:"made_for_kids"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Credentials: DefaultCredentialsFile,
		Token:       DefaultTokenFile,
		Concat: ConcatConfig{
			InputDir:   concat.DefaultInputDir,
			Output:     concat.DefaultOutput,
			ListFile:   concat.DefaultListFile,
			FFmpeg:     concat.DefaultFFmpeg,
			Extensions: concat.VideoExtensions,
		},
		Upload: UploadConfig{
			Privacy:  string(youtube.DefaultPrivacy),
			Category: youtube.DefaultCategory,
		},
	}
}

// Load builds the effective settings: built-in defaults, overlaid by the
// config file, overlaid by the environment.
//
// With an empty path, FileName is looked up in the working directory and then
// the home directory, and a missing file is not an error. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if path != "" {
		if err := parseFile(path, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file (%s): %w", path, err)
		}
	}

	if v := os.Getenv(SecretsEnv); v != "" {
		cfg.Credentials = v
	}

	return cfg, nil
}

// findFile returns the first config file found, or "".
func findFile() string {
	paths := []string{filepath.Join(".", FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}

	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// parseFile decodes path over cfg. Keys absent from the file keep their
// current values; unknown keys are an error.
func parseFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
