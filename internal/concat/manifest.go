package concat

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knpwrs/vidmerge/internal/filesystem"
)

// Manifest is the ordered input list consumed by ffmpeg's concat demuxer.
//
// On disk it is a text file with one directive per line:
//
//	file '/abs/path/20240101_1.mp4'
//	file '/abs/path/20240101_2.mp4'
//
// Paths are single-quoted; a quote inside a path is written as '\''.
type Manifest struct {
	Paths []string
}

// NewManifest creates a manifest listing paths in the given order.
func NewManifest(paths []string) *Manifest {
	return &Manifest{Paths: append([]string(nil), paths...)}
}

// Bytes renders the manifest in concat demuxer syntax.
func (m *Manifest) Bytes() []byte {
	var buf bytes.Buffer
	for _, p := range m.Paths {
		buf.WriteString("file ")
		buf.WriteString(quote(p))
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// ParseManifest parses concat demuxer syntax and returns the listed files.
//
// Blank lines and lines starting with # are skipped. Directives other than
// "file" (ffconcat, duration, inpoint, ...) are accepted but ignored, since
// only the file order matters here.
func ParseManifest(content []byte) (*Manifest, error) {
	m := &Manifest{Paths: make([]string, 0)}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		directive, rest, _ := strings.Cut(line, " ")
		if directive != "file" {
			continue
		}

		p, err := unquote(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if p == "" {
			return nil, fmt.Errorf("line %d: file directive without a path", lineNo)
		}
		m.Paths = append(m.Paths, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning manifest: %w", err)
	}

	return m, nil
}

// ReadManifest loads a manifest from disk and checks that every listed file
// exists. Relative entries are resolved against the manifest's directory, the
// same way ffmpeg resolves them.
func ReadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	m, err := ParseManifest(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if len(m.Paths) == 0 {
		return nil, fmt.Errorf("manifest %s lists no files", path)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	for i, p := range m.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
			m.Paths[i] = p
		}
		exists, err := filesystem.FileExists(p)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", p, err)
		}
		if !exists {
			return nil, fmt.Errorf("manifest %s lists missing file %s", path, p)
		}
	}

	return m, nil
}

// quote wraps a path in single quotes for the concat demuxer.
func quote(p string) string {
	return "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
}

// unquote reverses quote. Outside quotes a backslash escapes the next
// character; inside quotes everything is literal.
func unquote(s string) (string, error) {
	var b strings.Builder
	inQuote := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
		case c == '\\' && !inQuote:
			if i+1 >= len(s) {
				return "", fmt.Errorf("dangling escape in %q", s)
			}
			i++
			b.WriteByte(s[i])
		default:
			b.WriteByte(c)
		}
	}

	if inQuote {
		return "", fmt.Errorf("unterminated quote in %q", s)
	}
	return b.String(), nil
}
