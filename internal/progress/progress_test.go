package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in       int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.expected {
			t.Errorf("FormatBytes(%d) = %s; want %s", tt.in, got, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{4 * time.Second, "4s"},
		{61 * time.Second, "1m 1s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.expected {
			t.Errorf("FormatDuration(%v) = %s; want %s", tt.in, got, tt.expected)
		}
	}
}

func TestUpdatePrintsPercentage(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true, false)

	p.Update(512, 1024)

	if !strings.Contains(buf.String(), "50.0%") {
		t.Errorf("Expected progress output to contain 50.0%%, got %q", buf.String())
	}
}

func TestUpdateThrottlesUntilComplete(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true, false)

	p.Update(100, 1000)
	first := buf.Len()
	p.Update(200, 1000)
	if buf.Len() != first {
		t.Error("Second update inside the refresh interval should not redraw")
	}

	p.Update(1000, 1000)
	if !strings.Contains(buf.String(), "100.0%") {
		t.Errorf("Completion should always redraw, got %q", buf.String())
	}
}

func TestDisabledTrackerIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false, true)

	p.Update(1, 2)
	p.PrintVerbose("hello %s", "world")
	p.PrintSummary("Done", nil)

	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestPrintVerboseRequiresVerbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true, false).PrintVerbose("quiet")
	if buf.Len() != 0 {
		t.Errorf("Expected no output without verbose, got %q", buf.String())
	}

	New(&buf, true, true).PrintVerbose("loud %d", 1)
	if !strings.Contains(buf.String(), "loud 1\n") {
		t.Errorf("Expected verbose line, got %q", buf.String())
	}
}

func TestPrintSummaryRows(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true, false)

	p.PrintSummary("Upload Complete", [][2]string{
		{"Video ID", "abc123"},
		{"URL", "https://www.youtube.com/watch?v=abc123"},
	})

	out := buf.String()
	for _, want := range []string{"Upload Complete", "Video ID:", "abc123", "Time Elapsed:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary missing %q:\n%s", want, out)
		}
	}
}
