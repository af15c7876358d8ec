package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// refreshInterval limits how often the progress line is redrawn.
const refreshInterval = 500 * time.Millisecond

// Tracker tracks transfer progress and provides formatted output.
//
// Update matches the signature of googleapi.ProgressUpdater so a Tracker can be
// handed straight to a media upload call.
type Tracker struct {
	mu sync.Mutex

	// Byte counts
	totalBytes int64
	doneBytes  int64

	// Timing
	startTime time.Time
	lastPrint time.Time

	// Display
	out     io.Writer
	enabled bool
	verbose bool
}

// New creates a tracker writing to out.
func New(out io.Writer, enabled, verbose bool) *Tracker {
	return &Tracker{
		out:       out,
		enabled:   enabled,
		verbose:   verbose,
		startTime: time.Now(),
	}
}

// Reset restarts the elapsed-time clock and clears byte counters.
func (p *Tracker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startTime = time.Now()
	p.lastPrint = time.Time{}
	p.totalBytes = 0
	p.doneBytes = 0
}

// Update records that current of total bytes have been transferred. A total of
// zero means the size is unknown.
func (p *Tracker) Update(current, total int64) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	p.doneBytes = current
	p.totalBytes = total
	due := time.Since(p.lastPrint) >= refreshInterval || (total > 0 && current >= total)
	p.mu.Unlock()

	if due {
		p.PrintProgress()
	}
}

// PrintProgress prints a formatted progress update.
func (p *Tracker) PrintProgress() {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.lastPrint = now
	elapsed := now.Sub(p.startTime)

	// Calculate transfer speed
	var speed float64
	if elapsed.Seconds() > 0 {
		speed = float64(p.doneBytes) / elapsed.Seconds()
	}

	doneStr := FormatBytes(p.doneBytes)
	speedStr := FormatBytes(int64(speed)) + "/s"

	var msg string
	if p.totalBytes > 0 {
		percentage := float64(p.doneBytes) / float64(p.totalBytes) * 100
		msg = fmt.Sprintf("Uploading: %.1f%% | %s of %s | %s | Elapsed: %s",
			percentage, doneStr, FormatBytes(p.totalBytes), speedStr, FormatDuration(elapsed))
	} else {
		msg = fmt.Sprintf("Uploading: %s sent | %s | Elapsed: %s",
			doneStr, speedStr, FormatDuration(elapsed))
	}

	fmt.Fprintf(p.out, "\r%-100s", msg)
}

// PrintSummary prints a boxed summary with a heading and label/value rows.
func (p *Tracker) PrintSummary(heading string, rows [][2]string) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	rule := strings.Repeat("━", 78)
	fmt.Fprintln(p.out) // New line after progress bar
	fmt.Fprintln(p.out, rule)
	fmt.Fprintf(p.out, "%s%s\n", strings.Repeat(" ", max(0, (78-len(heading))/2)), heading)
	fmt.Fprintln(p.out, rule)

	width := 0
	for _, row := range rows {
		width = max(width, len(row[0]))
	}
	for _, row := range rows {
		fmt.Fprintf(p.out, "  %-*s  %s\n", width+1, row[0]+":", row[1])
	}
	fmt.Fprintf(p.out, "  %-*s  %s\n", width+1, "Time Elapsed:", FormatDuration(time.Since(p.startTime)))
	fmt.Fprintln(p.out, rule)
}

// PrintVerbose prints a verbose message if verbose mode is enabled.
func (p *Tracker) PrintVerbose(format string, args ...interface{}) {
	if !p.enabled || !p.verbose {
		return
	}
	// Clear the progress line before printing verbose output
	fmt.Fprintf(p.out, "\r%-100s\r", "")
	fmt.Fprintf(p.out, format+"\n", args...)
}

// FormatBytes formats bytes into a human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

// FormatDuration formats a duration into a human-readable string.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
