// Package progress renders phase execution progress for interactive and
// CI terminals. It plugs into the orchestrator's progress callback and
// tracks per-artifact outcomes as phases run.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/forgeplan/forgeplan/internal/executor"
)

// Indicator provides progress tracking and display for a build run
type Indicator struct {
	writer      io.Writer
	total       int
	completed   int
	failed      int
	phase       int
	startTime   time.Time
	mu          sync.Mutex
	showSpinner bool
	spinnerIdx  int
	stopChan    chan struct{}
	stopOnce    sync.Once // Ensures Stop() is only called once
	isCI        bool
	failures    []failure
}

type failure struct {
	phase int
	path  string
	err   error
}

// Config holds configuration for the progress indicator
type Config struct {
	Writer      io.Writer
	Total       int // Expected artifact count across all phases
	ShowSpinner bool
	IsCI        bool // Set to true in CI/CD environments to disable fancy output
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewIndicator creates a new progress indicator
func NewIndicator(cfg Config) *Indicator {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	// Auto-detect CI environment
	if !cfg.IsCI {
		cfg.IsCI = os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
	}

	return &Indicator{
		writer:      cfg.Writer,
		total:       cfg.Total,
		startTime:   time.Now(),
		showSpinner: cfg.ShowSpinner && !cfg.IsCI,
		stopChan:    make(chan struct{}),
		isCI:        cfg.IsCI,
	}
}

// Callback returns the function to hand to the orchestrator.
func (p *Indicator) Callback() executor.ProgressFunc {
	return p.UpdateArtifact
}

// Start begins the progress indicator display
func (p *Indicator) Start() {
	if p.showSpinner {
		go p.spinnerLoop()
	}
}

// Stop stops the progress indicator
func (p *Indicator) Stop() {
	p.stopOnce.Do(func() {
		if p.showSpinner {
			close(p.stopChan)
			// Clear spinner line
			fmt.Fprintf(p.writer, "\r%s\r", strings.Repeat(" ", 80))
		}
	})
}

// spinnerLoop runs the spinner animation
func (p *Indicator) spinnerLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.render()
			p.spinnerIdx = (p.spinnerIdx + 1) % len(spinnerFrames)
			p.mu.Unlock()
		}
	}
}

// render draws the current progress state
func (p *Indicator) render() {
	done := p.completed + p.failed
	elapsed := time.Since(p.startTime)

	var prog float64
	if p.total > 0 {
		prog = float64(done) / float64(p.total)
	}

	// Calculate ETA
	var eta string
	if prog > 0 && prog < 1.0 {
		totalEstimated := time.Duration(float64(elapsed) / prog)
		remaining := totalEstimated - elapsed
		eta = fmt.Sprintf(" | ETA: %s", formatDuration(remaining))
	}

	barWidth := 30
	filled := int(float64(barWidth) * prog)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	spinner := spinnerFrames[p.spinnerIdx]

	statusLine := fmt.Sprintf("\r%s [%s] %.1f%% | phase %d | %d/%d artifacts | ✓ %d | ✗ %d | %s%s",
		spinner,
		bar,
		prog*100,
		p.phase,
		done,
		p.total,
		p.completed,
		p.failed,
		formatDuration(elapsed),
		eta,
	)

	fmt.Fprint(p.writer, statusLine)
}

// UpdateArtifact records one artifact's status change. Matches the
// orchestrator's progress callback signature.
func (p *Indicator) UpdateArtifact(phase int, path, status string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.phase = phase
	switch status {
	case "completed":
		p.completed++
	case "failed":
		p.failed++
		p.failures = append(p.failures, failure{phase: phase, path: path, err: err})
	}

	// In CI mode, print status updates immediately
	if p.isCI {
		p.printArtifactStatus(phase, path, status, err)
	}
}

// printArtifactStatus prints artifact status in CI-friendly format
func (p *Indicator) printArtifactStatus(phase int, path, status string, err error) {
	symbol := "⟲"
	switch status {
	case "running":
		symbol = "▶"
	case "completed":
		symbol = "✓"
	case "failed":
		symbol = "✗"
	case "skipped":
		symbol = "⊘"
	}

	msg := fmt.Sprintf("%s [phase %d] %s [%s]", symbol, phase, path, status)
	if err != nil {
		msg += fmt.Sprintf(" - %v", err)
	}

	fmt.Fprintln(p.writer, msg)
}

// PrintSummary prints the final run summary
func (p *Indicator) PrintSummary() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.writer)
	fmt.Fprintln(p.writer, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(p.writer, "Build Summary")
	fmt.Fprintln(p.writer, "═══════════════════════════════════════════════════════════")

	done := p.completed + p.failed
	elapsed := time.Since(p.startTime)

	fmt.Fprintf(p.writer, "Total Artifacts: %d\n", p.total)
	fmt.Fprintf(p.writer, "Generated:       %d ✓\n", p.completed)
	fmt.Fprintf(p.writer, "Failed:          %d ✗\n", p.failed)
	if done > 0 {
		fmt.Fprintf(p.writer, "Success Rate:    %.1f%%\n", float64(p.completed)/float64(done)*100)
	}
	fmt.Fprintf(p.writer, "Total Time:      %s\n", formatDuration(elapsed))

	if p.completed > 0 {
		avgTime := elapsed / time.Duration(p.completed)
		fmt.Fprintf(p.writer, "Avg/Artifact:    %s\n", formatDuration(avgTime))
	}

	fmt.Fprintln(p.writer, "═══════════════════════════════════════════════════════════")

	if len(p.failures) > 0 {
		fmt.Fprintln(p.writer)
		fmt.Fprintln(p.writer, "Failed Artifacts:")
		for _, f := range p.failures {
			fmt.Fprintf(p.writer, "  ✗ [phase %d] %s", f.phase, f.path)
			if f.err != nil {
				fmt.Fprintf(p.writer, " - %v", f.err)
			}
			fmt.Fprintln(p.writer)
		}
	}
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// BarIndicator provides a simple progress bar without animation
type BarIndicator struct {
	writer    io.Writer
	total     int
	completed int
	failed    int
	startTime time.Time
	mu        sync.Mutex
}

// NewBarIndicator creates a simple progress bar
func NewBarIndicator(w io.Writer, total int) *BarIndicator {
	if w == nil {
		w = os.Stdout
	}
	return &BarIndicator{
		writer:    w,
		total:     total,
		startTime: time.Now(),
	}
}

// Increment increments the progress counter
func (b *BarIndicator) Increment(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.completed++
	} else {
		b.failed++
	}

	b.render()
}

// render draws the progress bar
func (b *BarIndicator) render() {
	progress := float64(b.completed+b.failed) / float64(b.total)
	barWidth := 40
	filled := int(float64(barWidth) * progress)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	elapsed := time.Since(b.startTime)

	fmt.Fprintf(b.writer, "\r[%s] %.0f%% | %d/%d | ✓ %d | ✗ %d | %s",
		bar,
		progress*100,
		b.completed+b.failed,
		b.total,
		b.completed,
		b.failed,
		formatDuration(elapsed),
	)
}

// Finish completes the progress bar
func (b *BarIndicator) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	fmt.Fprintln(b.writer)
}
