package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/quietshelf/unhook/internal/scheduler"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// RenderCooldownBars renders one bar line per active cooldown.
// Example: com.instagram.android  [=========>          ]  48%  33s left
func RenderCooldownBars(snaps []scheduler.Snapshot, width int) string {
	if width <= 0 {
		width = 20
	}

	var sb strings.Builder
	for _, s := range snaps {
		sb.WriteString(fmt.Sprintf("%-32s %s %3d%%  %s left\n",
			truncate(s.Package, 32),
			renderBar(s.Progress, width),
			int(s.Progress*100),
			formatDuration(s.Remaining.Round(time.Second))))
	}
	return sb.String()
}

// renderBar draws an ASCII bar for a progress fraction in [0, 1].
func renderBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < width; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")
	return bar.String()
}

// LiveView repeatedly redraws cooldown bars in place on a TTY. On a
// non-TTY writer every frame is printed once with a timestamp so log
// output stays readable.
type LiveView struct {
	mu        sync.Mutex
	writer    io.Writer
	width     int
	lastLines int
}

// NewLiveView creates a live view writing to stdout.
func NewLiveView() *LiveView {
	return &LiveView{writer: os.Stdout, width: 20}
}

// SetWriter sets the output writer (useful for testing).
func (v *LiveView) SetWriter(w io.Writer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.writer = w
}

// Render draws one frame of cooldown bars.
func (v *LiveView) Render(snaps []scheduler.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	frame := RenderCooldownBars(snaps, v.width)

	if !writerIsTTY(v.writer) {
		fmt.Fprintf(v.writer, "--- %s\n%s", time.Now().Format(time.TimeOnly), frame)
		return
	}

	// Overwrite the previous frame in place.
	for i := 0; i < v.lastLines; i++ {
		fmt.Fprint(v.writer, "\033[1A\033[2K")
	}
	fmt.Fprint(v.writer, frame)
	v.lastLines = len(snaps)
}

// Clear erases the last rendered frame on a TTY.
func (v *LiveView) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !writerIsTTY(v.writer) {
		return
	}
	for i := 0; i < v.lastLines; i++ {
		fmt.Fprint(v.writer, "\033[1A\033[2K")
	}
	v.lastLines = 0
}
