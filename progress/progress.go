// Package progress renders digest progress. On a terminal it draws a
// byte-scaled progress bar; elsewhere it logs through slog at coarse
// percentage buckets so redirected output stays readable.
package progress

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Sink consumes cumulative byte counts for one source.
type Sink interface {
	// Update records the running total.
	Update(total uint64)

	// Finish marks the source complete.
	Finish()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	fd := file.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// New returns a bar on w when w is a terminal and a log sink otherwise.
// size is the expected total in bytes, used for scaling.
func New(w io.Writer, size int64, description string) Sink {
	if IsTerminal(w) {
		return NewBar(w, size, description)
	}

	return NewLog(size, description)
}

type barSink struct {
	bar *progressbar.ProgressBar
}

// NewBar draws a progress bar on w.
func NewBar(w io.Writer, size int64, description string) Sink {
	bar := progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(w, "\n") //nolint:errcheck // cosmetic
		}),
	)

	return &barSink{bar: bar}
}

func (bs *barSink) Update(total uint64) {
	_ = bs.bar.Set64(int64(total)) //nolint:errcheck,gosec // rendering only
}

func (bs *barSink) Finish() {
	_ = bs.bar.Finish() //nolint:errcheck // rendering only
}

type logSink struct {
	size        int64
	description string
	sampler     *Sampler
	last        uint64
}

// NewLog reports progress as slog records, one per 10% bucket.
func NewLog(size int64, description string) Sink {
	return &logSink{
		size:        size,
		description: description,
		sampler:     NewSampler(10),
	}
}

func (ls *logSink) percent(total uint64) float64 {
	if ls.size <= 0 {
		return -1
	}

	return float64(total) * 100 / float64(ls.size)
}

func (ls *logSink) Update(total uint64) {
	ls.last = total

	pct := ls.percent(total)
	if !ls.sampler.ShouldLog(pct) {
		return
	}

	slog.Info(
		ls.description,
		"read", humanize.Bytes(total),
		"size", humanize.Bytes(uint64(max(ls.size, 0))), //nolint:gosec // clamped
		"percent", int(pct),
	)
}

func (ls *logSink) Finish() {
	slog.Debug(
		ls.description+" done",
		"read", humanize.Bytes(ls.last),
	)
}
