// Package render prints forum state to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/textchan-dev/textchan/shared/domain"
)

const (
	timeLayout = "2006-01-02 15:04 UTC"
	separator  = "─────────────────────────────────"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	faint  = color.New(color.Faint)
	bold   = color.New(color.Bold)
)

type Renderer struct {
	w   io.Writer
	now func() time.Time
}

func New(w io.Writer) *Renderer {
	return &Renderer{w: w, now: time.Now}
}

// WithClock replaces the wall clock used for countdowns.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Status prints the posting banner and the countdown to the next change.
// The storage limit takes precedence over the posting window.
func (r *Renderer) Status(status domain.Status) {
	switch {
	case status.Storage.LimitReached:
		red.Fprintln(r.w, "⚠ Storage limit reached")
		fmt.Fprintln(r.w, "The site is at capacity. Check back later!")
	case status.PostingEnabled:
		green.Fprintln(r.w, "✓ Posting is currently enabled")
	default:
		red.Fprintln(r.w, "✗ Posting is currently disabled")
		fmt.Fprintln(r.w, "Posting is only allowed on weekends (Saturday and Sunday, UTC timezone)")
	}

	diff := status.NextChangeTimestamp.Sub(r.now())
	if diff <= 0 {
		faint.Fprintln(r.w, "Refreshing status...")
	} else {
		action := "until posting opens"
		if status.PostingEnabled {
			action = "until posting closes"
		}
		faint.Fprintf(r.w, "%s %s\n", Countdown(diff), action)
	}

	if status.Storage.MaxSize > 0 {
		faint.Fprintf(r.w, "Storage: %.1f%% of %s used\n", status.Storage.UsagePercent, humanBytes(status.Storage.MaxSize))
	}
}

// Countdown formats d as "1d 2h 3m 4s", dropping leading zero units.
func Countdown(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))
	return strings.Join(parts, " ")
}

// Threads prints one line per thread. Threads in open are marked.
func (r *Renderer) Threads(threads []domain.Thread, open map[domain.ThreadId]bool) {
	if len(threads) == 0 {
		fmt.Fprintln(r.w, "No threads yet.")
		return
	}
	for _, t := range threads {
		marker := "+"
		if open[t.Id] {
			marker = "-"
		}
		bold.Fprintf(r.w, "%s #%d ", marker, t.Id)
		faint.Fprintf(r.w, "%s · %s · %s\n", t.UserId, t.CreatedAt.UTC().Format(timeLayout), replies(t.ReplyCount))
		fmt.Fprintf(r.w, "  %s\n", preview(t.Body, 80))
	}
}

// Thread prints a thread with its replies in full.
func (r *Renderer) Thread(thread domain.Thread, replyList []domain.Reply) {
	bold.Fprintf(r.w, "#%d ", thread.Id)
	faint.Fprintf(r.w, "by %s on %s\n", thread.UserId, thread.CreatedAt.UTC().Format(timeLayout))
	fmt.Fprintln(r.w, thread.Body)
	fmt.Fprintln(r.w)

	for _, reply := range replyList {
		fmt.Fprintln(r.w, separator)
		faint.Fprintf(r.w, "%s · %s\n", reply.UserId, reply.CreatedAt.UTC().Format(timeLayout))
		fmt.Fprintln(r.w, reply.Body)
	}
	if len(replyList) == 0 {
		fmt.Fprintln(r.w, "No replies yet.")
	}
}

func (r *Renderer) Success(format string, args ...any) {
	green.Fprintf(r.w, format+"\n", args...)
}

func (r *Renderer) Warn(format string, args ...any) {
	yellow.Fprintf(r.w, format+"\n", args...)
}

func (r *Renderer) Error(format string, args ...any) {
	red.Fprintf(r.w, format+"\n", args...)
}

func replies(n int) string {
	if n == 1 {
		return "1 reply"
	}
	return fmt.Sprintf("%d replies", n)
}

// preview keeps the first line of body, cut to max runes.
func preview(body string, max int) string {
	line, _, _ := strings.Cut(body, "\n")
	runes := []rune(line)
	if len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	if len(line) < len(body) {
		return line + " …"
	}
	return line
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
