package render

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/textchan-dev/textchan/shared/domain"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

var saturdayNoon = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)

func newTestRenderer() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf).WithClock(func() time.Time { return saturdayNoon }), &buf
}

func TestCountdown(t *testing.T) {
	testCases := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{time.Minute, "1m 0s"},
		{time.Hour + 2*time.Second, "1h 0m 2s"},
		{36*time.Hour + 90*time.Second, "1d 12h 1m 30s"},
		{1500 * time.Millisecond, "1s"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Countdown(tc.d))
	}
}

func TestStatus(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		r, buf := newTestRenderer()
		r.Status(domain.Status{
			PostingEnabled:      true,
			NextChangeTimestamp: saturdayNoon.Add(36 * time.Hour),
			Storage:             domain.StorageStatus{MaxSize: 1 << 30, UsagePercent: 12.5},
		})
		out := buf.String()
		assert.Contains(t, out, "✓ Posting is currently enabled")
		assert.Contains(t, out, "1d 12h 0m 0s until posting closes")
		assert.Contains(t, out, "Storage: 12.5% of 1.0 GiB used")
	})

	t.Run("closed", func(t *testing.T) {
		r, buf := newTestRenderer()
		r.Status(domain.Status{NextChangeTimestamp: saturdayNoon.Add(time.Hour)})
		out := buf.String()
		assert.Contains(t, out, "✗ Posting is currently disabled")
		assert.Contains(t, out, "weekends")
		assert.Contains(t, out, "1h 0m 0s until posting opens")
	})

	t.Run("storage limit wins", func(t *testing.T) {
		r, buf := newTestRenderer()
		r.Status(domain.Status{PostingEnabled: true, Storage: domain.StorageStatus{LimitReached: true}})
		out := buf.String()
		assert.Contains(t, out, "⚠ Storage limit reached")
		assert.NotContains(t, out, "enabled")
		assert.Contains(t, out, "Refreshing status...")
	})
}

func TestThreads(t *testing.T) {
	r, buf := newTestRenderer()
	r.Threads([]domain.Thread{
		{Id: 2, Body: "line one\nline two", UserId: "AAAA1111", CreatedAt: saturdayNoon, ReplyCount: 1},
		{Id: 1, Body: strings.Repeat("x", 100), UserId: "BBBB2222", CreatedAt: saturdayNoon},
	}, map[domain.ThreadId]bool{2: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "- #2 AAAA1111 · 2025-01-04 12:00 UTC · 1 reply", lines[0])
	assert.Equal(t, "  line one …", lines[1])
	assert.Equal(t, "+ #1 BBBB2222 · 2025-01-04 12:00 UTC · 0 replies", lines[2])
	assert.Equal(t, "  "+strings.Repeat("x", 79)+"…", lines[3])
}

func TestThreads_Empty(t *testing.T) {
	r, buf := newTestRenderer()
	r.Threads(nil, nil)
	assert.Equal(t, "No threads yet.\n", buf.String())
}

func TestThread(t *testing.T) {
	r, buf := newTestRenderer()
	r.Thread(domain.Thread{Id: 3, Body: "op", UserId: "U"}, []domain.Reply{
		{Id: 1, Body: "first", UserId: "A", CreatedAt: saturdayNoon},
		{Id: 2, Body: "second", UserId: "B", CreatedAt: saturdayNoon.Add(time.Minute)},
	})
	out := buf.String()
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
	assert.NotContains(t, out, "No replies yet.")
}
