package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/textchan-dev/textchan/shared/api"
)

// Stream reads /api/threads/stream and calls onEvent for every named event
// until ctx is cancelled or the server closes the connection.
func (c *APIClient) Stream(ctx context.Context, onEvent func(api.ThreadEvent)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/threads/stream", nil)
	if err != nil {
		return fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.StreamClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream refused: %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)

	var name string
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" {
				if event, ok := parseEvent(name, data.String()); ok {
					onEvent(event)
				}
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// comment, e.g. heartbeat
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream interrupted: %w", err)
	}
	return fmt.Errorf("stream closed by server")
}

func parseEvent(name, data string) (api.ThreadEvent, bool) {
	event := api.ThreadEvent{Type: name}
	if err := json.Unmarshal([]byte(data), &event.Thread); err != nil {
		return event, false
	}
	return event, true
}
