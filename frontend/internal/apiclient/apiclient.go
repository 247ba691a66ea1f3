package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/textchan-dev/textchan/shared/api"
	internal_errors "github.com/textchan-dev/textchan/shared/errors"
)

// APIClient struct handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
	// StreamClient has no timeout; it is used for the event stream only.
	StreamClient *http.Client
}

func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		HttpClient:   &http.Client{Timeout: 15 * time.Second},
		StreamClient: &http.Client{},
	}
}

// do is the single, unified helper for making API requests.
func (c *APIClient) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// decode reads a response with the expected status into out. Any other
// status becomes an ErrorWithStatusCode carrying the server's message.
func decode(resp *http.Response, expected int, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			errResp.Error = http.StatusText(resp.StatusCode)
		}
		return &internal_errors.ErrorWithStatusCode{Message: errResp.Error, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}
	return nil
}

// IsStorageLimit reports whether err is the server refusing writes because
// the store is full.
func IsStorageLimit(err error) bool {
	return internal_errors.StatusCode(err) == http.StatusInsufficientStorage
}
