package apiclient

import (
	"context"
	"net/http"

	"github.com/textchan-dev/textchan/shared/domain"
)

func (c *APIClient) GetStatus(ctx context.Context) (domain.Status, error) {
	var status domain.Status
	resp, err := c.do(ctx, http.MethodGet, "/api/status", nil)
	if err != nil {
		return status, err
	}
	err = decode(resp, http.StatusOK, &status)
	return status, err
}
