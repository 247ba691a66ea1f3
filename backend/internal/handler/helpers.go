package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/textchan-dev/textchan/shared/domain"
	internal_errors "github.com/textchan-dev/textchan/shared/errors"
)

// parseThreadId reads the {thread} URL parameter, which must be a positive integer.
func parseThreadId(r *http.Request) (domain.ThreadId, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "thread"), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal_errors.Validation(internal_errors.MsgInvalidThreadId)
	}
	return id, nil
}
