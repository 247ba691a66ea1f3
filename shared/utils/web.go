package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/errors"
	"github.com/textchan-dev/textchan/shared/logger"
)

// WriteJSON encodes v with the given status. Encoding failures are logged; the
// status line has already been sent by then.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	resp := api.ErrorResponse{Error: message}
	if status == http.StatusInsufficientStorage {
		resp.StorageLimit = true
	}
	WriteJSON(w, status, resp)
}

// WriteErrorAndStatusCode writes err with the status it carries. Errors without
// a status are logged and replaced by fallback with a 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error, fallback string) {
	status := errors.StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error(fallback, "error", err)
		WriteError(w, status, fallback)
		return
	}
	WriteError(w, status, err.Error())
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid request body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// GetIP extracts the client IP from RemoteAddr.
// Forwarding headers are not trusted.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}
