package api

// Request DTOs shared by backend and frontend

// CreatePostRequest is the body of both thread and reply creation.
// Fields are trimmed and validated by the service, after the posting window.
type CreatePostRequest struct {
	Body   string `json:"body"`
	UserId string `json:"userId"`
}

// Response DTOs

type ErrorResponse struct {
	Error        string `json:"error"`
	StorageLimit bool   `json:"storageLimit,omitempty"`
}
