package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textchan-dev/textchan/backend/internal/events"
	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/domain"
	internal_errors "github.com/textchan-dev/textchan/shared/errors"
)

// --- Mocks ---

type MockThreadService struct {
	MockCheckPostingWindow func() error
	MockCreate         func(ctx context.Context, body, userId string) (domain.Thread, error)
	MockGetAll         func(ctx context.Context) ([]domain.Thread, error)
	MockGetWithReplies func(ctx context.Context, id domain.ThreadId) (domain.Thread, []domain.Reply, error)
}

func (m *MockThreadService) CheckPostingWindow() error {
	if m.MockCheckPostingWindow != nil {
		return m.MockCheckPostingWindow()
	}
	return nil
}

func (m *MockThreadService) Create(ctx context.Context, body, userId string) (domain.Thread, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, body, userId)
	}
	return domain.Thread{Id: 1, Body: body, UserId: userId}, nil
}

func (m *MockThreadService) GetAll(ctx context.Context) ([]domain.Thread, error) {
	if m.MockGetAll != nil {
		return m.MockGetAll(ctx)
	}
	return []domain.Thread{}, nil
}

func (m *MockThreadService) GetWithReplies(ctx context.Context, id domain.ThreadId) (domain.Thread, []domain.Reply, error) {
	if m.MockGetWithReplies != nil {
		return m.MockGetWithReplies(ctx, id)
	}
	return domain.Thread{Id: id}, []domain.Reply{}, nil
}

type MockReplyService struct {
	MockCheckPostingWindow func() error
	MockCreate func(ctx context.Context, threadId domain.ThreadId, body, userId string) (domain.Reply, error)
}

func (m *MockReplyService) CheckPostingWindow() error {
	if m.MockCheckPostingWindow != nil {
		return m.MockCheckPostingWindow()
	}
	return nil
}

func (m *MockReplyService) Create(ctx context.Context, threadId domain.ThreadId, body, userId string) (domain.Reply, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, threadId, body, userId)
	}
	return domain.Reply{Id: 1, ThreadId: threadId, Body: body, UserId: userId}, nil
}

type MockStatusService struct {
	MockGet func(ctx context.Context) domain.Status
}

func (m *MockStatusService) Get(ctx context.Context) domain.Status {
	if m.MockGet != nil {
		return m.MockGet(ctx)
	}
	return domain.Status{Timezone: "UTC"}
}

// --- Helpers ---

func createRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, url, bytes.NewBuffer(body))
}

func setupRouter(h *Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/api/status", h.GetStatus)
	router.Get("/api/threads", h.GetThreads)
	router.Post("/api/threads", h.CreateThread)
	router.Get("/api/threads/stream", h.StreamThreads)
	router.Get("/api/threads/{thread}/replies", h.GetReplies)
	router.Post("/api/threads/{thread}/replies", h.CreateReply)
	return router
}

func newTestHandler(thread *MockThreadService, reply *MockReplyService, status *MockStatusService) *Handler {
	if thread == nil {
		thread = &MockThreadService{}
	}
	if reply == nil {
		reply = &MockReplyService{}
	}
	if status == nil {
		status = &MockStatusService{}
	}
	return New(thread, reply, status, events.NewMemory(8), &MockHealthChecker{}, time.Hour)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// --- Tests ---

func TestGetStatus(t *testing.T) {
	now := time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)
	status := &MockStatusService{
		MockGet: func(context.Context) domain.Status {
			return domain.Status{
				PostingEnabled:      true,
				NextChangeTimestamp: now.Add(36 * time.Hour),
				CurrentTimestamp:    now,
				Timezone:            "UTC",
				Storage:             domain.StorageStatus{MaxSize: 1 << 30},
			}
		},
	}
	router := setupRouter(newTestHandler(nil, nil, status))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, createRequest(t, http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, true, got["postingEnabled"])
	assert.Equal(t, "2025-01-06T00:00:00Z", got["nextChangeTimestamp"])
	assert.Equal(t, "UTC", got["timezone"])
	storage := got["storage"].(map[string]any)
	assert.Equal(t, false, storage["limitReached"])
	assert.Equal(t, float64(1<<30), storage["maxSize"])
}

func TestGetThreads(t *testing.T) {
	t.Run("returns list", func(t *testing.T) {
		thread := &MockThreadService{
			MockGetAll: func(context.Context) ([]domain.Thread, error) {
				return []domain.Thread{{Id: 2, Body: "b", ReplyCount: 3}, {Id: 1, Body: "a"}}, nil
			},
		}
		router := setupRouter(newTestHandler(thread, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodGet, "/api/threads", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []domain.Thread
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, 3, got[0].ReplyCount)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		router := setupRouter(newTestHandler(nil, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodGet, "/api/threads", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("storage failure is hidden", func(t *testing.T) {
		thread := &MockThreadService{
			MockGetAll: func(context.Context) ([]domain.Thread, error) {
				return nil, errors.New("pq: connection refused")
			},
		}
		router := setupRouter(newTestHandler(thread, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodGet, "/api/threads", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to fetch threads", decodeError(t, rr).Error)
	})
}

func TestCreateThread(t *testing.T) {
	route := "/api/threads"

	t.Run("created", func(t *testing.T) {
		thread := &MockThreadService{
			MockCreate: func(_ context.Context, body, userId string) (domain.Thread, error) {
				assert.Equal(t, "hello", body)
				assert.Equal(t, "ABCD1234", userId)
				return domain.Thread{Id: 7, Body: body, UserId: userId}, nil
			},
		}
		router := setupRouter(newTestHandler(thread, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, route, []byte(`{"body":"hello","userId":"ABCD1234"}`)))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got domain.Thread
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, domain.ThreadId(7), got.Id)
		assert.Equal(t, 0, got.ReplyCount)
	})

	t.Run("closed window is checked before decoding", func(t *testing.T) {
		thread := &MockThreadService{
			MockCheckPostingWindow: func() error { return internal_errors.PolicyViolation() },
			MockCreate: func(context.Context, string, string) (domain.Thread, error) {
				t.Error("Create should not be reached")
				return domain.Thread{}, nil
			},
		}
		router := setupRouter(newTestHandler(thread, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, route, []byte(`{invalid`)))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		router := setupRouter(newTestHandler(nil, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, route, []byte(`{invalid`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	testCases := []struct {
		name         string
		err          error
		status       int
		message      string
		storageLimit bool
	}{
		{"posting closed", internal_errors.PolicyViolation(), http.StatusForbidden, "Posting is only allowed on weekends", false},
		{"validation", internal_errors.Validation("Body is required"), http.StatusBadRequest, "Body is required", false},
		{"storage full", internal_errors.CapacityExceeded(), http.StatusInsufficientStorage, "Storage limit reached. Posts temporarily disabled.", true},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Failed to create thread", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			thread := &MockThreadService{
				MockCreate: func(context.Context, string, string) (domain.Thread, error) {
					return domain.Thread{}, tc.err
				},
			}
			router := setupRouter(newTestHandler(thread, nil, nil))

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, createRequest(t, http.MethodPost, route, []byte(`{"body":"x","userId":"u"}`)))

			assert.Equal(t, tc.status, rr.Code)
			resp := decodeError(t, rr)
			assert.Equal(t, tc.message, resp.Error)
			assert.Equal(t, tc.storageLimit, resp.StorageLimit)
		})
	}
}

func TestGetReplies(t *testing.T) {
	t.Run("returns thread and replies", func(t *testing.T) {
		thread := &MockThreadService{
			MockGetWithReplies: func(_ context.Context, id domain.ThreadId) (domain.Thread, []domain.Reply, error) {
				assert.Equal(t, domain.ThreadId(12), id)
				return domain.Thread{Id: id, ReplyCount: 1}, []domain.Reply{{Id: 3, ThreadId: id, Body: "r"}}, nil
			},
		}
		router := setupRouter(newTestHandler(thread, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodGet, "/api/threads/12/replies", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var got api.ThreadRepliesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, domain.ThreadId(12), got.Thread.Id)
		require.Len(t, got.Replies, 1)
		assert.Equal(t, "r", got.Replies[0].Body)
	})

	t.Run("not found", func(t *testing.T) {
		thread := &MockThreadService{
			MockGetWithReplies: func(context.Context, domain.ThreadId) (domain.Thread, []domain.Reply, error) {
				return domain.Thread{}, nil, internal_errors.ThreadNotFound()
			},
		}
		router := setupRouter(newTestHandler(thread, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodGet, "/api/threads/99/replies", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Thread not found", decodeError(t, rr).Error)
	})

	for _, id := range []string{"abc", "0", "-1", "1.5"} {
		t.Run("invalid id "+id, func(t *testing.T) {
			router := setupRouter(newTestHandler(nil, nil, nil))

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, createRequest(t, http.MethodGet, "/api/threads/"+id+"/replies", nil))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "Invalid thread ID", decodeError(t, rr).Error)
		})
	}
}

func TestCreateReply(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		reply := &MockReplyService{
			MockCreate: func(_ context.Context, threadId domain.ThreadId, body, userId string) (domain.Reply, error) {
				assert.Equal(t, domain.ThreadId(5), threadId)
				return domain.Reply{Id: 8, ThreadId: threadId, Body: body, UserId: userId}, nil
			},
		}
		router := setupRouter(newTestHandler(nil, reply, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, "/api/threads/5/replies", []byte(`{"body":"yo","userId":"u"}`)))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got domain.Reply
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, domain.ReplyId(8), got.Id)
		assert.Equal(t, domain.ThreadId(5), got.ThreadId)
	})

	t.Run("missing thread", func(t *testing.T) {
		reply := &MockReplyService{
			MockCreate: func(context.Context, domain.ThreadId, string, string) (domain.Reply, error) {
				return domain.Reply{}, internal_errors.ThreadNotFound()
			},
		}
		router := setupRouter(newTestHandler(nil, reply, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, "/api/threads/5/replies", []byte(`{"body":"yo","userId":"u"}`)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid id is checked before the body", func(t *testing.T) {
		router := setupRouter(newTestHandler(nil, nil, nil))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, createRequest(t, http.MethodPost, "/api/threads/x/replies", []byte(`{invalid`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid thread ID", decodeError(t, rr).Error)
	})
}
