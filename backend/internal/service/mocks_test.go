package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/textchan-dev/textchan/shared/api"
	"github.com/textchan-dev/textchan/shared/domain"
	internal_errors "github.com/textchan-dev/textchan/shared/errors"
)

// --- Mocks ---

type MockStorage struct {
	createThreadFunc         func(creationData domain.ThreadCreationData) (domain.Thread, error)
	getAllThreadsFunc        func() ([]domain.Thread, error)
	getThreadByIdFunc        func(id domain.ThreadId) (domain.Thread, error)
	getRepliesByThreadIdFunc func(id domain.ThreadId) ([]domain.Reply, error)
	createReplyFunc          func(creationData domain.ReplyCreationData) (domain.Reply, error)

	mu          sync.Mutex
	createCalls int
}

func (m *MockStorage) CreateThread(_ context.Context, creationData domain.ThreadCreationData) (domain.Thread, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createThreadFunc != nil {
		return m.createThreadFunc(creationData)
	}
	return domain.Thread{Id: 1, Body: creationData.Body, UserId: creationData.UserId, CreatedAt: creationData.CreatedAt}, nil
}

func (m *MockStorage) GetAllThreads(_ context.Context) ([]domain.Thread, error) {
	if m.getAllThreadsFunc != nil {
		return m.getAllThreadsFunc()
	}
	return []domain.Thread{}, nil
}

func (m *MockStorage) GetThreadById(_ context.Context, id domain.ThreadId) (domain.Thread, error) {
	if m.getThreadByIdFunc != nil {
		return m.getThreadByIdFunc(id)
	}
	return domain.Thread{Id: id}, nil
}

func (m *MockStorage) GetRepliesByThreadId(_ context.Context, id domain.ThreadId) ([]domain.Reply, error) {
	if m.getRepliesByThreadIdFunc != nil {
		return m.getRepliesByThreadIdFunc(id)
	}
	return []domain.Reply{}, nil
}

func (m *MockStorage) CreateReply(_ context.Context, creationData domain.ReplyCreationData) (domain.Reply, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createReplyFunc != nil {
		return m.createReplyFunc(creationData)
	}
	return domain.Reply{Id: 1, ThreadId: creationData.ThreadId, Body: creationData.Body, UserId: creationData.UserId, CreatedAt: creationData.CreatedAt}, nil
}

func (m *MockStorage) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

type MockGate struct {
	allowed bool
	now     time.Time
}

func (g *MockGate) Now() time.Time         { return g.now }
func (g *MockGate) IsPostingAllowed() bool { return g.allowed }
func (g *MockGate) NextChange() time.Time  { return g.now.Add(24 * time.Hour) }

type MockCapacity struct {
	status        domain.StorageStatus
	invalidations int
}

func (c *MockCapacity) Check(context.Context) domain.StorageStatus { return c.status }
func (c *MockCapacity) Invalidate()                                { c.invalidations++ }

type MockPublisher struct {
	err error

	mu     sync.Mutex
	events []api.ThreadEvent
}

func (p *MockPublisher) Publish(_ context.Context, event api.ThreadEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *MockPublisher) Events() []api.ThreadEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.ThreadEvent(nil), p.events...)
}

var (
	saturday   = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)
	errStorage = errors.New("disk on fire")
	errMissing = internal_errors.ThreadNotFound()
)
