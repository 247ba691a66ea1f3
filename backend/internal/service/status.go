package service

import (
	"context"

	"github.com/textchan-dev/textchan/backend/internal/policy"
	"github.com/textchan-dev/textchan/shared/domain"
)

type StatusService interface {
	Get(ctx context.Context) domain.Status
}

type Status struct {
	gate     PostingGate
	capacity CapacityChecker
}

func NewStatus(gate PostingGate, capacity CapacityChecker) StatusService {
	return &Status{gate: gate, capacity: capacity}
}

func (s *Status) Get(ctx context.Context) domain.Status {
	return domain.Status{
		PostingEnabled:      s.gate.IsPostingAllowed(),
		NextChangeTimestamp: s.gate.NextChange(),
		CurrentTimestamp:    s.gate.Now().UTC(),
		Timezone:            policy.Timezone,
		Storage:             s.capacity.Check(ctx),
	}
}
