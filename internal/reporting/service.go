package reporting

import (
	"context"
	"errors"
	"time"

	"procurement-platform/internal/audit"
	"procurement-platform/internal/entity"
)

// Source supplies the audit entries a summary is computed from.
type Source interface {
	EntriesBetween(ctx context.Context, from, to time.Time) ([]audit.Entry, error)
}

// TypeActivity aggregates decision outcomes for one entity type.
type TypeActivity struct {
	Total      int `json:"total"`
	Approvals  int `json:"approvals"`
	Rejections int `json:"rejections"`
}

// Summary is a read-only governance digest for a time window. It is derived
// entirely from the audit trail; it never reads or writes workflow state.
type Summary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalTransitions int `json:"total_transitions"`

	ByEntityType map[entity.Type]TypeActivity `json:"by_entity_type"`
	ByActorRole  map[string]int               `json:"by_actor_role"`
}

var ErrInvalidWindow = errors.New("reporting: window end must be after start")

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Summarize aggregates all transitions inside [from, to).
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (Summary, error) {
	if !to.After(from) {
		return Summary{}, ErrInvalidWindow
	}

	entries, err := s.source.EntriesBetween(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		From:         from,
		To:           to,
		ByEntityType: make(map[entity.Type]TypeActivity),
		ByActorRole:  make(map[string]int),
	}
	for _, e := range entries {
		out.TotalTransitions++
		out.ByActorRole[e.ActorRole]++

		act := out.ByEntityType[e.EntityType]
		act.Total++
		switch e.AfterStatus {
		case entity.StatusApproved:
			act.Approvals++
		case entity.StatusRejected:
			act.Rejections++
		}
		out.ByEntityType[e.EntityType] = act
	}
	return out, nil
}
