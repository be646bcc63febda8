package audit

import (
	"context"
	"errors"
	"time"

	"procurement-platform/internal/entity"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit entries.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
// Query returns entries ordered by timestamp ascending.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	Query(ctx context.Context, t entity.Type, id string) ([]Entry, error)
}

var ErrInvalidEntry = errors.New("audit: invalid entry")

// Recorder validates and appends audit entries.
//
// Recorder does not retry: a store failure surfaces to the caller, and retry
// policy belongs to the workflow layer.
type Recorder struct {
	repo  Repository
	clock func() time.Time
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, clock: time.Now}
}

func (r *Recorder) Append(ctx context.Context, e Entry) error {
	if r.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if !entity.ValidType(e.EntityType) || e.EntityID == "" {
		return ErrInvalidEntry
	}
	if e.Action == "" || e.ActorID == "" || e.ActorRole == "" {
		return ErrInvalidEntry
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.clock().UTC()
	}
	return r.repo.Append(ctx, e)
}

// Query returns the decision trail for one entity, oldest first.
func (r *Recorder) Query(ctx context.Context, t entity.Type, id string) ([]Entry, error) {
	if r.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if !entity.ValidType(t) || id == "" {
		return nil, ErrInvalidEntry
	}
	return r.repo.Query(ctx, t, id)
}
