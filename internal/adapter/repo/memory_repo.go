package repo

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
)

// CampaignRepositoryMemory is an in-process CampaignRepository with the same
// atomicity guarantees as the PostgreSQL one. It backs tests and local demos.
type CampaignRepositoryMemory struct {
	mu       sync.Mutex
	counter  *domain.CampaignCounter
	log      []domain.Contribution
	failure  error
	onChange func(domain.Stats)
	now      func() time.Time
}

// NewCampaignRepositoryMemory creates an empty store. onChange, when set, is
// called with the new totals after every accepted increment.
func NewCampaignRepositoryMemory(onChange func(domain.Stats)) *CampaignRepositoryMemory {
	return &CampaignRepositoryMemory{onChange: onChange, now: time.Now}
}

// Stats returns the current totals, or zeros before the first increment.
func (r *CampaignRepositoryMemory) Stats(ctx context.Context) (domain.Stats, error) {
	if err := ctx.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("%w: %w", domain.ErrTransientBackend, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return domain.Stats{}, fmt.Errorf("%w: %w", domain.ErrTransientBackend, r.failure)
	}
	if r.counter == nil {
		return domain.Stats{}, nil
	}
	return r.counter.Stats(), nil
}

// Increment appends the contribution and advances both counters under one lock.
func (r *CampaignRepositoryMemory) Increment(ctx context.Context, contribution *domain.Contribution) (domain.Stats, error) {
	if contribution == nil || contribution.Amount < 1 {
		return domain.Stats{}, fmt.Errorf("%w: amount must be a positive integer", domain.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("%w: %w", domain.ErrTransientBackend, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failure != nil {
		return domain.Stats{}, fmt.Errorf("%w: %w", domain.ErrTransientBackend, r.failure)
	}

	// bigint arithmetic fails on overflow in PostgreSQL; mirror that.
	if r.counter != nil && r.counter.TotalCount > math.MaxInt64-contribution.Amount {
		return domain.Stats{}, fmt.Errorf("%w: total count out of range", domain.ErrTransientBackend)
	}

	now := r.now().UTC()
	if r.counter == nil {
		r.counter = &domain.CampaignCounter{ID: uuid.NewString()}
	}
	entry := *contribution
	entry.ID = uuid.NewString()
	entry.CreatedAt = now
	if entry.Name != nil {
		name := *entry.Name
		entry.Name = &name
	}
	r.log = append(r.log, entry)
	r.counter.TotalCount += entry.Amount
	r.counter.ContributionCount++
	r.counter.UpdatedAt = now

	contribution.ID = entry.ID
	contribution.CreatedAt = entry.CreatedAt

	stats := r.counter.Stats()
	if r.onChange != nil {
		r.onChange(stats)
	}
	return stats, nil
}

// Contributions returns a copy of the contribution log in insertion order.
func (r *CampaignRepositoryMemory) Contributions() []domain.Contribution {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Contribution, len(r.log))
	copy(out, r.log)
	return out
}

// Seed sets the counter to stats without writing log entries. Only meant for
// fixtures that start from a non-empty campaign.
func (r *CampaignRepositoryMemory) Seed(stats domain.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter = &domain.CampaignCounter{
		ID:                uuid.NewString(),
		TotalCount:        stats.TotalCount,
		ContributionCount: stats.ContributionCount,
		UpdatedAt:         r.now().UTC(),
	}
}

// FailWith makes every call fail with err until it is called again with nil.
func (r *CampaignRepositoryMemory) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure = err
}

var _ domain.CampaignRepository = (*CampaignRepositoryMemory)(nil)
