package domain

import "context"

// CampaignRepository persists the campaign counter and its contribution log.
type CampaignRepository interface {
	// Stats returns the current totals, or zero stats when no counter exists yet.
	Stats(ctx context.Context) (Stats, error)
	// Increment appends the contribution and advances both counters in one
	// atomic step. ID and CreatedAt are filled in on success.
	Increment(ctx context.Context, contribution *Contribution) (Stats, error)
}
