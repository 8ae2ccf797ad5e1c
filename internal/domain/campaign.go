package domain

import "time"

// CampaignCounter is the singleton aggregate holding the running totals.
// Both counters only move inside the transaction that appends a Contribution.
type CampaignCounter struct {
	ID                string
	TotalCount        int64
	ContributionCount int64
	UpdatedAt         time.Time
}

// Stats is the public view of the campaign counter.
type Stats struct {
	TotalCount        int64 `json:"totalCount"`
	ContributionCount int64 `json:"contributionCount"`
}

// Stats projects the counter onto its public view.
func (c CampaignCounter) Stats() Stats {
	return Stats{TotalCount: c.TotalCount, ContributionCount: c.ContributionCount}
}

// Add returns the stats after accepting one contribution of amount.
func (s Stats) Add(amount int64) Stats {
	return Stats{TotalCount: s.TotalCount + amount, ContributionCount: s.ContributionCount + 1}
}
