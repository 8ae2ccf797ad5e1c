package repo

import (
	"context"
	"fmt"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/infra"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/sqlinline"
)

// CampaignRepositoryPG implements domain.CampaignRepository using PostgreSQL.
type CampaignRepositoryPG struct {
	sql infra.SQLTransactor
}

// NewCampaignRepository creates a new campaign repo.
func NewCampaignRepository(sql infra.SQLTransactor) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{sql: sql}
}

// Stats returns the current totals. A missing campaign row reads as zero.
func (r *CampaignRepositoryPG) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := r.sql.QueryRow(ctx, sqlinline.QCampaignStats).Scan(&stats.TotalCount, &stats.ContributionCount)
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.Stats{}, nil
		}
		return domain.Stats{}, fmt.Errorf("%w: fetch stats: %w", domain.ErrTransientBackend, err)
	}
	return stats, nil
}

// Increment advances the singleton counter and appends the contribution in
// one transaction, so a failure leaves neither behind.
func (r *CampaignRepositoryPG) Increment(ctx context.Context, contribution *domain.Contribution) (domain.Stats, error) {
	if contribution == nil || contribution.Amount < 1 {
		return domain.Stats{}, fmt.Errorf("%w: amount must be a positive integer", domain.ErrValidation)
	}

	var stats domain.Stats
	err := r.sql.InTx(ctx, func(tx infra.SQLExecutor) error {
		if err := tx.QueryRow(ctx, sqlinline.QAdvanceCampaign, contribution.Amount).
			Scan(&stats.TotalCount, &stats.ContributionCount); err != nil {
			return fmt.Errorf("advance campaign: %w", err)
		}
		if err := tx.QueryRow(ctx, sqlinline.QInsertContribution, contribution.DisplayName(), contribution.Amount).
			Scan(&contribution.ID, &contribution.CreatedAt); err != nil {
			return fmt.Errorf("record contribution: %w", err)
		}
		return nil
	})
	if err != nil {
		contribution.ID = ""
		return domain.Stats{}, fmt.Errorf("%w: %w", domain.ErrTransientBackend, err)
	}
	return stats, nil
}

var _ domain.CampaignRepository = (*CampaignRepositoryPG)(nil)
