package salawat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
)

// Service implements the read accessor and the increment protocol on top of
// a CampaignRepository.
type Service struct {
	repo   domain.CampaignRepository
	logger zerolog.Logger
}

// NewService wires the service to its repository.
func NewService(repo domain.CampaignRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Stats returns the current totals; zeros when nothing was submitted yet.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

// Increment records one contribution of amount with an optional name and
// returns the totals after it. Invalid amounts never reach the repository.
// Calls are not deduplicated: two identical calls record two contributions.
func (s *Service) Increment(ctx context.Context, amount int64, name string) (domain.Stats, error) {
	if amount <= 0 {
		return domain.Stats{}, ErrAmountInvalid
	}

	contribution := &domain.Contribution{Amount: amount}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		contribution.Name = &trimmed
	}

	stats, err := s.repo.Increment(ctx, contribution)
	if err != nil {
		s.logger.Error().Err(err).Int64("amount", amount).Msg("salawat: increment failed")
		return domain.Stats{}, err
	}

	s.logger.Info().
		Str("contribution_id", contribution.ID).
		Int64("amount", amount).
		Bool("named", contribution.Name != nil).
		Int64("total_count", stats.TotalCount).
		Int64("contribution_count", stats.ContributionCount).
		Msg("salawat: contribution recorded")
	return stats, nil
}
