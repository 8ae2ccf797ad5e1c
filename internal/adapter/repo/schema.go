package repo

import (
	"context"
	"fmt"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/infra"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/sqlinline"
)

// EnsureSchema creates the campaign tables and change triggers.
// Safe to call on every start.
func EnsureSchema(ctx context.Context, sql infra.SQLExecutor) error {
	if _, err := sql.Exec(ctx, sqlinline.QSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
