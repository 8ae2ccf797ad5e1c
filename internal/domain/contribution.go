package domain

import "time"

// Contribution is one accepted submission in the append-only log.
type Contribution struct {
	ID        string
	Name      *string
	Amount    int64
	CreatedAt time.Time
}

// DisplayName returns the contributor name or an empty string for anonymous entries.
func (c Contribution) DisplayName() string {
	if c.Name == nil {
		return ""
	}
	return *c.Name
}
