package repo

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
)

func TestMemoryIncrementUnderConcurrency(t *testing.T) {
	r := NewCampaignRepositoryMemory(nil)

	const writers = 64
	var wg sync.WaitGroup
	var want int64
	for i := 1; i <= writers; i++ {
		want += int64(i)
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			if _, err := r.Increment(context.Background(), &domain.Contribution{Amount: amount}); err != nil {
				t.Errorf("Increment(%d) error = %v", amount, err)
			}
		}(int64(i))
	}
	wg.Wait()

	stats, err := r.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalCount != want || stats.ContributionCount != writers {
		t.Fatalf("stats = %+v, want total %d count %d", stats, want, writers)
	}

	var sum int64
	for _, c := range r.Contributions() {
		sum += c.Amount
	}
	if sum != stats.TotalCount || int64(len(r.Contributions())) != stats.ContributionCount {
		t.Fatalf("log (sum %d, len %d) disagrees with counter %+v", sum, len(r.Contributions()), stats)
	}
}

func TestMemoryFailureLeavesNoTrace(t *testing.T) {
	var notified int
	r := NewCampaignRepositoryMemory(func(domain.Stats) { notified++ })
	r.FailWith(errors.New("offline"))

	if _, err := r.Increment(context.Background(), &domain.Contribution{Amount: 10}); !domain.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	r.FailWith(nil)

	stats, err := r.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats != (domain.Stats{}) || len(r.Contributions()) != 0 || notified != 0 {
		t.Fatalf("failed increment left traces: stats=%+v log=%d notified=%d", stats, len(r.Contributions()), notified)
	}
}

func TestMemoryNotifiesWithNewTotals(t *testing.T) {
	var got []domain.Stats
	r := NewCampaignRepositoryMemory(func(s domain.Stats) { got = append(got, s) })
	r.Seed(domain.Stats{TotalCount: 100, ContributionCount: 5})

	name := "Ali"
	c := &domain.Contribution{Name: &name, Amount: 25}
	stats, err := r.Increment(context.Background(), c)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	want := domain.Stats{TotalCount: 125, ContributionCount: 6}
	if stats != want || len(got) != 1 || got[0] != want {
		t.Fatalf("stats=%+v notified=%+v, want %+v", stats, got, want)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Fatalf("contribution not populated: %+v", c)
	}
	name = "changed"
	if log := r.Contributions(); log[0].DisplayName() != "Ali" {
		t.Fatalf("log entry aliased caller name: %q", log[0].DisplayName())
	}
}

func TestMemoryRejectsTotalOverflow(t *testing.T) {
	r := NewCampaignRepositoryMemory(nil)
	r.Seed(domain.Stats{TotalCount: math.MaxInt64 - 5, ContributionCount: 3})

	_, err := r.Increment(context.Background(), &domain.Contribution{Amount: 6})
	if !domain.IsTransient(err) {
		t.Fatalf("expected transient error on overflow, got %v", err)
	}
	stats, _ := r.Stats(context.Background())
	if stats != (domain.Stats{TotalCount: math.MaxInt64 - 5, ContributionCount: 3}) || len(r.Contributions()) != 0 {
		t.Fatalf("overflowing increment changed state: %+v", stats)
	}

	stats, err = r.Increment(context.Background(), &domain.Contribution{Amount: 5})
	if err != nil || stats.TotalCount != math.MaxInt64 {
		t.Fatalf("Increment() = %+v, %v", stats, err)
	}
}
