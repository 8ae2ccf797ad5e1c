package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/adapter/repo"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/middleware"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/salawat"
)

func newTestApp() (*App, *repo.CampaignRepositoryMemory) {
	store := repo.NewCampaignRepositoryMemory(nil)
	return NewApp(salawat.NewService(store, zerolog.Nop()), nil, zerolog.Nop()), store
}

func decodeStats(t *testing.T, rr *httptest.ResponseRecorder) domain.Stats {
	t.Helper()
	var stats domain.Stats
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return stats
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var payload errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return payload.Error
}

func TestSalawatStats_ZeroBeforeFirstIncrement(t *testing.T) {
	app, _ := newTestApp()

	rr := httptest.NewRecorder()
	app.SalawatStats(rr, httptest.NewRequest(http.MethodGet, "/api/salawat", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	if got := rr.Body.String(); !strings.Contains(got, `"totalCount":0`) || !strings.Contains(got, `"contributionCount":0`) {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestSalawatStats_BackendFailure(t *testing.T) {
	app, store := newTestApp()
	store.FailWith(errors.New("connection refused"))

	rr := httptest.NewRecorder()
	app.SalawatStats(rr, httptest.NewRequest(http.MethodGet, "/api/salawat", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status code: got %d, want 500", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "Failed to fetch stats" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestSalawatIncrement(t *testing.T) {
	app, store := newTestApp()
	store.Seed(domain.Stats{TotalCount: 100, ContributionCount: 5})

	req := httptest.NewRequest(http.MethodPost, "/api/salawat", strings.NewReader(`{"amount":25,"name":"Ali"}`))
	rr := httptest.NewRecorder()
	app.SalawatIncrement(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if got := decodeStats(t, rr); got != (domain.Stats{TotalCount: 125, ContributionCount: 6}) {
		t.Fatalf("unexpected stats %+v", got)
	}
	log := store.Contributions()
	if len(log) != 1 || log[0].DisplayName() != "Ali" || log[0].Amount != 25 {
		t.Fatalf("unexpected contribution log %+v", log)
	}
}

func TestSalawatIncrement_Anonymous(t *testing.T) {
	app, store := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/salawat", strings.NewReader(`{"amount":10}`))
	rr := httptest.NewRecorder()
	app.SalawatIncrement(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d, want 200", rr.Code)
	}
	if got := decodeStats(t, rr); got != (domain.Stats{TotalCount: 10, ContributionCount: 1}) {
		t.Fatalf("unexpected stats %+v", got)
	}
	if log := store.Contributions(); len(log) != 1 || log[0].Name != nil {
		t.Fatalf("expected anonymous contribution, got %+v", log)
	}
}

func TestSalawatIncrement_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"zero", `{"amount":0}`, "Amount must be a positive integer"},
		{"negative", `{"amount":-5}`, "Amount must be a positive integer"},
		{"fraction", `{"amount":3.5}`, "Amount must be a positive integer"},
		{"string", `{"amount":"abc"}`, "Amount must be a positive integer"},
		{"numeric string", `{"amount":"10"}`, "Amount must be a positive integer"},
		{"null", `{"amount":null}`, "Amount must be a positive integer"},
		{"missing", `{"name":"Ali"}`, "Amount must be a positive integer"},
		{"empty body", ``, "Amount must be a positive integer"},
		{"malformed", `{"amount":`, "Invalid request payload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, store := newTestApp()
			req := httptest.NewRequest(http.MethodPost, "/api/salawat", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			app.SalawatIncrement(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status code: got %d, want 400", rr.Code)
			}
			if msg := decodeError(t, rr); msg != tc.message {
				t.Fatalf("unexpected error message %q", msg)
			}
			if len(store.Contributions()) != 0 {
				t.Fatal("rejected submission reached the store")
			}
		})
	}
}

func TestSalawatIncrement_BackendFailure(t *testing.T) {
	app, store := newTestApp()
	store.FailWith(errors.New("deadlock detected"))

	req := httptest.NewRequest(http.MethodPost, "/api/salawat", strings.NewReader(`{"amount":3}`))
	rr := httptest.NewRecorder()
	app.SalawatIncrement(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status code: got %d, want 500", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "Failed to process submission. Please try again." {
		t.Fatalf("unexpected error message %q", msg)
	}
	store.FailWith(nil)
	stats, _ := store.Stats(context.Background())
	if stats != (domain.Stats{}) {
		t.Fatalf("failed submission changed totals: %+v", stats)
	}
}

func TestSalawatIncrement_LocalizedError(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/salawat", strings.NewReader(`{"amount":0}`))
	req = req.WithContext(context.WithValue(req.Context(), middleware.LocaleKey, "ar"))
	rr := httptest.NewRecorder()
	app.SalawatIncrement(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status code: got %d, want 400", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "يرجى إدخال عدد صحيح موجب" {
		t.Fatalf("unexpected error message %q", msg)
	}
}
