package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/i18n"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/middleware"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/salawat"
)

const maxBodyBytes = 1 << 20

type salawatRequest struct {
	Amount json.RawMessage `json:"amount"`
	Name   *string         `json:"name"`
}

// SalawatStats serves GET /api/salawat.
func (a *App) SalawatStats(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	stats, err := a.Campaign.Stats(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("salawat: load stats failed")
		a.error(w, http.StatusInternalServerError, i18n.Message(locale, i18n.KeyFetchFailed))
		return
	}
	a.json(w, http.StatusOK, stats)
}

// SalawatIncrement serves POST /api/salawat.
func (a *App) SalawatIncrement(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())

	var req salawatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			a.error(w, http.StatusBadRequest, i18n.Message(locale, i18n.KeyAmountInvalid))
			return
		}
		a.error(w, http.StatusBadRequest, i18n.Message(locale, i18n.KeyInvalidPayload))
		return
	}

	amount, err := salawat.ParseAmountJSON(req.Amount)
	if err != nil {
		a.error(w, http.StatusBadRequest, i18n.Message(locale, i18n.KeyAmountInvalid))
		return
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}

	stats, err := a.Campaign.Increment(r.Context(), amount, name)
	switch {
	case err == nil:
		a.json(w, http.StatusOK, stats)
	case domain.IsValidation(err):
		a.error(w, http.StatusBadRequest, i18n.Message(locale, i18n.KeyAmountInvalid))
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("salawat: submission failed")
		a.error(w, http.StatusInternalServerError, i18n.Message(locale, i18n.KeySubmitFailed))
	}
}
