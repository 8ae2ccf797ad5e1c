package salawat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/domain"
)

var (
	// ErrAmountRequired is returned for an empty amount field.
	ErrAmountRequired = fmt.Errorf("%w: amount is required", domain.ErrValidation)
	// ErrAmountInvalid is returned for zero, negative, fractional or non-numeric amounts.
	ErrAmountInvalid = fmt.Errorf("%w: amount must be a positive integer", domain.ErrValidation)
)

// ParseAmountText validates a form field holding a base-10 whole number.
func ParseAmountText(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrAmountRequired
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrAmountInvalid
	}
	return n, nil
}

// ParseAmountJSON validates the "amount" member of a request body. Only JSON
// numbers with a whole positive value are accepted; strings, booleans, null
// and fractional values are rejected.
func ParseAmountJSON(raw json.RawMessage) (int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, ErrAmountRequired
	}
	c := trimmed[0]
	if c != '-' && (c < '0' || c > '9') {
		return 0, ErrAmountInvalid
	}
	text := string(trimmed)
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n <= 0 {
			return 0, ErrAmountInvalid
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f <= 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, ErrAmountInvalid
	}
	return int64(f), nil
}
