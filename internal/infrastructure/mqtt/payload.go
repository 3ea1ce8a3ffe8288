package mqtt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// NumberStatePayload is published on NumberState topics.
type NumberStatePayload struct {
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Step      float64   `json:"step"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseValue decodes a set command: either a bare number ("0.8") or an
// object with a value field ({"value":0.8}).
func ParseValue(payload []byte) (float64, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}

	var v float64
	if trimmed[0] == '{' {
		var body struct {
			Value *float64 `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &body); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if body.Value == nil {
			return 0, fmt.Errorf("%w: missing value", ErrInvalidPayload)
		}
		v = *body.Value
	} else {
		parsed, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		v = parsed
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v is not a finite number", ErrInvalidPayload, v)
	}
	return v, nil
}
