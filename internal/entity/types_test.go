package entity

import (
	"errors"
	"math"
	"testing"
)

func TestNumberDescription_Validate(t *testing.T) {
	d := NumberDescription{Min: 0.1, Max: 2.0, Step: 0.1}

	tests := []struct {
		name    string
		value   float64
		wantErr error
	}{
		{name: "minimum", value: 0.1},
		{name: "maximum", value: 2.0},
		{name: "on step", value: 0.8},
		{name: "on step with float error", value: 0.1 + 0.7},
		{name: "below minimum", value: 0.05, wantErr: ErrOutOfRange},
		{name: "above maximum", value: 2.1, wantErr: ErrOutOfRange},
		{name: "zero", value: 0, wantErr: ErrOutOfRange},
		{name: "off step", value: 0.85, wantErr: ErrInvalidStep},
		{name: "NaN", value: math.NaN(), wantErr: ErrOutOfRange},
		{name: "infinity", value: math.Inf(1), wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Validate(tt.value)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate(%v) error = %v, want nil", tt.value, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%v) error = %v, want %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestNumberDescription_ValidateNoStep(t *testing.T) {
	d := NumberDescription{Min: 0, Max: 10}
	if err := d.Validate(3.14159); err != nil {
		t.Errorf("Validate() error = %v, want nil when step is unset", err)
	}
}
