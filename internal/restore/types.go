package restore

// DomainNumber is the domain recorded for number entity rows.
const DomainNumber = "number"

// NumberData is the persisted state of a number entity.
type NumberData struct {
	// NativeValue is nil when the entity had no value when it was saved.
	NativeValue             *float64 `json:"native_value"`
	NativeMinValue          float64  `json:"native_min_value"`
	NativeMaxValue          float64  `json:"native_max_value"`
	NativeStep              float64  `json:"native_step"`
	NativeUnitOfMeasurement string   `json:"native_unit_of_measurement,omitempty"`
}
