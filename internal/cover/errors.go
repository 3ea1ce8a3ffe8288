package cover

import "errors"

// ErrUnknownSensorType is returned for a sensor type outside the supported set.
var ErrUnknownSensorType = errors.New("cover: unknown sensor type")
