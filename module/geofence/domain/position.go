package domain

import "time"

type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Position is a single GPS fix. SpeedMPS is nil when the source did not
// report speed for this fix.
type Position struct {
	Coordinate
	SpeedMPS  *float64  `json:"speed_mps,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
