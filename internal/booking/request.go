package booking

import (
	"fmt"
	"time"

	"crew-booking-backend/internal/model"
)

// Request carries the caller-supplied booking fields. The end time is always derived.
type Request struct {
	StartTime       time.Time
	Duration        int
	RequiredWorkers int
}

// Validate fails fast before any resolution or persistence work.
func (r Request) Validate() error {
	if r.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidRequest)
	}
	if !model.ValidDuration(r.Duration) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, model.ErrInvalidDuration)
	}
	if !model.ValidCrewSize(r.RequiredWorkers) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, model.ErrInvalidCrewSize)
	}
	return nil
}

// Hours returns the job length as a duration.
func (r Request) Hours() time.Duration {
	return time.Duration(r.Duration) * time.Hour
}
