package booking

import "errors"

var (
	// ErrInvalidRequest wraps every input validation failure.
	ErrInvalidRequest = errors.New("invalid booking request")
	// ErrBookingNotFound is returned when an update targets an unknown booking.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrNoWorkersAvailable is the time capacity error: fewer free workers than requested.
	ErrNoWorkersAvailable = errors.New("not enough workers available for the provided time")
	// ErrNoVehicleCrew is the vehicle capacity error: free workers do not share one vehicle in sufficient number.
	ErrNoVehicleCrew = errors.New("not enough workers available from the same vehicle")
)

// IsCapacity reports whether err is one of the two capacity errors.
func IsCapacity(err error) bool {
	return errors.Is(err, ErrNoWorkersAvailable) || errors.Is(err, ErrNoVehicleCrew)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, ErrBookingNotFound):
		return "not_found"
	case errors.Is(err, ErrNoWorkersAvailable):
		return "no_workers"
	case errors.Is(err, ErrNoVehicleCrew):
		return "no_vehicle_crew"
	default:
		return "error"
	}
}
