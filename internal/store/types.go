package store

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInUse is returned when deleting a row that bookings still depend on.
	ErrInUse = errors.New("record is still referenced by bookings")
	// ErrUnknownVehicle is returned when a worker references a vehicle that does not exist.
	ErrUnknownVehicle = errors.New("vehicle does not exist")
)

// RosterEntry is one worker record from the upstream roster feed.
type RosterEntry struct {
	ExternalRef    string `json:"id"`
	Name           string `json:"name"`
	WorkingHours   string `json:"workingHours"`
	WorksOnRestDay bool   `json:"worksOnRestDay"`
	Vehicle        string `json:"vehicle"`
}
