package booking

import "crew-booking-backend/internal/model"

// CrewSelector picks a crew of size workers from the resolver's output, or
// fails with a capacity error.
type CrewSelector interface {
	Select(eligible []model.Worker, size int) ([]model.Worker, error)
}

// CrewSelectorFunc adapts a function to CrewSelector.
type CrewSelectorFunc func(eligible []model.Worker, size int) ([]model.Worker, error)

func (f CrewSelectorFunc) Select(eligible []model.Worker, size int) ([]model.Worker, error) {
	return f(eligible, size)
}

// AnchorVehicleSelector takes the vehicle of the first eligible worker and
// keeps the workers sharing it, in order. It never retries with another anchor.
type AnchorVehicleSelector struct{}

func (AnchorVehicleSelector) Select(eligible []model.Worker, size int) ([]model.Worker, error) {
	if len(eligible) < size || size <= 0 {
		return nil, ErrNoWorkersAvailable
	}

	anchor := &eligible[0]
	crew := make([]model.Worker, 0, size)
	for i := range eligible {
		if len(crew) == size {
			break
		}
		w := &eligible[i]
		if w.ID == anchor.ID || anchor.SharesVehicle(w) {
			crew = append(crew, *w)
		}
	}

	if len(crew) < size {
		return nil, ErrNoVehicleCrew
	}
	return crew, nil
}
