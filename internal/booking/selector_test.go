package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crew-booking-backend/internal/model"
)

func onVehicle(id int64, vehicle int64) model.Worker {
	w := model.Worker{ID: id}
	if vehicle != 0 {
		w.VehicleID = &vehicle
	}
	return w
}

func TestAnchorVehicleSelector(t *testing.T) {
	testCases := []struct {
		name      string
		eligible  []model.Worker
		size      int
		expected  []int64
		expectErr error
	}{
		{
			name:     "Same vehicle crew",
			eligible: []model.Worker{onVehicle(1, 10), onVehicle(2, 10)},
			size:     2,
			expected: []int64{1, 2},
		},
		{
			name:     "Skips other vehicles in order",
			eligible: []model.Worker{onVehicle(1, 10), onVehicle(2, 20), onVehicle(3, 10), onVehicle(4, 10)},
			size:     2,
			expected: []int64{1, 3},
		},
		{
			name:      "Shortfall",
			eligible:  []model.Worker{onVehicle(1, 10)},
			size:      2,
			expectErr: ErrNoWorkersAvailable,
		},
		{
			name:      "Different vehicles",
			eligible:  []model.Worker{onVehicle(1, 10), onVehicle(2, 20)},
			size:      2,
			expectErr: ErrNoVehicleCrew,
		},
		{
			name:      "Never re-anchors",
			eligible:  []model.Worker{onVehicle(1, 10), onVehicle(2, 20), onVehicle(3, 20)},
			size:      2,
			expectErr: ErrNoVehicleCrew,
		},
		{
			name:     "Worker without vehicle alone",
			eligible: []model.Worker{onVehicle(1, 0)},
			size:     1,
			expected: []int64{1},
		},
		{
			name:      "Worker without vehicle cannot anchor a crew",
			eligible:  []model.Worker{onVehicle(1, 0), onVehicle(2, 0)},
			size:      2,
			expectErr: ErrNoVehicleCrew,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			crew, err := AnchorVehicleSelector{}.Select(tc.eligible, tc.size)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				assert.Nil(t, crew)
				return
			}
			assert.NoError(t, err)
			got := make([]int64, len(crew))
			for i, w := range crew {
				got[i] = w.ID
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRequestValidate(t *testing.T) {
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		req       Request
		expectErr error
	}{
		{name: "valid", req: Request{StartTime: start, Duration: 2, RequiredWorkers: 3}},
		{name: "missing start", req: Request{Duration: 2, RequiredWorkers: 1}, expectErr: ErrInvalidRequest},
		{name: "one hour", req: Request{StartTime: start, Duration: 1, RequiredWorkers: 1}, expectErr: model.ErrInvalidDuration},
		{name: "zero crew", req: Request{StartTime: start, Duration: 4, RequiredWorkers: 0}, expectErr: model.ErrInvalidCrewSize},
		{name: "crew of four", req: Request{StartTime: start, Duration: 4, RequiredWorkers: 4}, expectErr: model.ErrInvalidCrewSize},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.expectErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expectErr)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestIsCapacity(t *testing.T) {
	assert.True(t, IsCapacity(ErrNoWorkersAvailable))
	assert.True(t, IsCapacity(ErrNoVehicleCrew))
	assert.False(t, IsCapacity(ErrBookingNotFound))
}
