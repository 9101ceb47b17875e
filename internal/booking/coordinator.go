package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"crew-booking-backend/internal/availability"
	"crew-booking-backend/internal/logger"
	"crew-booking-backend/internal/metrics"
	"crew-booking-backend/internal/model"
	"crew-booking-backend/internal/schedule"
	"crew-booking-backend/internal/store"
)

// Notifier is told about every committed booking.
type Notifier interface {
	Dispatch(bookingID int64)
}

// Result is a committed booking together with its crew.
type Result struct {
	Booking model.Booking
	Crew    []model.Worker
}

// Coordinator runs the allocation sequence for new and updated bookings.
type Coordinator struct {
	store    store.Store
	resolver *availability.Resolver
	selector CrewSelector
	notifier Notifier
	metrics  metrics.Recorder
	log      logger.Logger

	// mu serializes allocation within the process; LockAllocation extends
	// that across instances on postgres.
	mu sync.Mutex
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSelector replaces the default anchor-vehicle policy.
func WithSelector(s CrewSelector) Option {
	return func(c *Coordinator) { c.selector = s }
}

// WithNotifier sets the post-commit notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// NewCoordinator creates a Coordinator over the given store and resolver.
func NewCoordinator(s store.Store, r *availability.Resolver, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    s,
		resolver: r,
		selector: AnchorVehicleSelector{},
		metrics:  metrics.NopRecorder{},
		log:      logger.New("booking"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calendar exposes the resolver's calendar to request layers.
func (c *Coordinator) Calendar() schedule.Calendar {
	return c.resolver.Calendar()
}

// CheckAvailability lists free workers for the window, truncated to crewSize.
func (c *Coordinator) CheckAvailability(ctx context.Context, window schedule.Window, crewSize int) ([]model.Worker, error) {
	if !model.ValidCrewSize(crewSize) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, model.ErrInvalidCrewSize)
	}
	return c.resolver.Resolve(ctx, availability.Query{Window: window, CrewSize: crewSize})
}

// CreateBooking validates req, allocates a same-vehicle crew and persists both atomically.
func (c *Coordinator) CreateBooking(ctx context.Context, req Request) (*Result, error) {
	return c.allocate(ctx, "create", 0, req)
}

// UpdateBooking re-runs the full allocation for an existing booking. On failure
// the booking and its crew are left exactly as they were.
func (c *Coordinator) UpdateBooking(ctx context.Context, id int64, req Request) (*Result, error) {
	return c.allocate(ctx, "update", id, req)
}

func (c *Coordinator) allocate(ctx context.Context, op string, id int64, req Request) (res *Result, err error) {
	defer func() {
		c.metrics.IncBooking(op, outcome(err))
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var result Result
	err = c.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.LockAllocation(ctx); err != nil {
			return err
		}

		b := &model.Booking{}
		if id != 0 {
			existing, err := tx.GetBooking(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("booking %d: %w", id, ErrBookingNotFound)
			}
			if err != nil {
				return err
			}
			b = existing
		}

		window := schedule.NewWindow(req.StartTime, req.Hours())
		b.StartTime = window.Start
		b.EndTime = window.End
		b.Duration = req.Duration
		b.RequiredWorkers = req.RequiredWorkers

		eligible, err := c.resolver.Bind(tx).Resolve(ctx, availability.Query{
			Window:        window,
			CrewSize:      req.RequiredWorkers,
			IgnoreBooking: id,
		})
		if err != nil {
			return err
		}
		crew, err := c.selector.Select(eligible, req.RequiredWorkers)
		if err != nil {
			return err
		}

		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		workerIDs := make([]int64, len(crew))
		for i, w := range crew {
			workerIDs[i] = w.ID
		}
		if err := tx.ReplaceOccupancies(ctx, b.ID, workerIDs); err != nil {
			return err
		}

		result = Result{Booking: *b, Crew: crew}
		return nil
	})
	if err != nil {
		c.log.Warnf("%s booking failed: %v", op, err)
		return nil, err
	}

	c.log.Infow("booking committed", map[string]any{
		"op":         op,
		"booking_id": result.Booking.ID,
		"start":      result.Booking.StartTime,
		"crew":       len(result.Crew),
	})
	if c.notifier != nil {
		c.notifier.Dispatch(result.Booking.ID)
	}
	return &result, nil
}

// GetBooking returns a booking and its crew.
func (c *Coordinator) GetBooking(ctx context.Context, id int64) (*Result, error) {
	b, err := c.store.GetBooking(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrBookingNotFound)
	}
	if err != nil {
		return nil, err
	}
	crew, err := c.store.ListBookingCrew(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Result{Booking: *b, Crew: crew}, nil
}

// ListAssignments returns every occupancy with its booking and worker.
func (c *Coordinator) ListAssignments(ctx context.Context) ([]model.Occupancy, error) {
	return c.store.ListOccupancies(ctx)
}
