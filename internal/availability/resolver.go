package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crew-booking-backend/internal/logger"
	"crew-booking-backend/internal/metrics"
	"crew-booking-backend/internal/model"
	"crew-booking-backend/internal/parse"
	"crew-booking-backend/internal/schedule"
)

// ErrDataIntegrity is returned when directory data breaks an assumed invariant,
// such as a malformed working-hours value.
var ErrDataIntegrity = errors.New("worker data integrity violation")

// Directory is the read side the resolver needs. store.Store satisfies it.
type Directory interface {
	ListWorkers(ctx context.Context) ([]model.Worker, error)
	FindOccupancies(ctx context.Context, workerIDs []int64, rangeStart, rangeEnd time.Time, ignoreBookingID int64) ([]model.Occupancy, error)
}

// Query describes one resolution.
type Query struct {
	Window schedule.Window
	// CrewSize truncates the result. Zero returns every free worker.
	CrewSize int
	// IgnoreBooking excludes that booking's own occupancies, so an update is
	// checked against everyone else's commitments only.
	IgnoreBooking int64

	mode string
}

// Resolver finds workers who are calendar-eligible and conflict-free in a window.
type Resolver struct {
	dir     Directory
	cal     schedule.Calendar
	metrics metrics.Recorder
	log     logger.Logger
}

// NewResolver creates a resolver. A nil recorder disables metrics.
func NewResolver(dir Directory, cal schedule.Calendar, rec metrics.Recorder) *Resolver {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Resolver{
		dir:     dir,
		cal:     cal,
		metrics: rec,
		log:     logger.New("availability"),
	}
}

// Bind returns a copy of the resolver that reads through dir, typically a
// transaction-scoped store.
func (r *Resolver) Bind(dir Directory) *Resolver {
	cp := *r
	cp.dir = dir
	return &cp
}

// Calendar returns the calendar windows are evaluated against.
func (r *Resolver) Calendar() schedule.Calendar {
	return r.cal
}

// ForDate resolves over the canonical operating hours of date.
func (r *Resolver) ForDate(ctx context.Context, date time.Time, crewSize int) ([]model.Worker, error) {
	return r.Resolve(ctx, Query{Window: r.cal.DayWindow(date), CrewSize: crewSize, mode: "date"})
}

// ForSlot resolves over [start, start+hours).
func (r *Resolver) ForSlot(ctx context.Context, start time.Time, hours, crewSize int) ([]model.Worker, error) {
	return r.Resolve(ctx, Query{Window: r.cal.SlotWindow(start, hours), CrewSize: crewSize, mode: "slot"})
}

// Resolve returns free workers in directory order, truncated to q.CrewSize.
// A short result is not an error here; callers decide what a shortfall means.
func (r *Resolver) Resolve(ctx context.Context, q Query) ([]model.Worker, error) {
	started := time.Now()
	mode := q.mode
	if mode == "" {
		mode = "window"
	}

	workers, err := r.dir.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	candidates := make([]model.Worker, 0, len(workers))
	for _, w := range workers {
		wh, err := w.Hours()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
		}
		if r.calendarEligible(&w, wh, q.Window) {
			candidates = append(candidates, w)
		}
	}

	busy, err := r.busyWorkers(ctx, candidates, q)
	if err != nil {
		return nil, err
	}

	result := make([]model.Worker, 0, len(candidates))
	for _, w := range candidates {
		if q.CrewSize > 0 && len(result) == q.CrewSize {
			break
		}
		if !busy[w.ID] {
			result = append(result, w)
		}
	}

	r.metrics.ObserveResolution(mode, len(result), time.Since(started))
	r.log.Debugf("resolved %d of %d workers for %s-%s", len(result), len(workers),
		q.Window.Start.Format(time.RFC3339), q.Window.End.Format(time.RFC3339))
	return result, nil
}

// calendarEligible applies the rest-day rule and working-hours containment.
func (r *Resolver) calendarEligible(w *model.Worker, wh parse.WorkingHours, window schedule.Window) bool {
	if r.cal.IsRestDay(window.Start) && !w.WorksOnRestDay {
		return false
	}
	return r.cal.ShiftWindow(window, wh).Contains(window)
}

// busyWorkers returns the ids of candidates with a commitment that, padded by
// the rest buffer, overlaps the requested window.
func (r *Resolver) busyWorkers(ctx context.Context, candidates []model.Worker, q Query) (map[int64]bool, error) {
	busy := make(map[int64]bool)
	if len(candidates) == 0 {
		return busy, nil
	}

	ids := make([]int64, len(candidates))
	for i, w := range candidates {
		ids[i] = w.ID
	}

	rng := r.cal.SearchRange(q.Window)
	occupancies, err := r.dir.FindOccupancies(ctx, ids, rng.Start, rng.End, q.IgnoreBooking)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancies: %w", err)
	}

	for _, o := range occupancies {
		if o.Booking == nil || (q.IgnoreBooking != 0 && o.BookingID == q.IgnoreBooking) {
			continue
		}
		committed := schedule.Window{Start: o.Booking.StartTime.UTC(), End: o.Booking.EndTime.UTC()}
		if q.Window.ConflictsWith(committed) {
			busy[o.WorkerID] = true
		}
	}
	return busy, nil
}
