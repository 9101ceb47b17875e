package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crew-booking-backend/internal/logger"
	"crew-booking-backend/internal/model"
)

var log = logger.New("store")

// allocationLockKey identifies the advisory lock that serializes booking allocation.
const allocationLockKey int64 = 0x6372657762 // "crewb"

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	// Transaction runs fn with a Store bound to a single database transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// LockAllocation takes the transaction-scoped allocation lock on postgres.
	// It is a no-op on other dialects.
	LockAllocation(ctx context.Context) error

	ListWorkers(ctx context.Context) ([]model.Worker, error)
	GetWorker(ctx context.Context, id int64) (*model.Worker, error)
	CreateWorker(ctx context.Context, w *model.Worker) error
	UpdateWorker(ctx context.Context, w *model.Worker) error
	DeleteWorker(ctx context.Context, id int64) error

	ListVehicles(ctx context.Context) ([]model.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*model.Vehicle, error)
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	UpdateVehicle(ctx context.Context, v *model.Vehicle) error
	DeleteVehicle(ctx context.Context, id int64) error

	// FindOccupancies returns the occupancies of the given workers whose booking
	// overlaps [rangeStart, rangeEnd), with the booking preloaded. Occupancies of
	// ignoreBookingID are skipped when it is non-zero.
	FindOccupancies(ctx context.Context, workerIDs []int64, rangeStart, rangeEnd time.Time, ignoreBookingID int64) ([]model.Occupancy, error)
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
	SaveBooking(ctx context.Context, b *model.Booking) error
	// ReplaceOccupancies makes workerIDs the complete crew of the booking.
	ReplaceOccupancies(ctx context.Context, bookingID int64, workerIDs []int64) error
	ListOccupancies(ctx context.Context) ([]model.Occupancy, error)
	ListBookingCrew(ctx context.Context, bookingID int64) ([]model.Worker, error)

	UpsertRoster(ctx context.Context, entries []RosterEntry) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) LockAllocation(ctx context.Context) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", allocationLockKey).Error; err != nil {
		return fmt.Errorf("failed to take allocation lock: %w", err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Workers ---

func (s *gormStore) ListWorkers(ctx context.Context) ([]model.Worker, error) {
	var workers []model.Worker
	if err := s.db.WithContext(ctx).Order("id").Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

func (s *gormStore) GetWorker(ctx context.Context, id int64) (*model.Worker, error) {
	var w model.Worker
	if err := s.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *gormStore) checkVehicle(ctx context.Context, vehicleID *int64) error {
	if vehicleID == nil {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Vehicle{}).Where("id = ?", *vehicleID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check vehicle %d: %w", *vehicleID, err)
	}
	if count == 0 {
		return fmt.Errorf("vehicle %d: %w", *vehicleID, ErrUnknownVehicle)
	}
	return nil
}

func (s *gormStore) CreateWorker(ctx context.Context, w *model.Worker) error {
	if err := s.checkVehicle(ctx, w.VehicleID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(w).Error; err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateWorker(ctx context.Context, w *model.Worker) error {
	existing, err := s.GetWorker(ctx, w.ID)
	if err != nil {
		return err
	}
	if err := s.checkVehicle(ctx, w.VehicleID); err != nil {
		return err
	}
	existing.Name = w.Name
	existing.WorkingHours = w.WorkingHours
	existing.WorksOnRestDay = w.WorksOnRestDay
	existing.VehicleID = w.VehicleID
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(existing).Error; err != nil {
		return fmt.Errorf("failed to update worker %d: %w", w.ID, err)
	}
	*w = *existing
	return nil
}

// DeleteWorker refuses to remove a worker that still has occupancies, since
// that would leave a booking with a partial crew.
func (s *gormStore) DeleteWorker(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Occupancy{}).Where("worker_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count occupancies for worker %d: %w", id, err)
		}
		if count > 0 {
			return fmt.Errorf("worker %d: %w", id, ErrInUse)
		}
		res := tx.Delete(&model.Worker{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete worker %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Vehicles ---

func (s *gormStore) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := s.db.WithContext(ctx).
		Preload("Workers", func(db *gorm.DB) *gorm.DB { return db.Order("workers.id") }).
		Order("id").
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *gormStore) GetVehicle(ctx context.Context, id int64) (*model.Vehicle, error) {
	var v model.Vehicle
	err := s.db.WithContext(ctx).
		Preload("Workers", func(db *gorm.DB) *gorm.DB { return db.Order("workers.id") }).
		First(&v, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (s *gormStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateVehicle(ctx context.Context, v *model.Vehicle) error {
	res := s.db.WithContext(ctx).Model(&model.Vehicle{ID: v.ID}).Update("name", v.Name)
	if res.Error != nil {
		return fmt.Errorf("failed to update vehicle %d: %w", v.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	updated, err := s.GetVehicle(ctx, v.ID)
	if err != nil {
		return err
	}
	*v = *updated
	return nil
}

// DeleteVehicle detaches the vehicle's workers before removing it.
func (s *gormStore) DeleteVehicle(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Worker{}).Where("vehicle_id = ?", id).Update("vehicle_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach workers from vehicle %d: %w", id, err)
		}
		res := tx.Delete(&model.Vehicle{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete vehicle %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Bookings and occupancies ---

func (s *gormStore) FindOccupancies(ctx context.Context, workerIDs []int64, rangeStart, rangeEnd time.Time, ignoreBookingID int64) ([]model.Occupancy, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}
	q := s.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = occupancies.booking_id").
		Where("occupancies.worker_id IN ?", workerIDs).
		Where("bookings.start_time < ? AND bookings.end_time > ?", rangeEnd, rangeStart)
	if ignoreBookingID != 0 {
		q = q.Where("occupancies.booking_id <> ?", ignoreBookingID)
	}

	var occupancies []model.Occupancy
	if err := q.Preload("Booking").Order("occupancies.id").Find(&occupancies).Error; err != nil {
		return nil, fmt.Errorf("failed to find occupancies: %w", err)
	}
	return occupancies, nil
}

func (s *gormStore) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	var b model.Booking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *gormStore) SaveBooking(ctx context.Context, b *model.Booking) error {
	q := s.db.WithContext(ctx).Omit(clause.Associations)
	var err error
	if b.ID == 0 {
		err = q.Create(b).Error
	} else {
		err = q.Save(b).Error
	}
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

func (s *gormStore) ReplaceOccupancies(ctx context.Context, bookingID int64, workerIDs []int64) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("booking_id = ?", bookingID).Delete(&model.Occupancy{}).Error; err != nil {
		return fmt.Errorf("failed to clear occupancies for booking %d: %w", bookingID, err)
	}
	if len(workerIDs) == 0 {
		return nil
	}

	occupancies := make([]model.Occupancy, len(workerIDs))
	for i, id := range workerIDs {
		occupancies[i] = model.Occupancy{BookingID: bookingID, WorkerID: id}
	}
	if err := db.Omit(clause.Associations).Create(&occupancies).Error; err != nil {
		return fmt.Errorf("failed to create occupancies for booking %d: %w", bookingID, err)
	}
	return nil
}

func (s *gormStore) ListOccupancies(ctx context.Context) ([]model.Occupancy, error) {
	var occupancies []model.Occupancy
	err := s.db.WithContext(ctx).
		Preload("Booking").
		Preload("Worker").
		Order("booking_id").Order("id").
		Find(&occupancies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list occupancies: %w", err)
	}
	return occupancies, nil
}

func (s *gormStore) ListBookingCrew(ctx context.Context, bookingID int64) ([]model.Worker, error) {
	var workers []model.Worker
	err := s.db.WithContext(ctx).
		Joins("JOIN occupancies ON occupancies.worker_id = workers.id").
		Where("occupancies.booking_id = ?", bookingID).
		Order("workers.id").
		Find(&workers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list crew for booking %d: %w", bookingID, err)
	}
	return workers, nil
}

// --- Roster ---

// UpsertRoster writes vehicles first, then workers keyed by their upstream reference.
func (s *gormStore) UpsertRoster(ctx context.Context, entries []RosterEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicleMap, err := upsertVehicles(tx, entries)
		if err != nil {
			return err
		}

		workers := make([]model.Worker, 0, len(entries))
		for _, e := range entries {
			ref := e.ExternalRef
			w := model.Worker{
				Name:           e.Name,
				WorkingHours:   e.WorkingHours,
				WorksOnRestDay: e.WorksOnRestDay,
				ExternalRef:    &ref,
			}
			if v, ok := vehicleMap[e.Vehicle]; ok {
				id := v.ID
				w.VehicleID = &id
			}
			workers = append(workers, w)
		}

		log.Debugf("Batch upserting %d workers...", len(workers))
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_ref"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "working_hours", "works_on_rest_day", "vehicle_id", "updated_at"}),
		}).Create(&workers).Error
	})
}

func upsertVehicles(tx *gorm.DB, entries []RosterEntry) (map[string]model.Vehicle, error) {
	seen := make(map[string]bool)
	var vehicles []model.Vehicle
	var names []string
	for _, e := range entries {
		if e.Vehicle == "" || seen[e.Vehicle] {
			continue
		}
		seen[e.Vehicle] = true
		vehicles = append(vehicles, model.Vehicle{Name: e.Vehicle})
		names = append(names, e.Vehicle)
	}
	if len(vehicles) == 0 {
		return map[string]model.Vehicle{}, nil
	}

	log.Debugf("Batch upserting %d vehicles...", len(vehicles))
	if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("batch upsert vehicles failed: %w", err)
	}

	var stored []model.Vehicle
	if err := tx.Where("name IN ?", names).Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve vehicles after upsert: %w", err)
	}
	vehicleMap := make(map[string]model.Vehicle, len(stored))
	for _, v := range stored {
		vehicleMap[v.Name] = v
	}
	return vehicleMap, nil
}
