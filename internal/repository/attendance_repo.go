package repository

import (
	"context"
	"errors"
	"time"

	"buzzhire/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceRepository is the sole mutator of attendance records.
type AttendanceRepository interface {
	// Transaction runs fn against a transactional copy of the repository.
	// Reads inside the transaction take a row-level lock, so the
	// fetch-decide-save sequence of a punch serializes per user.
	Transaction(ctx context.Context, fn func(tx AttendanceRepository) error) error
	// FindLatestForDay returns the most recently created record whose
	// punch-in falls inside [dayStart, dayEnd), or nil when none exists.
	FindLatestForDay(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) (*model.AttendanceRecord, error)
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	Update(ctx context.Context, rec *model.AttendanceRecord) error
}

type attendanceRepo struct {
	db *gorm.DB
	// forUpdate is set on transactional copies so reads lock the row.
	forUpdate bool
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Transaction(ctx context.Context, fn func(tx AttendanceRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&attendanceRepo{db: tx, forUpdate: true})
	})
}

func (r *attendanceRepo) FindLatestForDay(ctx context.Context, userID uuid.UUID, dayStart, dayEnd time.Time) (*model.AttendanceRecord, error) {
	q := r.db.WithContext(ctx)
	if r.forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rec model.AttendanceRecord
	err := q.
		Where("user_id = ? AND punch_in_time >= ? AND punch_in_time < ?", userID, dayStart, dayEnd).
		Order("created_at DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *attendanceRepo) Update(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}
