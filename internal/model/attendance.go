package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord is one punch-in/punch-out cycle for one user on one
// calendar day. PunchOutTime == nil means the user is currently punched in.
// A re-punch-in after punching out overwrites this same row (fresh punch-in
// fields, punch-out fields cleared) instead of creating a second one — at
// most one row per (user, day) ever has a null punch-out.
type AttendanceRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_attendance_user_day,priority:1"`
	PunchInTime time.Time `gorm:"not null;index:idx_attendance_user_day,priority:2"`
	PunchInLat  float64   `gorm:"not null"`
	PunchInLon  float64   `gorm:"not null"`
	// BranchName is the branch resolved at punch-in time.
	BranchName   string `gorm:"type:varchar(100);not null"`
	PunchOutTime *time.Time
	PunchOutLat  *float64
	PunchOutLon  *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PunchEvent is an immutable audit entry written asynchronously for every
// successful punch. Unlike AttendanceRecord it is never overwritten, so it
// preserves the full cycle history of a day. Kind: "punch_in" |
// "punch_in_update" | "punch_out".
type PunchEvent struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecordID   uuid.UUID  `gorm:"type:uuid;not null"`
	Kind       string     `gorm:"type:varchar(20);not null"`
	BranchName string     `gorm:"type:varchar(100);not null"`
	Distance   float64    `gorm:"not null"` // meters, full precision
	Lat        float64    `gorm:"not null"`
	Lon        float64    `gorm:"not null"`
	OccurredAt time.Time  `gorm:"not null"`
	CreatedAt  time.Time
}
