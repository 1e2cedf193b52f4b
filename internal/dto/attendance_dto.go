package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PunchRequest carries the coordinate of a punch attempt. Pointers so that
// "field absent" is distinguishable from a legitimate zero coordinate.
type PunchRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// AttendanceResponse is the serialized record, embedded in punch and status
// responses.
type AttendanceResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	PunchInTime  time.Time  `json:"punch_in_time"`
	PunchInLat   float64    `json:"punch_in_lat"`
	PunchInLon   float64    `json:"punch_in_lon"`
	Branch       string     `json:"branch"`
	PunchOutTime *time.Time `json:"punch_out_time"`
	PunchOutLat  *float64   `json:"punch_out_lat"`
	PunchOutLon  *float64   `json:"punch_out_lon"`
}

// PunchResponse is returned on a successful punch-in or punch-out.
// Distance is rounded to 2 decimals; internal comparisons use full precision.
type PunchResponse struct {
	Status   string             `json:"status"`
	Message  string             `json:"message"`
	Branch   string             `json:"branch"`
	Distance float64            `json:"distance"`
	Data     AttendanceResponse `json:"data"`
}

// TodayStatus is an explicit projection of today's record. All fields are
// always present; nullables are null when no record exists yet.
type TodayStatus struct {
	IsPunchedIn   bool                `json:"is_punched_in"`
	HasPunchedOut bool                `json:"has_punched_out"`
	PunchInTime   *time.Time          `json:"punch_in_time"`
	PunchOutTime  *time.Time          `json:"punch_out_time"`
	Branch        *string             `json:"branch"`
	Distance      *float64            `json:"distance"` // always null: only meaningful at punch time
	Raw           *AttendanceResponse `json:"raw"`
}

type TodayStatusResponse struct {
	Status string      `json:"status"`
	Data   TodayStatus `json:"data"`
}
