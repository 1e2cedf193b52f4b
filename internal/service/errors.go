package service

import (
	"errors"
	"fmt"

	"buzzhire/internal/model"
)

// Domain rejections. Every one of these leaves the record store unchanged;
// handlers map them to 4xx responses, anything else becomes a generic 500.
var (
	ErrNotPunchedIn = errors.New("You have not punched in today")
	ErrNotAllowed   = errors.New("Not allowed")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// OutOfRangeError rejects a punch whose coordinate is farther than the
// acceptance radius from every branch. It carries the nearest branch and the
// distance to it so the client can tell the user where they should be.
type OutOfRangeError struct {
	NearestBranch string
	Distance      float64 // meters, full precision
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("You are out of range (nearest: %s)", e.NearestBranch)
}

// AlreadyPunchedInError rejects a punch-in while a cycle is still open.
// Idempotent: no mutation happens, and the open record is returned for
// context.
type AlreadyPunchedInError struct {
	Record *model.AttendanceRecord
}

func (e *AlreadyPunchedInError) Error() string {
	return "You are already punched in today"
}
