package service

import (
	"context"
	"time"

	"buzzhire/internal/dto"
	"buzzhire/internal/geo"
	"buzzhire/internal/model"
	"buzzhire/internal/repository"
	"buzzhire/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AttendanceService interface {
	PunchIn(ctx context.Context, userID uuid.UUID, lat, lon float64) (*dto.PunchResponse, error)
	PunchOut(ctx context.Context, userID uuid.UUID, lat, lon float64) (*dto.PunchResponse, error)
	TodayStatus(ctx context.Context, userID uuid.UUID) (*dto.TodayStatusResponse, error)
}

type attendanceService struct {
	repo       repository.AttendanceRepository
	resolver   *geo.Resolver
	dispatcher *worker.Dispatcher // nil disables the audit trail
}

func NewAttendanceService(repo repository.AttendanceRepository, resolver *geo.Resolver, dispatcher *worker.Dispatcher) AttendanceService {
	return &attendanceService{repo: repo, resolver: resolver, dispatcher: dispatcher}
}

// ── PunchIn ───────────────────────────────────────────────────────────────────
// State transitions per (user, day):
//   no record      → create a new one
//   punched in     → reject, nothing changes
//   punched out    → overwrite the same record with a fresh cycle

func (s *attendanceService) PunchIn(ctx context.Context, userID uuid.UUID, lat, lon float64) (*dto.PunchResponse, error) {
	branch, distance := s.resolver.FindNearest(lat, lon)
	if !s.resolver.WithinRadius(distance) {
		return nil, &OutOfRangeError{NearestBranch: branch.Name, Distance: distance}
	}

	var resp *dto.PunchResponse
	err := s.repo.Transaction(ctx, func(tx repository.AttendanceRepository) error {
		now := time.Now()
		start, end := dayBounds(now)

		rec, err := tx.FindLatestForDay(ctx, userID, start, end)
		if err != nil {
			return err
		}

		switch stateOf(rec) {
		case statePunchedIn:
			return &AlreadyPunchedInError{Record: rec}

		case statePunchedOut:
			// New cycle on the same record: the previous punch-out is
			// discarded here, the audit trail keeps it.
			applyPunchIn(rec, now, lat, lon, branch.Name)
			if err := tx.Update(ctx, rec); err != nil {
				return err
			}
			resp = s.punchResponse("Punch in updated successfully at "+branch.Name, branch.Name, distance, rec)
			s.audit(ctx, "punch_in_update", rec, branch.Name, distance, lat, lon, now)
			return nil

		default: // stateNone
			rec = &model.AttendanceRecord{UserID: userID}
			applyPunchIn(rec, now, lat, lon, branch.Name)
			if err := tx.Create(ctx, rec); err != nil {
				return err
			}
			resp = s.punchResponse("Punch in successful at "+branch.Name, branch.Name, distance, rec)
			s.audit(ctx, "punch_in", rec, branch.Name, distance, lat, lon, now)
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ── PunchOut ──────────────────────────────────────────────────────────────────
// The punched-in check runs before branch resolution inside the transaction:
// distance is irrelevant when there is nothing to punch out of. The range
// check still rejects before any mutation.

func (s *attendanceService) PunchOut(ctx context.Context, userID uuid.UUID, lat, lon float64) (*dto.PunchResponse, error) {
	var resp *dto.PunchResponse
	err := s.repo.Transaction(ctx, func(tx repository.AttendanceRepository) error {
		now := time.Now()
		start, end := dayBounds(now)

		rec, err := tx.FindLatestForDay(ctx, userID, start, end)
		if err != nil {
			return err
		}
		if stateOf(rec) != statePunchedIn {
			return ErrNotPunchedIn
		}

		branch, distance := s.resolver.FindNearest(lat, lon)
		if !s.resolver.WithinRadius(distance) {
			return &OutOfRangeError{NearestBranch: branch.Name, Distance: distance}
		}

		applyPunchOut(rec, now, lat, lon)
		if err := tx.Update(ctx, rec); err != nil {
			return err
		}
		resp = s.punchResponse("Punch out successful", branch.Name, distance, rec)
		s.audit(ctx, "punch_out", rec, branch.Name, distance, lat, lon, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ── TodayStatus ───────────────────────────────────────────────────────────────
// Pure projection: no branch resolution, no mutation. Distance is only
// meaningful at punch time, so it is always null here.

func (s *attendanceService) TodayStatus(ctx context.Context, userID uuid.UUID) (*dto.TodayStatusResponse, error) {
	start, end := dayBounds(time.Now())
	rec, err := s.repo.FindLatestForDay(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	status := dto.TodayStatus{}
	if rec != nil {
		raw := RecordResponse(rec)
		status = dto.TodayStatus{
			IsPunchedIn:   rec.PunchOutTime == nil,
			HasPunchedOut: rec.PunchOutTime != nil,
			PunchInTime:   &rec.PunchInTime,
			PunchOutTime:  rec.PunchOutTime,
			Branch:        &rec.BranchName,
			Raw:           &raw,
		}
	}
	return &dto.TodayStatusResponse{Status: "success", Data: status}, nil
}

// ── State machine core ────────────────────────────────────────────────────────
// Pure functions, separated from store I/O so transitions are testable in
// isolation.

type punchState int

const (
	stateNone punchState = iota
	statePunchedIn
	statePunchedOut
)

func stateOf(rec *model.AttendanceRecord) punchState {
	switch {
	case rec == nil:
		return stateNone
	case rec.PunchOutTime == nil:
		return statePunchedIn
	default:
		return statePunchedOut
	}
}

// applyPunchIn starts a cycle: fresh punch-in fields, punch-out cleared.
func applyPunchIn(rec *model.AttendanceRecord, now time.Time, lat, lon float64, branch string) {
	rec.PunchInTime = now
	rec.PunchInLat = lat
	rec.PunchInLon = lon
	rec.BranchName = branch
	rec.PunchOutTime = nil
	rec.PunchOutLat = nil
	rec.PunchOutLon = nil
}

// applyPunchOut closes the cycle; punch-in fields stay untouched.
func applyPunchOut(rec *model.AttendanceRecord, now time.Time, lat, lon float64) {
	rec.PunchOutTime = &now
	rec.PunchOutLat = &lat
	rec.PunchOutLon = &lon
}

// dayBounds returns the half-open [midnight, next midnight) window of the
// server-local calendar day containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *attendanceService) punchResponse(msg, branch string, distance float64, rec *model.AttendanceRecord) *dto.PunchResponse {
	return &dto.PunchResponse{
		Status:   "success",
		Message:  msg,
		Branch:   branch,
		Distance: RoundDistance(distance),
		Data:     RecordResponse(rec),
	}
}

func (s *attendanceService) audit(ctx context.Context, kind string, rec *model.AttendanceRecord, branch string, distance, lat, lon float64, at time.Time) {
	if s.dispatcher == nil {
		return
	}
	// Best effort: a full queue or Redis outage must not fail the punch.
	s.dispatcher.EnqueuePunchEvent(ctx, worker.PunchEventJob{
		UserID:     rec.UserID,
		RecordID:   rec.ID,
		Kind:       kind,
		BranchName: branch,
		Distance:   distance,
		Lat:        lat,
		Lon:        lon,
		OccurredAt: at,
	})
}

// RecordResponse serializes a record into its response shape. Also used by
// handlers when a rejection carries the existing record for context.
func RecordResponse(rec *model.AttendanceRecord) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:           rec.ID.String(),
		UserID:       rec.UserID.String(),
		PunchInTime:  rec.PunchInTime,
		PunchInLat:   rec.PunchInLat,
		PunchInLon:   rec.PunchInLon,
		Branch:       rec.BranchName,
		PunchOutTime: rec.PunchOutTime,
		PunchOutLat:  rec.PunchOutLat,
		PunchOutLon:  rec.PunchOutLon,
	}
}

// RoundDistance rounds a distance in meters to 2 decimals for presentation.
// decimal avoids the float artifacts of math.Round(d*100)/100.
func RoundDistance(d float64) float64 {
	return decimal.NewFromFloat(d).Round(2).InexactFloat64()
}
