package worker

import (
	"context"
	"encoding/json"

	"buzzhire/internal/model"
	"buzzhire/internal/repository"

	"github.com/rs/zerolog/log"
)

// PunchEventWorker persists punch audit jobs as immutable rows. The record
// itself is overwritten on re-punch-in; these rows are the surviving history
// of every cycle.
type PunchEventWorker struct {
	events repository.PunchEventRepository
}

func NewPunchEventWorker(events repository.PunchEventRepository) *PunchEventWorker {
	return &PunchEventWorker{events: events}
}

func (w *PunchEventWorker) Process(ctx context.Context, payload json.RawMessage) error {
	var job PunchEventJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return err
	}

	e := &model.PunchEvent{
		UserID:     job.UserID,
		RecordID:   job.RecordID,
		Kind:       job.Kind,
		BranchName: job.BranchName,
		Distance:   job.Distance,
		Lat:        job.Lat,
		Lon:        job.Lon,
		OccurredAt: job.OccurredAt,
	}
	if err := w.events.Create(ctx, e); err != nil {
		return err
	}

	log.Debug().
		Str("user_id", job.UserID.String()).
		Str("kind", job.Kind).
		Str("branch", job.BranchName).
		Msg("punch event recorded")
	return nil
}
