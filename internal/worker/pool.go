package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const QueuePunchEvents = "jobs:punch_events"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PunchEventJob is the payload persisted as an audit-trail row.
type PunchEventJob struct {
	UserID     uuid.UUID `json:"user_id"`
	RecordID   uuid.UUID `json:"record_id"`
	Kind       string    `json:"kind"` // punch_in | punch_in_update | punch_out
	BranchName string    `json:"branch_name"`
	Distance   float64   `json:"distance"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueuePunchEvent pushes a punch audit job to Redis. Best effort: a
// failure is logged, never propagated — the punch itself already committed.
func (d *Dispatcher) EnqueuePunchEvent(ctx context.Context, payload PunchEventJob) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("punch event: marshal payload")
		return
	}
	encoded, err := json.Marshal(Job{Type: "punch_event", Payload: data})
	if err != nil {
		log.Error().Err(err).Msg("punch event: marshal job")
		return
	}
	if err := d.rdb.LPush(ctx, QueuePunchEvents, encoded).Err(); err != nil {
		log.Error().Err(err).Msg("punch event: enqueue")
	}
}

// Handlers maps job types to their processors. Wired at the composition
// root so workers have full access to infrastructure.
type Handlers struct {
	PunchEvent *PunchEventWorker
}

// StartPool launches numWorkers goroutines consuming the punch-event queue.
// Each goroutine blocks on BRPOP — zero CPU when idle. The returned errgroup
// drains when ctx is cancelled.
func StartPool(ctx context.Context, rdb *redis.Client, h *Handlers, numWorkers int) *errgroup.Group {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		id := i
		g.Go(func() error {
			runWorker(ctx, rdb, h, id)
			return nil
		})
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return g
}

func runWorker(ctx context.Context, rdb *redis.Client, h *Handlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueuePunchEvents).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, h, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, h *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	switch job.Type {
	case "punch_event":
		if err := h.PunchEvent.Process(ctx, job.Payload); err != nil {
			log.Error().Err(err).Msg("punch event job failed")
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), 1)
		}
	default:
		log.Warn().Str("type", job.Type).Msg("unknown job type")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "unknown job type", 1)
	}
}
