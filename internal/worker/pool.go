package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotifications = "jobs:notifications"

	JobEmail = "email"

	maxAttempts = 3
)

// ErrPermanent marks a job failure that retrying cannot fix (bad payload).
var ErrPermanent = errors.New("permanent job failure")

// retryBackoff is the wait before attempt i (i >= 1): 1s, 2s, 4s …
var retryBackoff = func(i int) time.Duration { return time.Duration(1<<uint(i-1)) * time.Second }

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one job payload.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueNotifications, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the notification queue.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers map[string]JobHandler, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers map[string]JobHandler, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueNotifications).Result()
			if err != nil {
				if wait := popBackoff(ctx, err); wait > 0 {
					log.Warn().Err(err).Int("worker", id).Dur("retry_in", wait).Msg("queue pop failed")
					sleepCtx(ctx, wait)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// popErrorWait is how long a worker pauses after Redis refuses a pop.
var popErrorWait = 2 * time.Second

// popBackoff returns how long to wait after a failed BRPOP. An empty queue
// (redis.Nil) or a cancelled context needs no wait.
func popBackoff(ctx context.Context, err error) time.Duration {
	if errors.Is(err, redis.Nil) || ctx.Err() != nil ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0
	}
	return popErrorWait
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]JobHandler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	attempts, err := runJob(ctx, handlers, job)
	if err != nil {
		park(ctx, rdb, newDeadLetter(queue, job, err, attempts, time.Now()))
		return
	}
	log.Info().Str("type", job.Type).Int("attempts", attempts).Msg("job done")
}

// runJob dispatches job to its handler with retries. It returns the number of
// attempts made and the last error, nil on success.
func runJob(ctx context.Context, handlers map[string]JobHandler, job Job) (int, error) {
	h, ok := handlers[job.Type]
	if !ok {
		return 0, fmt.Errorf("no handler for job type %q", job.Type)
	}

	attempts := 0
	err := withRetry(ctx, maxAttempts, func(attempt int) error {
		attempts = attempt + 1
		err := h.Process(ctx, job.Payload)
		if err != nil && !errors.Is(err, ErrPermanent) {
			log.Warn().Err(err).Str("type", job.Type).Int("attempt", attempts).Msg("job attempt failed")
		}
		return err
	})
	return attempts, err
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// ErrPermanent stops the loop early.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff(i)):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrPermanent) {
			return err
		}
	}
	return lastErr
}
