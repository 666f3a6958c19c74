package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Jobs that fail every attempt are parked on "dlq:<queue>" until an operator
// lists or requeues them with backofficectl.
const DLQPrefix = "dlq:"

func deadLetterKey(queue string) string { return DLQPrefix + queue }

// DeadLetter is a parked notification. Recipient and Subject are lifted out of
// email payloads so a listing shows which alert or summary was lost.
type DeadLetter struct {
	Queue     string    `json:"queue"`
	Job       Job       `json:"job"`
	Recipient string    `json:"recipient,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
}

func newDeadLetter(queue string, job Job, cause error, attempts int, now time.Time) DeadLetter {
	dl := DeadLetter{
		Queue:    queue,
		Job:      job,
		Reason:   cause.Error(),
		Attempts: attempts,
		FailedAt: now.UTC(),
	}
	if job.Type == JobEmail {
		var p EmailJobPayload
		if json.Unmarshal(job.Payload, &p) == nil {
			dl.Recipient = p.ToEmail
			dl.Subject = p.Subject
		}
	}
	return dl
}

// park pushes a failed job onto its queue's dead letter list. Failures here
// are logged only; the job is already lost to the worker.
func park(ctx context.Context, rdb *redis.Client, dl DeadLetter) {
	data, err := json.Marshal(dl)
	if err != nil {
		log.Error().Err(err).Str("queue", dl.Queue).Msg("dlq: marshal entry")
		return
	}
	key := deadLetterKey(dl.Queue)
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push")
		return
	}
	log.Warn().
		Str("queue", dl.Queue).
		Str("job_type", dl.Job.Type).
		Str("recipient", dl.Recipient).
		Str("subject", dl.Subject).
		Str("reason", dl.Reason).
		Int("attempts", dl.Attempts).
		Msg("notification parked in dead letter queue")
}

// DLQLength returns the number of parked entries, reported by /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, deadLetterKey(queue)).Result()
}

// DeadLetters returns up to limit parked entries, newest first. limit <= 0
// returns all of them.
func DeadLetters(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DeadLetter, error) {
	raw, err := rdb.LRange(ctx, deadLetterKey(queue), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, r := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(r), &dl); err != nil {
			return nil, fmt.Errorf("decode dead letter: %w", err)
		}
		out = append(out, dl)
	}
	return out, nil
}

// Requeue moves every parked job back onto its source queue, oldest first,
// and returns how many were moved.
func Requeue(ctx context.Context, rdb *redis.Client, queue string) (int, error) {
	key := deadLetterKey(queue)
	moved := 0
	for {
		raw, err := rdb.RPop(ctx, key).Result()
		if err == redis.Nil {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		var dl DeadLetter
		if err := json.Unmarshal([]byte(raw), &dl); err != nil {
			rdb.RPush(ctx, key, raw)
			return moved, fmt.Errorf("decode dead letter: %w", err)
		}
		encoded, err := json.Marshal(dl.Job)
		if err != nil {
			return moved, err
		}
		if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			rdb.RPush(ctx, key, raw)
			return moved, err
		}
		moved++
	}
}
