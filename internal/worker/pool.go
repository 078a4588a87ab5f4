package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Chucho2278/subvalle-control-caja/internal/metrics"
	"github.com/Chucho2278/subvalle-control-caja/internal/model"
	"github.com/Chucho2278/subvalle-control-caja/internal/repository"
)

const QueueAuditorias = "jobs:auditorias"

const maxInsertAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarAuditoria pushes an audit entry to Redis. The HTTP path never
// waits on the database for audit writes.
func (d *Dispatcher) EncolarAuditoria(ctx context.Context, a model.Auditoria) error {
	return d.enqueue(ctx, QueueAuditorias, "auditoria", a)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines draining the audit queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, repo repository.AuditoriaRepository, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, repo, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, repo repository.AuditoriaRepository, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueAuditorias).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, repo, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, repo repository.AuditoriaRepository, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var entrada model.Auditoria
	if err := json.Unmarshal(job.Payload, &entrada); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal auditoria payload")
		metrics.AuditoriasFallidas.Inc()
		pushDLQ(rdb, queue, job.Type, job.Payload, "payload inválido", 0)
		return
	}

	intentos, err := insertarConReintentos(ctx, repo, &entrada)
	if err == nil {
		return
	}

	// An audit entry never blocks or fails the operation it describes;
	// after the last attempt it is parked for manual replay.
	metrics.AuditoriasFallidas.Inc()
	pushDLQ(rdb, queue, job.Type, job.Payload, err.Error(), intentos)
}

// insertarConReintentos attempts the insert with increasing backoff. It stops
// early when ctx is cancelled so shutdown never hangs on a sleeping retry.
func insertarConReintentos(ctx context.Context, repo repository.AuditoriaRepository, entrada *model.Auditoria) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		if lastErr = repo.Insertar(ctx, entrada); lastErr == nil {
			return attempt, nil
		}
		log.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Str("accion", entrada.Accion).
			Msg("audit insert failed, retrying")
		if attempt == maxInsertAttempts || !esperarReintento(ctx, time.Duration(attempt)*500*time.Millisecond) {
			return attempt, lastErr
		}
	}
	return maxInsertAttempts, lastErr
}

// esperarReintento waits the backoff; false means ctx was cancelled first.
func esperarReintento(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// pushDLQ parks a failed job under its own short deadline. The worker ctx may
// already be cancelled on shutdown and the entry must still reach the DLQ.
func pushDLQ(rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	SendToDLQ(ctx, rdb, queue, jobType, payload, reason, attempts)
}
