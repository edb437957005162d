package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/upsrj/checkin-system/internal/api/metrics"
	"github.com/upsrj/checkin-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	jobTimeout     = 5 * time.Second
)

// Dispatcher fans denormalization jobs out to a fixed set of workers using
// consistent hashing on the user email, so updates for one student are
// applied in order. The updates are best-effort: a failed job is logged and
// dropped, never retried, because the ledger itself stays authoritative.
type Dispatcher struct {
	workers  []chan ports.ProfileUpdateJob
	students ports.StudentRepository
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, students ports.StudentRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.ProfileUpdateJob, numWorkers),
		students: students,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ProfileUpdateJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to the worker responsible for its user. Non-blocking up
// to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.ProfileUpdateJob) {
	i := d.shardIndex(job.User)
	d.workers[i] <- job
	metrics.ProfileQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps a user deterministically to a worker index.
func (d *Dispatcher) shardIndex(user string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(user))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ProfileUpdateJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			err := d.students.UpdateLastCheckIn(jobCtx, job.User, job.CheckedInAt)
			cancel()
			if err != nil {
				d.log.Error().Err(err).
					Str("user", job.User).
					Int("worker_id", id).
					Msg("profile update failed")
			}
			metrics.ProfileQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
