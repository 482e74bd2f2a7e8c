package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/detailiq/dashboard-system/internal/core/ports"
	"github.com/detailiq/dashboard-system/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrQueueFull is returned by Enqueue when the thread's worker is saturated.
var ErrQueueFull = errors.New("chat queue full")

// Dispatcher routes chat turns to a fixed set of workers using consistent
// hashing on the thread id, so turns of one thread are answered in order and
// never concurrently.
type Dispatcher struct {
	workers   []chan ports.ChatTurn
	processor ports.ChatTurnProcessor
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor ports.ChatTurnProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan ports.ChatTurn, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ChatTurn, channelBuffer)
	}
	return d
}

var _ ports.ChatQueue = (*Dispatcher)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands turn to the worker responsible for its thread without
// blocking; a full buffer yields ErrQueueFull.
func (d *Dispatcher) Enqueue(turn ports.ChatTurn) error {
	idx := d.shardIndex(turn.ThreadID)
	select {
	case d.workers[idx] <- turn:
		metrics.ChatQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// shardIndex maps a thread id deterministically to a worker index.
func (d *Dispatcher) shardIndex(threadID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(threadID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ChatTurn) {
	defer d.wg.Done()
	depth := metrics.ChatQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case turn, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			if err := d.processor.ProcessTurn(ctx, turn); err != nil {
				d.log.Error().Err(err).
					Str("thread_id", turn.ThreadID).
					Str("message_id", turn.MessageID).
					Int("worker_id", id).
					Msg("chat turn failed")
			}
		}
	}
}
