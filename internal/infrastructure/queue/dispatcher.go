package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghola/conversation-api/internal/api/metrics"
	"github.com/ghola/conversation-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes message events to a fixed set of workers using
// consistent hashing on the conversation id, guaranteeing per-conversation
// ordering of log appends and counter increments.
type Dispatcher struct {
	workers []chan ports.MessageEventInput
	service ports.UsageService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.UsageService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.MessageEventInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.MessageEventInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its conversation.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.MessageEventInput) {
	d.workers[d.shardIndex(event.ConversationID)] <- event
}

// shardIndex maps a conversation id deterministically to a worker index.
func (d *Dispatcher) shardIndex(conversationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(conversationID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.MessageEventInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			start := time.Now()
			status := "ok"
			if err := d.service.Process(ctx, event); err != nil {
				status = "error"
				d.log.Error().Err(err).
					Str("conversation_id", event.ConversationID).
					Int("worker_id", id).
					Msg("message event processing failed")
			}
			metrics.MessageProcessingDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		}
	}
}
