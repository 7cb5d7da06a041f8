package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/craftfolio/backend/internal/logger"
	"github.com/craftfolio/backend/internal/metrics"
	"go.uber.org/zap"
)

// EventKind identifies an engagement event type
type EventKind string

const (
	EventView           EventKind = "view"
	EventLike           EventKind = "like"
	EventUnlike         EventKind = "unlike"
	EventComment        EventKind = "comment"
	EventCommentRemoved EventKind = "comment_removed"
)

// Event is one engagement event flowing through the queue
type Event struct {
	Kind      EventKind `json:"kind"`
	ProjectID string    `json:"project_id"`
	ActorID   string    `json:"actor_id"`
	At        time.Time `json:"at"`
}

// Queue decouples request handling from counter writes. Handlers enqueue
// events and move on; worker goroutines apply them through the Recorder.
// Enqueue never blocks: when the buffer is full the event is dropped and
// counted, the primary action is never held up by analytics.
type Queue struct {
	events   chan Event
	workers  int
	recorder *Recorder
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewQueue creates an event queue backed by the given recorder
func NewQueue(recorder *Recorder, workers, buffer int) *Queue {
	if workers < 1 {
		workers = 2
	}
	if buffer < 1 {
		buffer = 1024
	}
	return &Queue{
		events:   make(chan Event, buffer),
		workers:  workers,
		recorder: recorder,
		done:     make(chan struct{}),
	}
}

// Start launches the worker pool
func (q *Queue) Start() {
	logger.Log.Info("Starting analytics queue", zap.Int("workers", q.workers))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	go q.reportDepth()
}

// Stop shuts down the queue and blocks until the workers have drained
// the buffered events
func (q *Queue) Stop() {
	close(q.events)
	q.wg.Wait()
	close(q.done)
}

// Enqueue submits an event without blocking. Returns false when the
// event was dropped because the buffer was full.
func (q *Queue) Enqueue(event Event) bool {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	m := metrics.Get()
	select {
	case q.events <- event:
		m.AnalyticsEventsTotal.WithLabelValues(string(event.Kind)).Inc()
		return true
	default:
		m.AnalyticsEventsDropped.WithLabelValues(string(event.Kind)).Inc()
		logger.Log.Warn("Analytics queue full, dropping event",
			zap.String("kind", string(event.Kind)),
			zap.String("project_id", event.ProjectID),
		)
		return false
	}
}

// worker applies events until the channel is closed. Recorder errors are
// logged and swallowed: analytics never fails a user action.
func (q *Queue) worker(workerID int) {
	defer q.wg.Done()

	logger.Log.Info("Analytics worker started", zap.Int("worker_id", workerID))

	for event := range q.events {
		if err := q.apply(event); err != nil {
			metrics.Get().AnalyticsEventErrors.WithLabelValues(string(event.Kind)).Inc()
			logger.Log.Warn("Failed to apply analytics event",
				zap.Int("worker_id", workerID),
				zap.String("kind", string(event.Kind)),
				zap.String("project_id", event.ProjectID),
				zap.Error(err),
			)
		}
	}

	logger.Log.Info("Analytics worker shutting down", zap.Int("worker_id", workerID))
}

func (q *Queue) apply(event Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch event.Kind {
	case EventView:
		return q.recorder.RecordView(ctx, event.ProjectID, event.ActorID, event.At)
	case EventLike:
		return q.recorder.RecordLike(ctx, event.ProjectID, event.ActorID, event.At)
	case EventUnlike:
		return q.recorder.RecordUnlike(ctx, event.ProjectID, event.ActorID)
	case EventComment:
		return q.recorder.RecordComment(ctx, event.ProjectID, event.At)
	case EventCommentRemoved:
		return q.recorder.RecordCommentRemoved(ctx, event.ProjectID)
	default:
		logger.Log.Warn("Unknown analytics event kind", zap.String("kind", string(event.Kind)))
		return nil
	}
}

// reportDepth publishes the queue depth gauge every few seconds
func (q *Queue) reportDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.Get().AnalyticsQueueDepth.Set(float64(len(q.events)))
		case <-q.done:
			return
		}
	}
}
