package tracking

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/models"
)

// ClickEvent is a redirect click waiting to be persisted.
type ClickEvent struct {
	ProductID string
	IPAddress string
	UserAgent string
	At        time.Time
}

// ClickRecorder persists click rows.
type ClickRecorder interface {
	CreateClick(click *models.ClickTracking) error
}

// Workers persists ClickEvents from a buffered channel with a fixed number
// of goroutines.
type Workers struct {
	events   chan ClickEvent
	recorder ClickRecorder
	log      logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func StartWorkers(count, buffer int, recorder ClickRecorder, log logrus.FieldLogger) *Workers {
	if count < 1 {
		count = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	w := &Workers{
		events:   make(chan ClickEvent, buffer),
		recorder: recorder,
		log:      log,
	}
	log.WithField("workers", count).Info("starting click workers")
	for i := 0; i < count; i++ {
		w.wg.Add(1)
		go w.run(i)
	}
	return w
}

// Enqueue hands evt to the pool without blocking. It reports false when the
// buffer is full or the pool is closed; the event is then dropped.
func (w *Workers) Enqueue(evt ClickEvent) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.events <- evt:
		return true
	default:
		w.log.WithField("product_id", evt.ProductID).Warn("click buffer full, dropping event")
		return false
	}
}

// Close stops accepting events, drains the buffer and waits for the workers.
func (w *Workers) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.events)
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Workers) run(id int) {
	defer w.wg.Done()
	for evt := range w.events {
		click := &models.ClickTracking{
			ProductID: evt.ProductID,
			IPAddress: evt.IPAddress,
			UserAgent: evt.UserAgent,
			ClickedAt: evt.At,
		}
		if err := w.recorder.CreateClick(click); err != nil {
			w.log.WithError(err).WithFields(logrus.Fields{
				"worker":     id,
				"product_id": evt.ProductID,
			}).Error("failed to record click")
		}
	}
}
