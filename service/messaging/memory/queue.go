package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/hamal/internal/clock"
	"github.com/viant/hamal/internal/idgen"
	"github.com/viant/hamal/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	MaxRetries  int
	QueueBuffer int
	// Blocking makes Publish wait for free buffer space, otherwise messaging.ErrQueueFull is returned
	Blocking bool
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		QueueBuffer: 100,
	}
}

// Message implements messaging.Message for in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// ID returns message ID
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack returns the message to the queue until MaxRetries is exceeded, then it is dropped
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	if m.processed {
		m.mu.Unlock()
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	retry := m.retryCount + 1
	m.mu.Unlock()

	if retry > m.queue.config.MaxRetries {
		m.queue.dropped(m)
		return nil
	}
	return m.queue.enqueue(context.Background(), &Message[T]{
		id:         m.id,
		payload:    m.payload,
		queue:      m.queue,
		retryCount: retry,
		createdAt:  clock.Now(),
	})
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
	mu       sync.Mutex
	drops    int
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return q.enqueue(ctx, &Message[T]{
		id:        idgen.New(),
		payload:   *t,
		queue:     q,
		createdAt: clock.Now(),
	})
}

func (q *Queue[T]) enqueue(ctx context.Context, msg *Message[T]) error {
	if q.config.Blocking {
		select {
		case q.messages <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case q.messages <- msg:
		return nil
	default:
		q.dropped(msg)
		return messaging.ErrQueueFull
	}
}

func (q *Queue[T]) dropped(*Message[T]) {
	q.mu.Lock()
	q.drops++
	q.mu.Unlock()
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// Dropped returns the number of messages rejected on a full queue or after exhausted retries
func (q *Queue[T]) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.drops
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
