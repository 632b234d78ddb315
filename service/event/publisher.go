package event

import (
	"context"
	"sync/atomic"

	"github.com/viant/hamal/internal/clock"
	"github.com/viant/hamal/service/messaging"
)

// Publisher publishes typed events; events are only queued once a listener subscribed
type Publisher[T any] struct {
	queue      messaging.Queue[Event[T]]
	anyPublish *Publisher[any]
	subscribed atomic.Bool
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

// Subscribed returns true if a listener consumes this publisher
func (p *Publisher[T]) Subscribed() bool {
	return p.subscribed.Load()
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	if p.anyPublish != nil {
		if err := p.anyPublish.Publish(ctx, &Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		}); err != nil {
			return err
		}
	}
	if !p.Subscribed() {
		return nil
	}
	return p.queue.Publish(ctx, event)
}

func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
