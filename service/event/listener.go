package event

import (
	"context"
	"sync"
)

type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop stops consuming and waits for the running handler to return
func (l *Listener[T]) Stop() {
	l.publisher.subscribed.Store(false)
	l.cancel()
	l.wg.Wait()
}

func (l *Listener[T]) Start() {
	l.publisher.subscribed.Store(true)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if l.ctx.Err() != nil {
					return
				}
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
