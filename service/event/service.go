package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/hamal/service/messaging"
	"github.com/viant/hamal/service/messaging/memory"
)

// VendorMemory is the in-process queue vendor
const VendorMemory messaging.Vendor = "memory"

type Service struct {
	publisher         *Publisher[any]
	listener          *Listener[any]
	typedPublishers   map[reflect.Type]any
	typedListener     map[reflect.Type]any
	mux               *sync.RWMutex
	queueVendor       messaging.Vendor
	memNewQueueConfig func(name string) memory.Config
}

// SetListener sets a handler receiving events of every type
func (s *Service) SetListener(handler func(*Event[any])) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener[any](s.publisher, handler)
	s.listener.Start()
}

// Close stops all listeners
func (s *Service) Close() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
		s.listener = nil
	}
	for key, listener := range s.typedListener {
		if stopper, ok := listener.(interface{ Stop() }); ok {
			stopper.Stop()
		}
		delete(s.typedListener, key)
	}
}

func New(queueVendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		queueVendor:     queueVendor,
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]any),
		mux:             &sync.RWMutex{},
	}
	for _, opt := range opts {
		opt(ret)
	}

	switch queueVendor {
	case VendorMemory:
		if ret.memNewQueueConfig == nil {
			ret.memNewQueueConfig = func(string) memory.Config { return memory.DefaultConfig() }
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", queueVendor)
	}

	queue, err := QueueOf[Event[any]](ret, "any")
	if err != nil {
		return nil, err
	}
	ret.publisher = NewPublisher[any](queue)
	return ret, nil
}

func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.queueVendor {
	case VendorMemory:
		return memory.NewQueue[T](s.memNewQueueConfig(name)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.queueVendor)
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf sets a handler receiving events of type T
func SetListenerOf[T any](s *Service, handler func(*Event[T])) error {
	key := keyOf[T]()
	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.typedListener[key]; ok {
		ret.(*Listener[T]).Stop()
	}
	listener := NewListener[T](publisher, handler)
	s.typedListener[key] = listener
	listener.Start()
	return nil
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T]), nil
	}
	publisher := NewPublisher[T](queue)
	publisher.anyPublish = s.publisher
	s.typedPublishers[key] = publisher
	return publisher, nil
}
