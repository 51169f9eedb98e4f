package transport

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrBrokerClosed is returned when operations are attempted on a closed broker.
var ErrBrokerClosed = errors.New("transport: broker is closed")

// MemoryConfig configures the in-memory broker.
type MemoryConfig struct {
	// BufferSize is the channel buffer for each subscriber.
	// Default: 100.
	BufferSize int

	// CloseTimeout is the maximum duration to wait for subscriber
	// goroutines during Close. Default: 5 seconds.
	CloseTimeout time.Duration
}

func (c MemoryConfig) defaults() MemoryConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = 100
	}
	if c.CloseTimeout == 0 {
		c.CloseTimeout = 5 * time.Second
	}
	return c
}

type memorySubscriber struct {
	ch chan *Envelope
}

type memoryTopic struct {
	mu          sync.RWMutex
	subscribers map[*memorySubscriber]struct{}
}

func newMemoryTopic() *memoryTopic {
	return &memoryTopic{subscribers: make(map[*memorySubscriber]struct{})}
}

func (t *memoryTopic) add(s *memorySubscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers[s] = struct{}{}
}

func (t *memoryTopic) remove(s *memorySubscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subscribers, s)
}

func (t *memoryTopic) broadcast(env *Envelope) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for s := range t.subscribers {
		select {
		case s.ch <- env:
		default:
			// Drop if the subscriber is not keeping up.
		}
	}
}

// MemoryBroker is an in-process Broker. Addressed sends and type-routed
// publishes share the same topic table: Send targets the address topic,
// Publish targets the message-type topic.
type MemoryBroker struct {
	config MemoryConfig

	mu     sync.RWMutex
	topics map[string]*memoryTopic
	closed bool
	wg     sync.WaitGroup
}

// NewMemoryBroker creates an in-memory broker.
func NewMemoryBroker(config MemoryConfig) *MemoryBroker {
	return &MemoryBroker{
		config: config.defaults(),
		topics: make(map[string]*memoryTopic),
	}
}

func (b *MemoryBroker) topic(name string) *memoryTopic {
	b.mu.RLock()
	t, ok := b.topics[name]
	b.mu.RUnlock()
	if ok {
		return t
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok = b.topics[name]; ok {
		return t
	}
	t = newMemoryTopic()
	b.topics[name] = t
	return t
}

// Send delivers the envelope to subscribers of the address topic.
func (b *MemoryBroker) Send(ctx context.Context, address string, env *Envelope) error {
	return b.deliver(ctx, address, env)
}

// Publish delivers the envelope to subscribers of its message-type topic.
func (b *MemoryBroker) Publish(ctx context.Context, env *Envelope) error {
	return b.deliver(ctx, env.MessageType, env)
}

func (b *MemoryBroker) deliver(ctx context.Context, topic string, env *Envelope) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrBrokerClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.topic(topic).broadcast(env)
	return nil
}

// Receive returns a channel emitting envelopes for the given topic.
// The topic is an address for Send traffic or a message type for
// Publish traffic.
func (b *MemoryBroker) Receive(ctx context.Context, topic string) <-chan *Envelope {
	out := make(chan *Envelope)

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		close(out)
		return out
	}
	b.mu.RUnlock()

	t := b.topic(topic)
	s := &memorySubscriber{ch: make(chan *Envelope, b.config.BufferSize)}
	t.add(s)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(out)
		defer t.remove(s)

		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-s.ch:
				if !ok {
					return
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Close marks the broker closed and waits for subscriber goroutines.
// Subscribers keep draining until their contexts are canceled.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(b.config.CloseTimeout):
		return nil
	}
}
