package courier

import (
	"context"
	"sync"

	"github.com/krew-solutions/courier-go/courier/transport"
)

// captureTransport records every send and publish for assertions. Failure
// injection is per address for sends and global for publishes.
type captureTransport struct {
	mu         sync.Mutex
	sent       map[string][]*transport.Envelope
	published  []*transport.Envelope
	sendErr    map[string]error
	publishErr error
}

func newCaptureTransport() *captureTransport {
	return &captureTransport{
		sent:    make(map[string][]*transport.Envelope),
		sendErr: make(map[string]error),
	}
}

func (c *captureTransport) Send(_ context.Context, address string, env *transport.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sendErr[address]; err != nil {
		return err
	}
	c.sent[address] = append(c.sent[address], env)
	return nil
}

func (c *captureTransport) Publish(_ context.Context, env *transport.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, env)
	return nil
}

func (c *captureTransport) sentTo(address string) []*transport.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*transport.Envelope(nil), c.sent[address]...)
}

func (c *captureTransport) publishedOfType(messageType string) []*transport.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*transport.Envelope
	for _, env := range c.published {
		if env.MessageType == messageType {
			out = append(out, env)
		}
	}
	return out
}

func (c *captureTransport) publishedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

func (c *captureTransport) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, envs := range c.sent {
		n += len(envs)
	}
	return n
}
