package mocks

import (
	"context"
	"os"
	"sync"
)

// MockPublisher implements artifact.Publisher for testing.
//
//nolint:govet // fieldalignment: mock struct layout optimized for readability
type MockPublisher struct {
	// PublishFunc is called when Publish is invoked. Defaults to success.
	PublishFunc func(ctx context.Context, path string) error

	// PublishCalls records the path of every Publish call.
	PublishCalls []string

	// Snapshots holds the file contents seen at each Publish call.
	Snapshots []string

	mu sync.Mutex
}

// NewMockPublisher creates a publisher that always succeeds.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishFunc: func(context.Context, string) error { return nil },
	}
}

// Publish implements artifact.Publisher.
func (p *MockPublisher) Publish(ctx context.Context, path string) error {
	data, _ := os.ReadFile(path)
	p.mu.Lock()
	p.PublishCalls = append(p.PublishCalls, path)
	p.Snapshots = append(p.Snapshots, string(data))
	fn := p.PublishFunc
	p.mu.Unlock()
	return fn(ctx, path)
}

// FailWith configures Publish to return err.
func (p *MockPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PublishFunc = func(context.Context, string) error { return err }
}

// CallCount returns how many times Publish ran.
func (p *MockPublisher) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.PublishCalls)
}
