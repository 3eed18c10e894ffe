package worker

import (
	"context"
	"sync"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	kafkago "github.com/segmentio/kafka-go"
)

type mockWarmupService struct {
	renderFn func(ctx context.Context, raw model.RawArgs) (string, error)
}

func (m *mockWarmupService) Render(ctx context.Context, raw model.RawArgs) (string, error) {
	return m.renderFn(ctx, raw)
}

//----------------------------------

type mockCommitter struct {
	mu        sync.Mutex
	err       error
	committed []kafkago.Message
}

func (m *mockCommitter) Commit(_ context.Context, msg kafkago.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msg)
	return m.err
}

func (m *mockCommitter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}
