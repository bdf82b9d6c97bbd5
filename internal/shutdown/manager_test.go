package shutdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sobel-bench/internal/logger"
)

type recorder struct {
	mu    *sync.Mutex
	order *[]string
	name  string
}

func (r recorder) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.order = append(*r.order, r.name)
}

type stuck struct{}

func (stuck) Shutdown() { select {} }

func TestShutdownReverseOrderOnce(t *testing.T) {
	m := NewManager(context.Background(), logger.NoOp{})
	var mu sync.Mutex
	var order []string
	m.Register(recorder{&mu, &order, "codec"})
	m.Register(recorder{&mu, &order, "report"})

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"report", "codec"}, order)
	assert.ErrorIs(t, m.Context().Err(), context.Canceled)
	select {
	case <-m.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestShutdownDoesNotWaitForeverOnStuckComponent(t *testing.T) {
	m := NewManager(context.Background(), logger.NoOp{})
	m.timeout = 20 * time.Millisecond
	m.Register(stuck{})

	finished := make(chan struct{})
	go func() {
		m.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown blocked on stuck component")
	}
}

func TestParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	m := NewManager(parent, logger.NoOp{})
	m.Listen()
	defer m.Shutdown()

	cancel()
	<-m.Context().Done()
	assert.ErrorIs(t, m.Context().Err(), context.Canceled)
}
