package poller_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/domain/dto"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/poller"
)

type countingPoll struct {
	calls   atomic.Int32
	running atomic.Int32
	overlap atomic.Bool
	fail    bool
}

func (c *countingPoll) PollQuotesPeriodically(ctx context.Context) (*dto.PollResult, error) {
	if c.running.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.running.Add(-1)
	c.calls.Add(1)
	time.Sleep(5 * time.Millisecond)
	if c.fail {
		return nil, errors.New("xero unavailable")
	}
	return &dto.PollResult{Listed: 2}, nil
}

func TestQuotePoller_Run(t *testing.T) {
	tests := []struct {
		name string
		fail bool
	}{
		{name: "successful passes"},
		{name: "failing passes keep polling", fail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poll := &countingPoll{fail: tt.fail}
			p := poller.NewQuotePoller(poll, 10*time.Millisecond, zap.NewNop())

			ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				p.Run(ctx)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("poller did not stop")
			}
			assert.GreaterOrEqual(t, poll.calls.Load(), int32(2))
			assert.False(t, poll.overlap.Load())
		})
	}
}

func TestQuotePoller_RunsImmediately(t *testing.T) {
	poll := &countingPoll{}
	p := poller.NewQuotePoller(poll, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return poll.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(1), poll.calls.Load())
}
