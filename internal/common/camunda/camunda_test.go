package camunda

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"solar-roi-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var fastRetry = &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(status.Error(codes.Unavailable, "gateway down")))
	assert.True(t, IsTransient(fmt.Errorf("topology: %w", status.Error(codes.DeadlineExceeded, "slow"))))
	assert.False(t, IsTransient(status.Error(codes.PermissionDenied, "no")))
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.False(t, IsTransient(errors.New("invalid gateway address")))
}

func TestBackoff(t *testing.T) {
	cfg := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, cfg.backoff(1))
	assert.Equal(t, 2*time.Second, cfg.backoff(2))
	assert.Equal(t, 4*time.Second, cfg.backoff(3))
	assert.Equal(t, 5*time.Second, cfg.backoff(4))
	assert.Equal(t, 5*time.Second, cfg.backoff(80))
}

func TestRetry(t *testing.T) {
	log := logger.NewTestLogger(t)

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fastRetry, log, "op", func(context.Context) error {
			calls++
			if calls < 3 {
				return status.Error(codes.Unavailable, "not yet")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fastRetry, log, "op", func(context.Context) error {
			calls++
			return status.Error(codes.Unavailable, "down")
		})
		assert.ErrorContains(t, err, "op failed")
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fastRetry, log, "op", func(context.Context) error {
			calls++
			return status.Error(codes.InvalidArgument, "bad")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

		err := Retry(ctx, slow, log, "op", func(context.Context) error {
			return status.Error(codes.Unavailable, "down")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type stubHandler struct {
	taskType string
	enabled  bool
}

func (s stubHandler) Handle(worker.JobClient, entities.Job) {}
func (s stubHandler) GetTaskType() string                   { return s.taskType }
func (s stubHandler) IsEnabled() bool                       { return s.enabled }

func TestWorkersRegister(t *testing.T) {
	w := NewWorkers(nil, "solar-roi-workers", logger.NewTestLogger(t))

	require.NoError(t, w.Register(Subscription{Handler: stubHandler{"solar.roi.calculate", true}, MaxJobsActive: 5, Timeout: time.Second}))
	require.NoError(t, w.Register(Subscription{Handler: stubHandler{"solar.session.reset", false}, MaxJobsActive: 5, Timeout: time.Second}))

	err := w.Register(Subscription{Handler: stubHandler{"solar.roi.calculate", true}, MaxJobsActive: 5, Timeout: time.Second})
	assert.ErrorContains(t, err, "registered twice")

	err = w.Register(Subscription{Handler: stubHandler{"solar.generation.lookup", true}, MaxJobsActive: 0, Timeout: time.Second})
	assert.ErrorContains(t, err, "max jobs active")

	err = w.Register(Subscription{Handler: stubHandler{"solar.generation.lookup", true}, MaxJobsActive: 1})
	assert.ErrorContains(t, err, "timeout")

	assert.Equal(t, []string{"solar.roi.calculate"}, w.TaskTypes())

	// nothing opened, nothing to close
	w.Close()
}
