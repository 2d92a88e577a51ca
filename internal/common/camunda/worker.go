// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"sync"
	"time"

	"solar-roi-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every task worker package.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
	GetTaskType() string
	IsEnabled() bool
}

// Subscription describes one job subscription.
type Subscription struct {
	Handler       JobHandler
	MaxJobsActive int
	Timeout       time.Duration
}

// Workers opens and closes the job subscriptions of a worker-manager process.
type Workers struct {
	client zbc.Client
	name   string
	logger logger.Logger

	mu     sync.Mutex
	subs   []Subscription
	opened map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, name string, log logger.Logger) *Workers {
	return &Workers{
		client: client,
		name:   name,
		logger: log,
		opened: make(map[string]worker.JobWorker),
	}
}

// Register adds a subscription. Disabled handlers are skipped; a task type may only
// be registered once.
func (w *Workers) Register(sub Subscription) error {
	taskType := sub.Handler.GetTaskType()
	if sub.MaxJobsActive <= 0 {
		return fmt.Errorf("worker %s: max jobs active must be positive", taskType)
	}
	if sub.Timeout <= 0 {
		return fmt.Errorf("worker %s: timeout must be positive", taskType)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.subs {
		if existing.Handler.GetTaskType() == taskType {
			return fmt.Errorf("worker %s registered twice", taskType)
		}
	}
	if !sub.Handler.IsEnabled() {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}
	w.subs = append(w.subs, sub)
	return nil
}

// TaskTypes lists the enabled task types in registration order.
func (w *Workers) TaskTypes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	types := make([]string, 0, len(w.subs))
	for _, sub := range w.subs {
		types = append(types, sub.Handler.GetTaskType())
	}
	return types
}

// Open starts polling for every registered task type that is not open yet.
func (w *Workers) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, sub := range w.subs {
		taskType := sub.Handler.GetTaskType()
		if _, ok := w.opened[taskType]; ok {
			continue
		}
		w.opened[taskType] = w.client.NewJobWorker().
			JobType(taskType).
			Handler(sub.Handler.Handle).
			Name(w.name).
			MaxJobsActive(sub.MaxJobsActive).
			Timeout(sub.Timeout).
			Open()

		w.logger.Info("worker started", map[string]interface{}{
			"taskType":      taskType,
			"maxJobsActive": sub.MaxJobsActive,
			"timeout":       sub.Timeout.String(),
		})
	}
}

// Close stops polling and waits for in-flight jobs to finish.
func (w *Workers) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for taskType, jw := range w.opened {
		jw.Close()
		jw.AwaitClose()
		w.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
		delete(w.opened, taskType)
	}
}
