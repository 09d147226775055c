// Package jobs defines the background tasks shared by the API and worker
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/briangreenhill/polisci/internal/navigation"
)

const TaskPrefetchEntity = "prefetch:entity"

// Queue names and their worker priorities
const (
	QueuePrefetch = "prefetch"
	QueueDefault  = "default"
)

// Queues maps queue names to priority for asynq.Config
var Queues = map[string]int{
	QueuePrefetch: 10,
	QueueDefault:  5,
}

type PrefetchPayload struct {
	Kind    navigation.Kind `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Decode validates the payload and returns its navigation payload
func (p PrefetchPayload) Decode() (navigation.Payload, error) {
	if _, ok := navigation.ParseKind(string(p.Kind)); !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", navigation.ErrBadPayload, p.Kind)
	}
	return navigation.DecodePayload(p.Kind, p.Payload)
}

// NewPrefetchTask builds a task that warms the cache for one entity
func NewPrefetchTask(kind navigation.Kind, p navigation.Payload) (*asynq.Task, error) {
	if !navigation.Accepts(kind, p) {
		return nil, fmt.Errorf("%w: %s", navigation.ErrBadPayload, kind)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal prefetch payload: %w", err)
	}
	body, err := json.Marshal(PrefetchPayload{Kind: kind, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal prefetch task: %w", err)
	}
	return asynq.NewTask(TaskPrefetchEntity, body), nil
}

// Enqueuer is the part of asynq.Client the API needs
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueuePrefetch queues a prefetch task. The same entity is queued at most
// once per hour; a duplicate returns asynq.ErrDuplicateTask.
func EnqueuePrefetch(ctx context.Context, e Enqueuer, kind navigation.Kind, p navigation.Payload) (*asynq.TaskInfo, error) {
	task, err := NewPrefetchTask(kind, p)
	if err != nil {
		return nil, err
	}
	return e.EnqueueContext(ctx, task,
		asynq.Queue(QueuePrefetch),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Unique(time.Hour),
	)
}
