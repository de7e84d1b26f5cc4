package syncqueue

import (
	"context"

	"github.com/xreal/faqbase/internal/domain/faq"
)

// HandlerQueue supports setting a handler for job delivery.
type HandlerQueue interface {
	faq.JobQueue
	SetHandler(handler Handler)
}

// Handler executes jobs synchronously or in the background.
type Handler func(ctx context.Context, name string, payload map[string]any)

// ImmediateQueue calls the handler immediately on enqueue. It is the
// fallback when no Valkey instance is configured.
type ImmediateQueue struct {
	handler Handler
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// SetHandler replaces the handler used for queued jobs.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.handler = handler
}

// Enqueue invokes the handler asynchronously. The handler context is
// detached from the caller's cancellation so the job survives the end of the
// request that enqueued it.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload any) error {
	typed, ok := payload.(map[string]any)
	if !ok {
		typed = map[string]any{}
	}
	if q.handler == nil {
		return nil
	}
	go q.handler(context.WithoutCancel(ctx), name, typed)
	return nil
}

var _ faq.JobQueue = (*ImmediateQueue)(nil)
var _ HandlerQueue = (*ImmediateQueue)(nil)
