package syncqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestImmediateQueueDeliversNameAndPayload(t *testing.T) {
	type job struct {
		name    string
		payload map[string]any
	}
	got := make(chan job, 1)
	q := NewImmediateQueue(func(ctx context.Context, name string, payload map[string]any) {
		got <- job{name: name, payload: payload}
	})

	require.NoError(t, q.Enqueue(context.Background(), "sync_faqs", map[string]any{"faq_ids": []int64{1, 2}}))

	select {
	case j := <-got:
		require.Equal(t, "sync_faqs", j.name)
		require.Equal(t, []int64{1, 2}, j.payload["faq_ids"])
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestImmediateQueueOutlivesCallerCancellation(t *testing.T) {
	handlerErr := make(chan error, 1)
	q := NewImmediateQueue(func(ctx context.Context, name string, payload map[string]any) {
		// Give the caller time to cancel before checking the context.
		time.Sleep(20 * time.Millisecond)
		handlerErr <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Enqueue(ctx, "sync_faqs", map[string]any{}))
	cancel()

	select {
	case err := <-handlerErr:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestImmediateQueueToleratesNilHandlerAndPayload(t *testing.T) {
	q := NewImmediateQueue(nil)
	require.NoError(t, q.Enqueue(context.Background(), "sync_faqs", nil))

	got := make(chan map[string]any, 1)
	q.SetHandler(func(ctx context.Context, name string, payload map[string]any) {
		got <- payload
	})
	require.NoError(t, q.Enqueue(context.Background(), "sync_faqs", "not a map"))

	select {
	case payload := <-got:
		require.NotNil(t, payload)
		require.Empty(t, payload)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}
