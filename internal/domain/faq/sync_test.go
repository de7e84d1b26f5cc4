package faq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubIndex struct {
	mu       sync.Mutex
	saves    []Document
	batches  [][]Document
	deletes  []string
	wiped    bool
	saveErr  error
	batchErr func(batch []Document) error
}

func (s *stubIndex) Save(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, doc)
	return nil
}

func (s *stubIndex) SaveAll(_ context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchErr != nil {
		if err := s.batchErr(docs); err != nil {
			return err
		}
	}
	s.batches = append(s.batches, docs)
	return nil
}

func (s *stubIndex) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	return nil
}

func (s *stubIndex) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wiped = true
	return nil
}

func (s *stubIndex) SearchByTags(_ context.Context, _ []string, _ *bool, _ PageRequest) ([]Document, error) {
	return nil, nil
}

func (s *stubIndex) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

type stubEmbedder struct {
	err   error
	delay time.Duration
}

func (s *stubEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type stubQueue struct {
	mu       sync.Mutex
	names    []string
	payloads []map[string]any
	err      error
}

func (s *stubQueue) Enqueue(_ context.Context, name string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.names = append(s.names, name)
	typed, _ := payload.(map[string]any)
	s.payloads = append(s.payloads, typed)
	return nil
}

func newTestSyncer(index *stubIndex, embed Embedder, queue JobQueue) *Syncer {
	return NewSyncer(SyncConfig{BatchSize: 10, Timeout: time.Second, AsyncThreshold: 50, Dimensions: 3}, index, embed, queue, testLogger())
}

func sampleFAQs(n int) []FAQ {
	faqs := make([]FAQ, n)
	for i := range faqs {
		faqs[i] = FAQ{ID: int64(i + 1), Question: "q", Answer: "a", Active: true}
	}
	return faqs
}

func TestBuildContentFullTemplate(t *testing.T) {
	got := buildContent(FAQ{
		Question:    "How do I pair the glasses?",
		Answer:      "Hold the button for three seconds.",
		Instruction: "Answer briefly.",
		Tags:        []string{"hardware", "setup"},
	})
	want := "Question: How do I pair the glasses?\n" +
		"Answer: Hold the button for three seconds.\n" +
		"Instruction: Answer briefly.\n" +
		"Tags: hardware, setup\n"
	require.Equal(t, want, got)
}

func TestBuildContentOmitsEmptySections(t *testing.T) {
	got := buildContent(FAQ{Question: "Q", Answer: "A"})
	require.Equal(t, "Question: Q\nAnswer: A\n", got)
}

func TestSyncOneSavesDocument(t *testing.T) {
	index := &stubIndex{}
	s := newTestSyncer(index, &stubEmbedder{}, nil)

	s.SyncOne(context.Background(), FAQ{ID: 7, Question: "Q", Answer: "A", Active: true})

	require.Len(t, index.saves, 1)
	require.Equal(t, "7", index.saves[0].ID)
	require.Equal(t, "Question: Q\nAnswer: A\n", index.saves[0].Content)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, index.saves[0].Embedding)
}

func TestSyncOneSkipsUnsavedFAQ(t *testing.T) {
	index := &stubIndex{}
	s := newTestSyncer(index, &stubEmbedder{}, nil)

	s.SyncOne(context.Background(), FAQ{Question: "Q", Answer: "A"})

	require.Empty(t, index.saves)
}

func TestSyncOneSwallowsIndexFailure(t *testing.T) {
	index := &stubIndex{saveErr: errors.New("down")}
	s := newTestSyncer(index, &stubEmbedder{}, nil)

	s.SyncOne(context.Background(), FAQ{ID: 1, Question: "Q", Answer: "A"})

	require.Empty(t, index.saves)
}

func TestSyncBatchChunks(t *testing.T) {
	index := &stubIndex{}
	s := newTestSyncer(index, &stubEmbedder{}, nil)

	s.SyncBatch(context.Background(), sampleFAQs(25))

	require.Equal(t, 3, index.batchCount())
	require.Len(t, index.batches[0], 10)
	require.Len(t, index.batches[1], 10)
	require.Len(t, index.batches[2], 5)
}

func TestSyncBatchUsesZeroVectorOnEmbedFailure(t *testing.T) {
	index := &stubIndex{}
	s := newTestSyncer(index, &stubEmbedder{err: errors.New("api down")}, nil)

	s.SyncBatch(context.Background(), sampleFAQs(2))

	require.Equal(t, 1, index.batchCount())
	for _, doc := range index.batches[0] {
		require.Equal(t, []float32{0, 0, 0}, doc.Embedding)
	}
}

func TestSyncBatchSkipsFailedChunk(t *testing.T) {
	index := &stubIndex{}
	calls := 0
	index.batchErr = func([]Document) error {
		calls++
		if calls == 1 {
			return errors.New("first chunk fails")
		}
		return nil
	}
	s := newTestSyncer(index, &stubEmbedder{}, nil)

	s.SyncBatch(context.Background(), sampleFAQs(15))

	require.Equal(t, 1, index.batchCount())
	require.Len(t, index.batches[0], 5)
}

func TestSyncBatchWithTimeoutAbandonsSlowWork(t *testing.T) {
	index := &stubIndex{}
	slow := &stubEmbedder{delay: 200 * time.Millisecond}
	s := NewSyncer(SyncConfig{BatchSize: 1, Timeout: 50 * time.Millisecond, AsyncThreshold: 50, Dimensions: 3}, index, slow, nil, testLogger())

	start := time.Now()
	s.SyncBatchWithTimeout(sampleFAQs(20))

	require.Less(t, time.Since(start), 2*time.Second)
	require.Less(t, index.batchCount(), 20)
}

func TestDispatchEnqueuesLargeBatches(t *testing.T) {
	index := &stubIndex{}
	queue := &stubQueue{}
	s := newTestSyncer(index, &stubEmbedder{}, queue)

	s.Dispatch(context.Background(), sampleFAQs(51))

	require.Equal(t, []string{JobSyncFAQs}, queue.names)
	ids, ok := queue.payloads[0]["faq_ids"].([]int64)
	require.True(t, ok)
	require.Len(t, ids, 51)
	require.Zero(t, index.batchCount())
}

func TestDispatchSyncsSmallBatchesInline(t *testing.T) {
	index := &stubIndex{}
	queue := &stubQueue{}
	s := newTestSyncer(index, &stubEmbedder{}, queue)

	s.Dispatch(context.Background(), sampleFAQs(50))

	require.Empty(t, queue.names)
	require.Equal(t, 5, index.batchCount())
}

func TestDispatchFallsBackWhenEnqueueFails(t *testing.T) {
	index := &stubIndex{}
	queue := &stubQueue{err: errors.New("queue down")}
	s := newTestSyncer(index, &stubEmbedder{}, queue)

	s.Dispatch(context.Background(), sampleFAQs(51))

	require.Equal(t, 6, index.batchCount())
}

func TestDeleteOneAndWipe(t *testing.T) {
	index := &stubIndex{}
	s := newTestSyncer(index, &stubEmbedder{}, nil)

	s.DeleteOne(context.Background(), 9)
	s.Wipe(context.Background())

	require.Equal(t, []string{"9"}, index.deletes)
	require.True(t, index.wiped)
}

func TestSyncerNoopWithoutIndex(t *testing.T) {
	s := NewSyncer(SyncConfig{}, nil, nil, nil, testLogger())
	require.False(t, s.Available())
	s.SyncOne(context.Background(), FAQ{ID: 1})
	s.SyncBatch(context.Background(), sampleFAQs(3))
	s.Dispatch(context.Background(), sampleFAQs(3))
}
