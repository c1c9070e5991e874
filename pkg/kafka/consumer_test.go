package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		m := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type scriptedHandler struct {
	topic string
	mu    sync.Mutex
	calls int
	fn    func(call int, b []byte) error
}

func (h *scriptedHandler) Topic() string { return h.topic }

func (h *scriptedHandler) Handle(_ context.Context, b []byte) error {
	h.mu.Lock()
	h.calls++
	call := h.calls
	h.mu.Unlock()
	return h.fn(call, b)
}

func (h *scriptedHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func runConsumer(t *testing.T, c *Consumer, until func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, until, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumer_RetriesThenCommits(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := &fakeReader{pending: []kafka.Message{{Topic: "cmds", Value: []byte(`{"command":"generate"}`)}}}
	h := &scriptedHandler{topic: "cmds", fn: func(call int, _ []byte) error {
		if call < 3 {
			return errors.New("store busy")
		}
		return nil
	}}

	c, err := NewConsumer(nil,
		WithReaderFactory(func(string) MessageReader { return reader }),
		WithConsumerRetry(3, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)
	c.RegisterHandler(h)

	runConsumer(t, c, func() bool { return reader.commits() == 1 })
	assert.Equal(t, 3, h.callCount())
	assert.True(t, reader.closed)
}

func TestConsumer_InvalidPayloadGoesToDLQWithoutRetry(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := &fakeReader{pending: []kafka.Message{{Topic: "cmds", Value: []byte(`not json`)}}}
	dlq := &fakeWriter{}
	h := &scriptedHandler{topic: "cmds", fn: func(int, []byte) error {
		return Invalid(errors.New("decode failed"))
	}}

	c, err := NewConsumer(nil,
		WithReaderFactory(func(string) MessageReader { return reader }),
		WithConsumerRetry(5, time.Millisecond, time.Millisecond),
		WithConsumerDLQ("cmds.dlq"),
		WithDLQWriter(dlq),
	)
	require.NoError(t, err)
	c.RegisterHandler(h)

	runConsumer(t, c, func() bool { return reader.commits() == 1 })
	assert.Equal(t, 1, h.callCount())

	dlq.mu.Lock()
	defer dlq.mu.Unlock()
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "cmds.dlq", dlq.msgs[0].Topic)
	assert.Equal(t, []byte(`not json`), dlq.msgs[0].Value)
	assert.Equal(t, "source_topic", dlq.msgs[0].Headers[0].Key)
}

func TestConsumer_HandlerPanicIsContained(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := &fakeReader{pending: []kafka.Message{
		{Topic: "cmds", Value: []byte(`a`)},
		{Topic: "cmds", Value: []byte(`b`)},
	}}
	var seen []string
	var mu sync.Mutex
	h := &scriptedHandler{topic: "cmds", fn: func(_ int, b []byte) error {
		if string(b) == "a" {
			panic("boom")
		}
		mu.Lock()
		seen = append(seen, string(b))
		mu.Unlock()
		return nil
	}}

	c, err := NewConsumer(nil,
		WithReaderFactory(func(string) MessageReader { return reader }),
		WithConsumerRetry(0, time.Millisecond, time.Millisecond),
	)
	require.NoError(t, err)
	c.RegisterHandler(h)

	runConsumer(t, c, func() bool { return reader.commits() == 2 })
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"b"}, seen)
}

func TestConsumer_TraceIDHook(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := &fakeReader{pending: []kafka.Message{{
		Topic:   "cmds",
		Value:   []byte(`x`),
		Headers: []kafka.Header{{Key: TraceHeader, Value: []byte("trace-42")}},
	}}}
	var got string
	var mu sync.Mutex
	after := 0

	c, err := NewConsumer(nil, WithReaderFactory(func(string) MessageReader { return reader }))
	require.NoError(t, err)
	c.WithConsumerHook(HookChain{
		TraceIDHook(),
		HookFuncs{After: func(ctx context.Context, _ kafka.Message, _ error) {
			mu.Lock()
			got = TraceID(ctx)
			after++
			mu.Unlock()
		}},
	})
	c.RegisterHandler(&scriptedHandler{topic: "cmds", fn: func(int, []byte) error { return nil }})

	runConsumer(t, c, func() bool { return reader.commits() == 1 })
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "trace-42", got)
	assert.Equal(t, 1, after)
}

func TestConsumer_RequiresHandlers(t *testing.T) {
	c, err := NewConsumer(nil, WithConsumerBrokers([]string{"localhost:9092"}))
	require.NoError(t, err)
	assert.Error(t, c.Run(context.Background()))

	_, err = NewConsumer(nil)
	assert.Error(t, err)
}

func TestProducer_PublishBatch(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w)

	require.NoError(t, p.PublishBatch(context.Background(), "events", nil))
	require.NoError(t, p.PublishBatch(context.Background(), "events", []Message{
		{Key: []byte("REVENUE"), Value: map[string]int{"n": 1}, Headers: map[string]string{TraceHeader: "t1"}},
		{Key: []byte("CASH_FLOW"), Value: "raw"},
	}))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "events", w.msgs[0].Topic)
	assert.JSONEq(t, `{"n":1}`, string(w.msgs[0].Value))
	assert.Equal(t, []kafka.Header{{Key: TraceHeader, Value: []byte("t1")}}, w.msgs[0].Headers)
	assert.Equal(t, []byte("raw"), w.msgs[1].Value)
}

func TestBackoffWithJitter(t *testing.T) {
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 80*time.Millisecond)
	}
}
