package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	applogger "BizPulse/pkg/logger"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer fans messages from one reader per topic out to a worker pool.
// Offsets are committed after success, or after the message was dead-lettered.
type Consumer struct {
	cfg      *ConsumerConfig
	logger   *applogger.Logger
	handlers map[string]MessageHandler
	hook     ConsumerHook
	dlq      MessageWriter

	mu        sync.Mutex
	partLocks map[string]*sync.Mutex
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(logger *applogger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "bizpulse-engine",
		StartOffset: kafka.FirstOffset,
		WorkerCount: 1,
		BufferSize:  16,
		RetryMax:    3,
		BackoffMin:  100 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 && cfg.NewReader == nil {
		return nil, fmt.Errorf("brokers are required")
	}
	if logger == nil {
		logger = applogger.Nop()
	}

	c := &Consumer{
		cfg:       cfg,
		logger:    logger,
		handlers:  make(map[string]MessageHandler),
		hook:      NoopHook{},
		dlq:       cfg.DLQWriter,
		partLocks: make(map[string]*sync.Mutex),
	}
	if c.dlq == nil && cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}
	initMetrics()
	return c, nil
}

// RegisterHandler registers a message handler for its topic. A second handler for the same topic is ignored.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.logger.Warn("kafka handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// WithConsumerHook sets a hook implementation for lifecycle events.
func (c *Consumer) WithConsumerHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

type fetched struct {
	reader MessageReader
	msg    kafka.Message
}

// Run consumes until ctx is cancelled. Messages still buffered at that point
// are left uncommitted and will be redelivered.
func (c *Consumer) Run(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return errors.New("kafka consumer: no handlers registered")
	}

	readers := make(map[string]MessageReader, len(c.handlers))
	for topic := range c.handlers {
		readers[topic] = c.newReader(topic)
	}
	defer c.close(readers)

	queue := make(chan fetched, c.cfg.BufferSize)
	g, gctx := errgroup.WithContext(ctx)

	var fetchers sync.WaitGroup
	for topic, r := range readers {
		fetchers.Add(1)
		g.Go(func() error {
			defer fetchers.Done()
			c.fetch(gctx, topic, r, queue)
			return nil
		})
	}
	go func() {
		fetchers.Wait()
		close(queue)
	}()

	for i := 0; i < c.cfg.WorkerCount; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case f, ok := <-queue:
					if !ok {
						return nil
					}
					consumerQueueDepth.Set(float64(len(queue)))
					c.process(gctx, f.reader, f.msg)
				}
			}
		})
	}

	c.logger.Info("kafka consumer started",
		applogger.Int("topics", len(readers)),
		applogger.Int("workers", c.cfg.WorkerCount),
	)
	err := g.Wait()
	c.logger.Info("kafka consumer stopped")
	return err
}

func (c *Consumer) newReader(topic string) MessageReader {
	if c.cfg.NewReader != nil {
		return c.cfg.NewReader(topic)
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.cfg.Brokers,
		Topic:       topic,
		GroupID:     c.cfg.GroupID,
		StartOffset: c.cfg.StartOffset,
		MinBytes:    c.cfg.MinBytes,
		MaxBytes:    c.cfg.MaxBytes,
	})
}

func (c *Consumer) fetch(ctx context.Context, topic string, r MessageReader, queue chan<- fetched) {
	attempt := 0
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			attempt++
			c.logger.Warn("kafka fetch failed", applogger.String("topic", topic), applogger.Error(err))
			if !sleep(ctx, backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)) {
				return
			}
			continue
		}
		attempt = 0
		select {
		case queue <- fetched{reader: r, msg: msg}:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) process(ctx context.Context, r MessageReader, km kafka.Message) {
	handler, ok := c.handlers[km.Topic]
	if !ok {
		return
	}
	start := time.Now()
	defer func() {
		consumerHandleLatency.WithLabelValues(km.Topic).Observe(time.Since(start).Seconds())
	}()

	// One message per partition at a time keeps partition order.
	pl := c.partitionLock(km.Topic, km.Partition)
	pl.Lock()
	defer pl.Unlock()

	err := c.handleWithRetry(ctx, handler, km)
	if err != nil && ctx.Err() != nil {
		return
	}

	result := "ok"
	if err != nil {
		c.logger.Error("kafka message failed",
			applogger.String("topic", km.Topic),
			applogger.Int("partition", km.Partition),
			applogger.Int64("offset", km.Offset),
			applogger.Error(err),
		)
		result = "dropped"
		if c.dlq != nil {
			if dlqErr := c.deadLetter(ctx, km, err); dlqErr != nil {
				c.logger.Error("kafka dlq write failed", applogger.String("topic", c.cfg.DLQTopic), applogger.Error(dlqErr))
				consumerMsgsTotal.WithLabelValues(km.Topic, "dlq_failed").Inc()
				return
			}
			result = "dlq"
		}
	}
	consumerMsgsTotal.WithLabelValues(km.Topic, result).Inc()

	if err := c.commitWithRetry(ctx, r, km, 3); err != nil {
		c.logger.Error("kafka commit failed", applogger.String("topic", km.Topic), applogger.Error(err))
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, km kafka.Message) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = c.handleOnce(ctx, handler, km)
		if err == nil || attempt > c.cfg.RetryMax || !retryable(err) {
			return err
		}
		consumerRetriesTotal.WithLabelValues(km.Topic).Inc()
		if !sleep(ctx, backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)) {
			return err
		}
	}
}

func (c *Consumer) handleOnce(ctx context.Context, handler MessageHandler, km kafka.Message) (err error) {
	hctx, err := c.hook.BeforeHandle(ctx, km)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = &HookError{Code: ErrCodePanic, Err: fmt.Errorf("handler panic: %v", r)}
		}
		c.hook.AfterHandle(hctx, km, err)
	}()
	return handler.Handle(hctx, km.Value)
}

func retryable(err error) bool {
	var he *HookError
	if errors.As(err, &he) {
		return he.Code != ErrCodeValidation
	}
	return true
}

func (c *Consumer) deadLetter(ctx context.Context, km kafka.Message, cause error) error {
	headers := append([]kafka.Header{
		{Key: "source_topic", Value: []byte(km.Topic)},
		{Key: "error", Value: []byte(cause.Error())},
	}, km.Headers...)
	return c.dlq.WriteMessages(ctx, kafka.Message{
		Topic:   c.cfg.DLQTopic,
		Key:     km.Key,
		Value:   km.Value,
		Time:    time.Now().UTC(),
		Headers: headers,
	})
}

func (c *Consumer) commitWithRetry(ctx context.Context, r MessageReader, km kafka.Message, max int) error {
	var err error
	for attempt := 1; attempt <= max; attempt++ {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		err = r.CommitMessages(cctx, km)
		cancel()
		if err == nil {
			return nil
		}
		if !sleep(ctx, backoffWithJitter(50*time.Millisecond, 500*time.Millisecond, attempt)) {
			break
		}
	}
	return err
}

func (c *Consumer) partitionLock(topic string, partition int) *sync.Mutex {
	key := fmt.Sprintf("%s/%d", topic, partition)
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.partLocks[key]
	if !ok {
		l = &sync.Mutex{}
		c.partLocks[key] = l
	}
	return l
}

func (c *Consumer) close(readers map[string]MessageReader) {
	for topic, r := range readers {
		if err := r.Close(); err != nil {
			c.logger.Warn("kafka reader close failed", applogger.String("topic", topic), applogger.Error(err))
		}
	}
	if c.dlq != nil {
		if err := c.dlq.Close(); err != nil {
			c.logger.Warn("kafka dlq close failed", applogger.Error(err))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	if attempt > 16 {
		attempt = 16
	}
	exp := min * time.Duration(1<<uint(attempt-1))
	if exp > max {
		exp = max
	}
	// up to 50% jitter
	if half := int64(exp) / 2; half > 0 {
		exp -= time.Duration(rand.Int63n(half))
	}
	return exp
}
