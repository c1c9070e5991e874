package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

const (
	// ErrCodeValidation marks a payload that will never succeed; it is not retried.
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodePanic      = "ERR_PANIC"
)

// HookError classifies handler and hook failures by Code.
type HookError struct {
	Code string
	Err  error
}

func (e *HookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *HookError) Unwrap() error { return e.Err }

// Invalid wraps err as a non-retryable validation failure.
func Invalid(err error) error {
	return &HookError{Code: ErrCodeValidation, Err: err}
}

// ConsumerHook runs around every handler attempt. An error from BeforeHandle
// skips the handler and counts as a failed attempt.
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, km kafka.Message) (context.Context, error)
	AfterHandle(ctx context.Context, km kafka.Message, err error)
}

// NoopHook does nothing.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, _ kafka.Message) (context.Context, error) {
	return ctx, nil
}

func (NoopHook) AfterHandle(context.Context, kafka.Message, error) {}

// HookFuncs adapts plain functions; nil functions are no-ops.
type HookFuncs struct {
	Before func(context.Context, kafka.Message) (context.Context, error)
	After  func(context.Context, kafka.Message, error)
}

func (h HookFuncs) BeforeHandle(ctx context.Context, km kafka.Message) (context.Context, error) {
	if h.Before == nil {
		return ctx, nil
	}
	return h.Before(ctx, km)
}

func (h HookFuncs) AfterHandle(ctx context.Context, km kafka.Message, err error) {
	if h.After != nil {
		h.After(ctx, km, err)
	}
}

// HookChain runs BeforeHandle in order and AfterHandle in reverse.
// A panicking hook is reported as an ERR_PANIC HookError instead of crashing the worker.
type HookChain []ConsumerHook

func (c HookChain) BeforeHandle(ctx context.Context, km kafka.Message) (context.Context, error) {
	for _, h := range c {
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = &HookError{Code: ErrCodePanic, Err: fmt.Errorf("hook panic: %v", r)}
				}
			}()
			ctx, err = h.BeforeHandle(ctx, km)
		}()
		if err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

func (c HookChain) AfterHandle(ctx context.Context, km kafka.Message, err error) {
	for i := len(c) - 1; i >= 0; i-- {
		func() {
			defer func() { _ = recover() }()
			c[i].AfterHandle(ctx, km, err)
		}()
	}
}

type ctxKey string

const ctxTraceID ctxKey = "kafka_trace_id"

// TraceHeader carries a correlation id across producer and consumer.
const TraceHeader = "trace_id"

// TraceIDHook copies the trace_id header into the handler context.
func TraceIDHook() ConsumerHook {
	return HookFuncs{
		Before: func(ctx context.Context, km kafka.Message) (context.Context, error) {
			for _, h := range km.Headers {
				if h.Key == TraceHeader && len(h.Value) > 0 {
					return context.WithValue(ctx, ctxTraceID, string(h.Value)), nil
				}
			}
			return ctx, nil
		},
	}
}

// TraceID returns the trace id set by TraceIDHook, or "".
func TraceID(ctx context.Context) string {
	s, _ := ctx.Value(ctxTraceID).(string)
	return s
}
