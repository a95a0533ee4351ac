package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"backflow_portal_backend/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	first := errors.New("first")
	second := errors.New("second")
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return first }))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return nil }))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return second }))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected both handler errors, got %v", err)
	}
}

func TestPublishSyncRecoversHandlerPanic(t *testing.T) {
	var buf bytes.Buffer
	bus := NewInMemoryBus(logger.NewWithHandler(slog.NewJSONHandler(&buf, nil)))
	var calls atomic.Int32
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { panic("boom") }))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		calls.Add(1)
		return nil
	}))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if err == nil || !strings.Contains(err.Error(), "handler panic: boom") {
		t.Fatalf("expected panic reported as error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected later handler to run, got %d calls", calls.Load())
	}
	if !strings.Contains(buf.String(), `"event":"test.ping"`) {
		t.Fatalf("expected failure logged, got %s", buf.String())
	}
}

func TestPublishSyncWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	if err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: BaseEvent{Timestamp: time.Now()}}); err != nil {
		t.Fatalf("expected nil error without subscribers, got %v", err)
	}
}
