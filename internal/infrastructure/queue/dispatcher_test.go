package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghola/conversation-api/internal/core/ports"
)

type recordingService struct {
	mu     sync.Mutex
	events []ports.MessageEventInput
	done   chan struct{}
	want   int
}

func newRecordingService(want int) *recordingService {
	return &recordingService{done: make(chan struct{}), want: want}
}

func (s *recordingService) Process(_ context.Context, event ports.MessageEventInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) == s.want {
		close(s.done)
	}
	return nil
}

func (s *recordingService) wait(t *testing.T) []ports.MessageEventInput {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for events")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.MessageEventInput(nil), s.events...)
}

func TestDispatcher_ProcessesAllEvents(t *testing.T) {
	service := newRecordingService(10)
	dispatcher := NewDispatcher(4, service, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)

	for i := 0; i < 10; i++ {
		dispatcher.Enqueue(ports.MessageEventInput{
			ConversationID: fmt.Sprintf("conv%d", i%3),
			MessageID:      fmt.Sprintf("m%d", i),
		})
	}

	events := service.wait(t)
	if len(events) != 10 {
		t.Fatalf("expected 10 events, got %d", len(events))
	}
}

func TestDispatcher_SameConversationKeepsOrder(t *testing.T) {
	const n = 50
	service := newRecordingService(n)
	dispatcher := NewDispatcher(4, service, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)

	for i := 0; i < n; i++ {
		dispatcher.Enqueue(ports.MessageEventInput{
			ConversationID: "conv1",
			MessageID:      fmt.Sprintf("m%03d", i),
		})
	}

	events := service.wait(t)
	for i, event := range events {
		if event.MessageID != fmt.Sprintf("m%03d", i) {
			t.Fatalf("event %d out of order: got %s", i, event.MessageID)
		}
	}
}

func TestDispatcher_StableSharding(t *testing.T) {
	dispatcher := NewDispatcher(4, newRecordingService(1), zerolog.Nop())

	first := dispatcher.shardIndex("conv1")
	for i := 0; i < 100; i++ {
		if got := dispatcher.shardIndex("conv1"); got != first {
			t.Fatalf("shard index not stable: %d != %d", got, first)
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	dispatcher := NewDispatcher(0, newRecordingService(1), zerolog.Nop())
	if len(dispatcher.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(dispatcher.workers))
	}
}
