package toast

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"pipeline_board_backend/platform/logger"
)

func TestPublishDeliversPerOrganization(t *testing.T) {
	svc := New(logger.New("test"))
	defer svc.Close()

	orgA := uuid.New()
	orgB := uuid.New()
	clA := &client{orgID: orgA, toasts: make(chan Toast, 4)}
	clB := &client{orgID: orgB, toasts: make(chan Toast, 4)}
	svc.addClient(clA)
	svc.addClient(clB)

	svc.Success(orgA, "Lead moved")

	select {
	case toast := <-clA.toasts:
		if toast.Level != LevelSuccess || toast.Message != "Lead moved" {
			t.Fatalf("toast = %+v", toast)
		}
		if toast.DurationMs != DefaultDurationMs {
			t.Fatalf("durationMs = %d, want %d", toast.DurationMs, DefaultDurationMs)
		}
	default:
		t.Fatal("org A stream got nothing")
	}

	select {
	case toast := <-clB.toasts:
		t.Fatalf("org B stream leaked a toast: %+v", toast)
	default:
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	svc := New(logger.New("test"))
	defer svc.Close()

	orgID := uuid.New()
	cl := &client{orgID: orgID, toasts: make(chan Toast, 1)}
	svc.addClient(cl)

	svc.Info(orgID, "first")
	svc.Info(orgID, "second")

	if got := len(cl.toasts); got != 1 {
		t.Fatalf("buffered = %d, overflow must drop instead of block", got)
	}
}

func TestPublishConcurrentWithDisconnectDoesNotPanic(t *testing.T) {
	svc := New(logger.New("test"))
	orgID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		cl := &client{orgID: orgID, toasts: make(chan Toast, 1)}
		svc.addClient(cl)

		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.Error(orgID, "write failed")
		}()
		go func(cl *client) {
			defer wg.Done()
			svc.removeClient(cl)
		}(cl)
	}
	wg.Wait()

	// Shutdown after churn must not find a stream closed twice.
	svc.Close()
	svc.Warning(orgID, "after close")
}
