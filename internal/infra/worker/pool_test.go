package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPool_SingleWorkerPreservesOrder(t *testing.T) {
	p := NewPool(1, nil)
	p.Start(context.Background())
	defer p.Stop()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		if err := p.Submit(context.Background(), func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 50 {
		t.Fatalf("expected 50 tasks run, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken at %d: got %d", i, v)
		}
	}
}

func TestPool_FlushWaitsForRunningTask(t *testing.T) {
	p := NewPool(1, nil)
	p.Start(context.Background())
	defer p.Stop()

	var finished bool
	var mu sync.Mutex
	_ = p.Submit(context.Background(), func(context.Context) error {
		time.Sleep(30 * time.Millisecond)
		mu.Lock()
		finished = true
		mu.Unlock()
		return nil
	})
	if err := p.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !finished {
		t.Fatal("flush returned before the task finished")
	}
}

func TestPool_FlushOnIdlePoolReturns(t *testing.T) {
	p := NewPool(2, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Flush(ctx); err != nil {
		t.Fatalf("flush idle: %v", err)
	}
}

func TestPool_FlushHonoursContext(t *testing.T) {
	p := NewPool(1, nil)
	p.Start(context.Background())
	release := make(chan struct{})
	_ = p.Submit(context.Background(), func(context.Context) error { <-release; return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(release)
	p.Stop()
}

func TestPool_TaskErrorsAndPanicsDoNotStopWorker(t *testing.T) {
	p := NewPool(1, nil)
	p.Start(context.Background())
	defer p.Stop()

	_ = p.Submit(context.Background(), func(context.Context) error { return errors.New("boom") })
	_ = p.Submit(context.Background(), func(context.Context) error { panic("kaboom") })
	ran := make(chan struct{})
	_ = p.Submit(context.Background(), func(context.Context) error { close(ran); return nil })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker stopped after a failing task")
	}
}

func TestPool_StopDrainsAndRejects(t *testing.T) {
	p := NewPool(1, nil)
	p.Start(context.Background())

	var mu sync.Mutex
	count := 0
	for i := 0; i < 3; i++ {
		_ = p.Submit(context.Background(), func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			count++
			mu.Unlock()
			return nil
		})
	}
	p.Stop()

	mu.Lock()
	if count != 3 {
		t.Fatalf("expected queued tasks drained, ran %d", count)
	}
	mu.Unlock()

	if err := p.Submit(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	p.Stop()
}

func TestPool_NilTask(t *testing.T) {
	p := NewPool(1, nil)
	if err := p.Submit(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil task")
	}
}
