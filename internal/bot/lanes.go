package bot

import (
	"context"
	"log/slog"
	"sync"

	"gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

// Lanes runs jobs in per-key FIFO order. Each key with pending work has one goroutine draining it,
// so different keys run concurrently while one key's jobs never overlap or reorder.
type Lanes struct {
	log    *slog.Logger
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
	closed bool
}

func NewLanes(log *slog.Logger) *Lanes {
	return &Lanes{
		log:    log,
		queues: make(map[int64][]func()),
	}
}

// Submit queues job behind the key's earlier jobs. It returns false once the lanes are closed.
func (l *Lanes) Submit(key int64, job func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}

	queue, active := l.queues[key]
	l.queues[key] = append(queue, job)
	if !active {
		l.wg.Add(1)
		go l.drain(key)
	}

	return true
}

func (l *Lanes) drain(key int64) {
	defer l.wg.Done()

	for {
		l.mu.Lock()
		queue := l.queues[key]
		if len(queue) == 0 {
			delete(l.queues, key)
			l.mu.Unlock()
			return
		}
		job := queue[0]
		l.queues[key] = queue[1:]
		l.mu.Unlock()

		job()
	}
}

// Active counts keys with queued or running work.
func (l *Lanes) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queues)
}

// Shutdown refuses new jobs and waits for queued ones until ctx is done.
func (l *Lanes) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Middleware hands each update to its sender's lane. Panics inside a handler are recovered there.
func (l *Lanes) Middleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	guarded := middleware.Recover(func(err error) {
		l.log.Error("Recovered from panic in handler", "error", err)
	})(next)

	return func(ctx telebot.Context) error {
		sender := ctx.Sender()
		if sender == nil {
			return guarded(ctx)
		}

		accepted := l.Submit(sender.ID, func() {
			if err := guarded(ctx); err != nil {
				l.log.Error("Handler failed", "user", sender.ID, "error", err)
			}
		})
		if !accepted {
			l.log.Warn("Dropping update during shutdown", "user", sender.ID)
		}
		return nil
	}
}
