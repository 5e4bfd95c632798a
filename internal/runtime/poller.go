package runtime

import (
	"context"
	"time"

	cmap "github.com/orcaman/concurrent-map"
	log "github.com/sirupsen/logrus"
)

var taskMap cmap.ConcurrentMap

func init() {
	taskMap = cmap.New()
}

var DefaultTickerDuration = time.Second * 2

// PollTask runs a function on a fixed ticker until it is cancelled or its
// deadline expires. Exactly one task may be registered per name; starting
// a task under a name that is already registered cancels the old one, so
// callers can never leak a second polling loop for the same session.
type PollTask struct {
	Ticker   *time.Ticker
	ctx      context.Context
	cancel   context.CancelFunc
	duration time.Duration
	name     string
}

type PollTaskOption func(*PollTask)

func WithInterval(d time.Duration) PollTaskOption {
	return func(t *PollTask) {
		t.duration = d
	}
}

// NewPollTask registers a task under name. ctx carries the wall-clock
// deadline; the returned task owns a derived cancellable context.
func NewPollTask(ctx context.Context, name string, option ...PollTaskOption) *PollTask {
	if old, ok := taskMap.Get(name); ok {
		old.(*PollTask).Cancel()
	}
	t := &PollTask{name: name}
	for _, opt := range option {
		opt(t)
	}
	if t.duration == 0 {
		t.duration = DefaultTickerDuration
	}
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.Ticker = time.NewTicker(t.duration)
	taskMap.Set(name, t)
	return t
}

// Do starts the loop. f runs once per tick, on the task's own goroutine,
// so ticks for one task never overlap. cancelF runs on explicit
// cancellation, deadlineF when the context deadline expires.
func (t *PollTask) Do(f func(), cancelF func(), deadlineF func()) {
	go func() {
		defer t.Ticker.Stop()
		for {
			select {
			case <-t.Ticker.C:
				f()
			case <-t.ctx.Done():
				// a displaced task must not unregister its successor
				taskMap.RemoveCb(t.name, func(key string, v interface{}, exists bool) bool {
					return exists && v == t
				})
				log.Tracef("[PollTask] %s done: %v", t.name, t.ctx.Err())
				if t.ctx.Err() == context.DeadlineExceeded && deadlineF != nil {
					deadlineF()
				}
				if t.ctx.Err() == context.Canceled && cancelF != nil {
					cancelF()
				}
				return
			}
		}
	}()
}

// Cancel stops the task. Safe to call more than once.
func (t *PollTask) Cancel() {
	t.cancel()
}

// Running reports whether a task is registered under name.
func Running(name string) bool {
	_, ok := taskMap.Get(name)
	return ok
}
