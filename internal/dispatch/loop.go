package dispatch

import (
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lunchtime/internal/common"
)

// Loop is a single goroutine running dispatched functions in FIFO order.
// It plays the role of a UI thread: every result handler runs on it, one at a time.
type Loop struct {
	queue  chan func()
	quit   chan struct{} // closed first by Stop, releases senders blocked on a full queue
	done   chan struct{} // closed once no sender can still enqueue
	exited chan struct{}
	logger arbor.ILogger

	stopOnce sync.Once
	mu       sync.RWMutex
	started  bool
	stopped  bool
}

// NewLoop creates a Loop with the given queue capacity. Dispatch blocks
// while the queue is full.
func NewLoop(queueSize int, logger arbor.ILogger) *Loop {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Loop{
		queue:  make(chan func(), queueSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		logger: logger,
	}
}

// Start runs the loop on its own goroutine. Starting twice, or after Stop, is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return
	}
	l.started = true
	go l.run()
}

// Stop stops accepting work, runs everything already accepted and waits for
// the loop goroutine to exit. A loop that was never started runs its queue on
// the caller. Stop must not be called from a dispatched function.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)

		// Dispatch holds the read lock across its enqueue, so once the write
		// lock is held the queue contents are final.
		l.mu.Lock()
		l.stopped = true
		close(l.done)
		started := l.started
		l.mu.Unlock()

		if !started {
			l.drain()
		}
	})

	l.mu.RLock()
	started := l.started
	l.mu.RUnlock()

	if started {
		<-l.exited
	}
}

// Dispatch implements Dispatcher. It returns ErrStopped, without running fn,
// once Stop has begun.
func (l *Loop) Dispatch(fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.stopped {
		return l.refuse()
	}

	select {
	case l.queue <- fn:
		return nil
	case <-l.quit:
		return l.refuse()
	}
}

func (l *Loop) refuse() error {
	if l.logger != nil {
		l.logger.Debug().Msg("Dispatch after Stop - dropping work")
	}
	return ErrStopped
}

func (l *Loop) run() {
	defer close(l.exited)
	for {
		select {
		case fn := <-l.queue:
			l.invoke(fn)
		case <-l.done:
			l.drain()
			return
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.queue:
			l.invoke(fn)
		default:
			return
		}
	}
}

// invoke runs fn, recovering a panic so one bad handler cannot kill the loop
func (l *Loop) invoke(fn func()) {
	defer common.Recover(l.logger, "dispatch.Loop")
	fn()
}
