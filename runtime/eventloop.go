package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seoyhaein/localsched"
)

// command is one unit of work the loop applies to its Engine. Modeling
// inbound events as closures rather than a tagged struct avoids a giant
// switch and keeps each collaborator fake's call site next to the Engine
// method it drives.
type command func(*localsched.Engine)

// commandChannel is a mutex-guarded chan command that turns "send on a
// closed channel" and "close twice" from panics into ordinary no-ops,
// specialized to the one payload type EventLoop ever carries — the
// generic wrapper the teacher's own SafeChannel[T] provides isn't needed
// here since nothing else in this package sends anything but a command.
type commandChannel struct {
	ch     chan command
	mu     sync.RWMutex
	closed bool
}

func newCommandChannel(buffer int) *commandChannel {
	return &commandChannel{ch: make(chan command, buffer)}
}

// send enqueues cmd, returning false if the channel is closed or full.
func (c *commandChannel) send(cmd command) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- cmd:
		return true
	default:
		return false
	}
}

// close closes the underlying channel exactly once; a second call is a
// no-op rather than a panic.
func (c *commandChannel) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	close(c.ch)
	c.closed = true
}

// EventLoop is the SUPPLEMENTED single-threaded driver described in
// SPEC_FULL.md: it owns one Engine and applies commands to it one at a
// time, off a buffered channel that any number of goroutine-backed
// collaborator fakes may send into concurrently. This is the same
// single-writer/many-producer shape as dag-go's Dag.RunningStatus channel
// (many nodes send, one WaitTilOver loop receives), generalized so the
// single reader also owns mutable state instead of just observing it.
type EventLoop struct {
	id     string
	engine *localsched.Engine
	cmds   *commandChannel
}

// NewEventLoop constructs a loop around engine with the given inbound
// command buffer size.
func NewEventLoop(engine *localsched.Engine, buffer int) *EventLoop {
	return &EventLoop{
		id:     uuid.NewString(),
		engine: engine,
		cmds:   newCommandChannel(buffer),
	}
}

// Run processes commands until ctx is canceled, ticking fetch_timeout_tick
// (§4.2) on the schedule the Engine's own config requests. It owns the
// single goroutine that is ever allowed to touch the Engine, satisfying
// §5's single-threaded discipline even though many goroutines submit work
// concurrently.
func (l *EventLoop) Run(ctx context.Context) {
	timer := time.NewTimer(l.engine.OnFetchTimeoutTick())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-l.cmds.ch:
			if !ok {
				return
			}
			cmd(l.engine)
		case <-timer.C:
			next := l.engine.OnFetchTimeoutTick()
			timer.Reset(next)
		}
	}
}

// Close stops accepting new commands. Safe to call once Run has returned
// or concurrently with it. Commands already queued in the channel are
// still applied by Run before it returns, unless its context is canceled
// first.
func (l *EventLoop) Close() {
	l.cmds.close()
}

// submit enqueues cmd and blocks until the loop has applied it, giving
// simulation callers (and tests) a deterministic point after which the
// Engine's state reflects the event — real Ray has no such guarantee, but
// a demo/test harness benefits from one.
func (l *EventLoop) submit(cmd command) {
	done := make(chan struct{})
	wrapped := func(e *localsched.Engine) {
		cmd(e)
		close(done)
	}
	for !l.cmds.send(wrapped) {
		l.cmds.mu.RLock()
		closed := l.cmds.closed
		l.cmds.mu.RUnlock()
		if closed {
			return // loop already closed, e.g. a straggling goroutine after shutdown
		}
		time.Sleep(time.Millisecond) // buffer full: retry once the loop has drained some
	}
	<-done
}

// TaskSubmitted delivers on_task_submitted (§4.5).
func (l *EventLoop) TaskSubmitted(spec *localsched.TaskSpec) {
	l.submit(func(e *localsched.Engine) { e.OnTaskSubmitted(spec) })
}

// TaskScheduled delivers on_task_scheduled.
func (l *EventLoop) TaskScheduled(spec *localsched.TaskSpec) {
	l.submit(func(e *localsched.Engine) { e.OnTaskScheduled(spec) })
}

// ActorTaskSubmitted delivers on_actor_task_submitted.
func (l *EventLoop) ActorTaskSubmitted(spec *localsched.TaskSpec) {
	l.submit(func(e *localsched.Engine) { e.OnActorTaskSubmitted(spec) })
}

// ActorTaskScheduled delivers on_actor_task_scheduled.
func (l *EventLoop) ActorTaskScheduled(spec *localsched.TaskSpec) {
	l.submit(func(e *localsched.Engine) { e.OnActorTaskScheduled(spec) })
}

// ActorCreationNotification delivers on_actor_creation_notification.
func (l *EventLoop) ActorCreationNotification(actorID string) {
	l.submit(func(e *localsched.Engine) { e.OnActorCreationNotification(actorID) })
}

// ActorWorkerConnect delivers on_actor_worker_connect.
func (l *EventLoop) ActorWorkerConnect(actorID string, w *localsched.Worker) {
	l.submit(func(e *localsched.Engine) { e.OnActorWorkerConnect(actorID, w) })
}

// ActorWorkerDisconnect delivers on_actor_worker_disconnect.
func (l *EventLoop) ActorWorkerDisconnect(actorID string) {
	l.submit(func(e *localsched.Engine) { e.OnActorWorkerDisconnect(actorID) })
}

// ActorWorkerAvailable delivers on_actor_worker_available.
func (l *EventLoop) ActorWorkerAvailable(actorID string, w *localsched.Worker) {
	l.submit(func(e *localsched.Engine) { e.OnActorWorkerAvailable(actorID, w) })
}

// WorkerAvailable delivers on_worker_available.
func (l *EventLoop) WorkerAvailable(w *localsched.Worker) {
	l.submit(func(e *localsched.Engine) { e.OnWorkerAvailable(w) })
}

// WorkerRemoved delivers on_worker_removed.
func (l *EventLoop) WorkerRemoved(w *localsched.Worker) {
	l.submit(func(e *localsched.Engine) { e.OnWorkerRemoved(w) })
}

// WorkerBlocked delivers on_worker_blocked.
func (l *EventLoop) WorkerBlocked(w *localsched.Worker) {
	l.submit(func(e *localsched.Engine) { e.OnWorkerBlocked(w) })
}

// WorkerUnblocked delivers on_worker_unblocked.
func (l *EventLoop) WorkerUnblocked(w *localsched.Worker) {
	l.submit(func(e *localsched.Engine) { e.OnWorkerUnblocked(w) })
}

// ObjectAvailable delivers object_available.
func (l *EventLoop) ObjectAvailable(objectID string) {
	l.submit(func(e *localsched.Engine) { e.OnObjectAvailable(objectID) })
}

// ObjectRemoved delivers object_removed.
func (l *EventLoop) ObjectRemoved(objectID string) {
	l.submit(func(e *localsched.Engine) { e.OnObjectRemoved(objectID) })
}

// DriverRemoved delivers on_driver_removed.
func (l *EventLoop) DriverRemoved(driverID string) {
	l.submit(func(e *localsched.Engine) { e.OnDriverRemoved(driverID) })
}
