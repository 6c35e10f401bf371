package runtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dlsniper/debugger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/seoyhaein/localsched"
	"github.com/seoyhaein/localsched/debugonly"
)

// taskMsg is what a simulated worker process's mailbox carries.
type taskMsg struct {
	spec *localsched.TaskSpec
	size int
}

// WorkerProcSim is the SUPPLEMENTED simulated worker-process implementation
// of localsched.WorkerControl and localsched.PendingWorkers. spec.md §6
// treats "start a worker process" as an opaque call the core never looks
// inside; this fake plays the part of that opaque process with a real
// goroutine per worker, grounded on ommit-test/scheduler/actor.go's
// mailbox-channel Actor and dispatcher.go's singleflight-guarded
// getOrCreateActor (collapsing concurrent start_worker calls for the same
// actor into one spawn).
type WorkerProcSim struct {
	loop        *EventLoop
	execDelay   time.Duration
	spawnJitter time.Duration

	sf singleflight.Group

	mu      sync.Mutex
	mailbox map[*localsched.Worker]chan taskMsg

	pending int32 // atomic count of in-flight start_worker calls

	eg *errgroup.Group
}

// NewWorkerProcSim constructs a simulator wired to loop. execDelay models
// how long a simulated task takes to run; spawnJitter models worker
// process startup latency.
func NewWorkerProcSim(loop *EventLoop, execDelay, spawnJitter time.Duration) *WorkerProcSim {
	return &WorkerProcSim{
		loop:        loop,
		execDelay:   execDelay,
		spawnJitter: spawnJitter,
		mailbox:     make(map[*localsched.Worker]chan taskMsg),
		eg:          new(errgroup.Group),
	}
}

// NewWorker spawns a worker process immediately, without going through
// StartWorker's spawn-latency simulation, for seeding a demo's initial
// worker pool. The caller is responsible for delivering the resulting
// worker to the loop (WorkerAvailable or ActorWorkerConnect).
func (s *WorkerProcSim) NewWorker(actorID string) *localsched.Worker {
	return s.spawn(actorID)
}

func (s *WorkerProcSim) spawn(actorID string) *localsched.Worker {
	w := &localsched.Worker{ActorID: actorID}
	mailbox := make(chan taskMsg, 1)

	s.mu.Lock()
	s.mailbox[w] = mailbox
	s.mu.Unlock()

	s.eg.Go(func() error {
		s.runWorker(w, mailbox)
		return nil
	})
	return w
}

// runWorker is the body of one simulated worker process: it executes
// whatever it's assigned, one task at a time, and reports back through the
// loop when done. The mailbox closing (Shutdown) is this goroutine's only
// exit path, mirroring dag-go's "close the channel to end the range loop"
// convention (safechannel.go, dag.go's WaitTilOver).
func (s *WorkerProcSim) runWorker(w *localsched.Worker, mailbox chan taskMsg) {
	debugger.SetLabels(func() []string {
		return []string{"worker-actor", w.ActorID, "worker-kind", "simulated"}
	})
	defer func() {
		if r := recover(); r != nil {
			if debugonly.Enabled() {
				debugonly.BreakHere()
			}
			localsched.Log.WithField("panic", r).Error("workerproc: simulated worker crashed")
		}
	}()

	for msg := range mailbox {
		time.Sleep(s.execDelay)
		_ = msg.size // simulated execution has no output to report beyond "done"
		if w.ActorID == localsched.NilActorID {
			s.loop.WorkerAvailable(w)
		} else {
			s.loop.ActorWorkerAvailable(w.ActorID, w)
		}
	}
}

// StartWorker implements localsched.WorkerControl's start_worker. Multiple
// concurrent requests for the same actor collapse into a single spawn
// (dispatch_tasks may call StartWorker(NilActorID) once per empty tick,
// so plain workers are deliberately never deduplicated — each call means
// "one more worker, please").
func (s *WorkerProcSim) StartWorker(actorID string) {
	atomic.AddInt32(&s.pending, 1)
	key := actorID
	if key == localsched.NilActorID {
		key = uuid.NewString()
	}
	s.eg.Go(func() error {
		defer atomic.AddInt32(&s.pending, -1)
		_, _, _ = s.sf.Do(key, func() (interface{}, error) {
			time.Sleep(s.spawnJitter)
			w := s.spawn(actorID)
			if actorID == localsched.NilActorID {
				s.loop.WorkerAvailable(w)
			} else {
				s.loop.ActorWorkerConnect(actorID, w)
			}
			return w, nil
		})
		return nil
	})
}

// AssignTask implements localsched.WorkerControl's assign_task by handing
// spec to w's mailbox.
func (s *WorkerProcSim) AssignTask(w *localsched.Worker, spec *localsched.TaskSpec, size int) {
	s.mu.Lock()
	mailbox, ok := s.mailbox[w]
	s.mu.Unlock()
	if !ok {
		localsched.Log.Error("workerproc: AssignTask for a worker this simulator never spawned")
		return
	}
	select {
	case mailbox <- taskMsg{spec: spec, size: size}:
	default:
		localsched.Log.Error("workerproc: worker mailbox full, dropping assignment")
	}
}

// HasPending implements localsched.PendingWorkers.
func (s *WorkerProcSim) HasPending() bool {
	return atomic.LoadInt32(&s.pending) > 0
}

// Shutdown closes every worker's mailbox and waits for the underlying
// goroutines to exit, fanning in via errgroup the same way dag-go's
// preFlight fans in per-parent-channel goroutines with errgroup.WithContext.
func (s *WorkerProcSim) Shutdown() error {
	s.mu.Lock()
	for _, mb := range s.mailbox {
		close(mb)
	}
	s.mu.Unlock()
	return s.eg.Wait()
}

var (
	_ localsched.WorkerControl  = (*WorkerProcSim)(nil)
	_ localsched.PendingWorkers = (*WorkerProcSim)(nil)
)
