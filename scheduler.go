package localsched

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Engine is the Scheduling Engine of §4.5: the event handlers that glue
// the Task Queue Store, Object Dependency Tracker, Worker Pool and Actor
// Registry together. Grounded on dag-go/dag.go's central Dag struct
// wiring Nodes, a RunningStatus channel and options together — Engine
// plays the same "one struct owns everything, methods drive it" role for
// this domain.
type Engine struct {
	cfg Config

	queue   *queueStore
	objects *ObjectTracker
	workers *WorkerPool
	actors  *ActorRegistry

	resources     ResourceAccessor
	table         TaskTable
	workerControl WorkerControl
	pending       PendingWorkers
}

// NewEngine wires an Engine to its external collaborators (§6).
func NewEngine(
	cfg Config,
	objectStore ObjectStoreClient,
	table TaskTable,
	workerControl WorkerControl,
	resources ResourceAccessor,
	mapping ActorMapping,
	pending PendingWorkers,
) *Engine {
	e := &Engine{
		cfg:           cfg,
		queue:         newQueueStore(),
		workers:       NewWorkerPool(),
		resources:     resources,
		table:         table,
		workerControl: workerControl,
		pending:       pending,
	}
	e.objects = NewObjectTracker(objectStore, e.queue, e.dispatchTasks)
	e.actors = NewActorRegistry(mapping, cfg.DBClientID, workerControl, table)
	return e
}

func (e *Engine) resourceConstraintsSatisfied(spec *TaskSpec) bool {
	for r := ResourceIndex(0); r < ResourceIndexMax; r++ {
		req := spec.RequiredResources[r]
		if req > e.resources.Static(r) || req > e.resources.Dynamic(r) {
			return false
		}
	}
	return true
}

// queueLocally implements the "locally queue" step shared by
// on_task_submitted's branch 3 and on_task_scheduled: dispatch queue if
// canRun, otherwise waiting queue with dependencies registered.
func (e *Engine) queueLocally(spec *TaskSpec, viaUpdate bool) {
	var c Cursor
	if e.objects.canRun(spec) {
		c = e.queue.enqueueDispatch(spec)
	} else {
		c = e.queue.enqueueWaiting(spec)
		e.objects.registerAll(c, true)
	}
	entry := TaskTableEntry{
		Spec: c.Spec(), Size: specSize(spec),
		Status: TaskStatusQueued, AssigneeID: e.cfg.DBClientID,
	}
	if viaUpdate {
		e.table.UpdateTask(entry)
	} else {
		e.table.AddTask(entry)
	}
}

// OnTaskSubmitted implements §4.5 on_task_submitted.
func (e *Engine) OnTaskSubmitted(spec *TaskSpec) {
	switch {
	case e.resourceConstraintsSatisfied(spec) && e.workers.AvailableCount() > 0 && e.objects.canRun(spec):
		// Fast path: dispatch queue only, no task-table emission — spec.md
		// §4.5 step 1 does not call for one here.
		Log.WithFields(logrus.Fields{
			"event": "on_task_submitted", "branch": "fast_dispatch",
			"task_id": spec.TaskID, "driver_id": spec.DriverID,
		}).Debug("worker available and resources satisfied, dispatching immediately")
		e.queue.enqueueDispatch(spec)
	case e.cfg.GlobalSchedulerExists:
		Log.WithFields(logrus.Fields{
			"event": "on_task_submitted", "branch": "give_to_global_scheduler",
			"task_id": spec.TaskID, "driver_id": spec.DriverID,
		}).Debug("handing task off to the global scheduler")
		e.table.AddTask(TaskTableEntry{
			Spec: spec, Size: specSize(spec), Status: TaskStatusWaiting, AssigneeID: NilAssignee,
		})
	default:
		Log.WithFields(logrus.Fields{
			"event": "on_task_submitted", "branch": "queue_locally",
			"task_id": spec.TaskID, "driver_id": spec.DriverID,
		}).Debug("no global scheduler, queuing locally")
		e.queueLocally(spec, false)
	}
	e.dispatchTasks()
}

// OnTaskScheduled implements §4.5 on_task_scheduled.
func (e *Engine) OnTaskScheduled(spec *TaskSpec) {
	Log.WithFields(logrus.Fields{
		"event": "on_task_scheduled",
		"task_id": spec.TaskID, "driver_id": spec.DriverID,
	}).Debug("queuing task assigned by the global scheduler")
	e.queueLocally(spec, true)
	e.dispatchTasks()
}

// OnActorTaskSubmitted implements §4.5 on_actor_task_submitted.
func (e *Engine) OnActorTaskSubmitted(spec *TaskSpec) {
	e.actors.OnActorTaskSubmitted(spec)
}

// OnActorTaskScheduled implements §4.5 on_actor_task_scheduled.
func (e *Engine) OnActorTaskScheduled(spec *TaskSpec) {
	assertf(e.cfg.DBClientID != "", "OnActorTaskScheduled: no db client configured")
	assertf(e.cfg.GlobalSchedulerExists, "OnActorTaskScheduled: no global scheduler configured")
	e.actors.OnActorTaskScheduled(spec)
}

// OnActorCreationNotification implements §4.5 on_actor_creation_notification.
func (e *Engine) OnActorCreationNotification(actorID string) {
	e.actors.OnActorCreationNotification(actorID)
}

// OnActorWorkerConnect implements the connect leg of §4.4's actor worker
// lifecycle, exposed at the Engine level alongside the other actor
// handlers.
func (e *Engine) OnActorWorkerConnect(actorID string, w *Worker) {
	e.actors.OnActorWorkerConnect(actorID, w)
}

// OnActorWorkerDisconnect implements the disconnect leg.
func (e *Engine) OnActorWorkerDisconnect(actorID string) {
	e.actors.OnActorWorkerDisconnect(actorID)
}

// OnActorWorkerAvailable implements the available leg.
func (e *Engine) OnActorWorkerAvailable(actorID string, w *Worker) {
	e.actors.OnActorWorkerAvailable(actorID, w)
}

// OnWorkerAvailable implements §4.5 on_worker_available.
func (e *Engine) OnWorkerAvailable(w *Worker) {
	e.workers.RemoveIfExecuting(w)
	e.workers.AddAvailable(w)
	e.dispatchTasks()
}

// OnWorkerRemoved implements §4.5 on_worker_removed.
func (e *Engine) OnWorkerRemoved(w *Worker) {
	e.workers.Remove(w)
}

// OnWorkerBlocked implements §4.5 on_worker_blocked, including the
// SUPPLEMENTED resource-release companion (see SPEC_FULL.md).
func (e *Engine) OnWorkerBlocked(w *Worker) {
	e.workers.MarkBlocked(w)
	e.resources.Release(w.Reserved)
	e.dispatchTasks()
}

// OnWorkerUnblocked implements §4.5 on_worker_unblocked, including the
// SUPPLEMENTED resource-reacquire companion.
func (e *Engine) OnWorkerUnblocked(w *Worker) {
	e.workers.MarkUnblocked(w)
	e.resources.Reacquire(w.Reserved)
}

// OnObjectAvailable implements §4.5 object_available.
func (e *Engine) OnObjectAvailable(objectID string) {
	e.objects.onObjectAvailable(objectID)
}

// OnObjectRemoved implements §4.5 object_removed.
func (e *Engine) OnObjectRemoved(objectID string) {
	e.objects.onObjectRemoved(objectID)
}

// OnFetchTimeoutTick implements §4.2 fetch_timeout_tick, returning the
// delay before the next tick.
func (e *Engine) OnFetchTimeoutTick() time.Duration {
	e.objects.fetchTimeoutTick()
	return e.cfg.FetchTimeout
}

// OnDriverRemoved implements §4.5 on_driver_removed. Step ordering matters:
// remote-object back-references must be scrubbed before the queues they
// point into are erased.
func (e *Engine) OnDriverRemoved(driverID string) {
	e.objects.scrubDriver(driverID) // step 1

	var toErase []Cursor
	e.queue.forEachWaiting(func(c Cursor) {
		if c.Spec().DriverID == driverID {
			toErase = append(toErase, c)
		}
	})
	for _, c := range toErase {
		e.queue.erase(c) // step 2
	}

	toErase = toErase[:0]
	e.queue.forEachDispatch(func(c Cursor) {
		if c.Spec().DriverID == driverID {
			toErase = append(toErase, c)
		}
	})
	for _, c := range toErase {
		e.queue.erase(c) // step 3
	}

	// Step 4: actor cleanup for this driver is deliberately deferred, per
	// spec.md §9 and the original source's own unresolved TODO. See
	// DESIGN.md's Open Question decisions.
}

// dispatchTasks implements the central loop of §4.5. It snapshots the
// dispatch queue's cursors up front: container/list's stable-cursor
// guarantee means removing an earlier entry never invalidates a later
// one, so the snapshot stays valid across the loop's own erases.
func (e *Engine) dispatchTasks() {
	var cursors []Cursor
	e.queue.forEachDispatch(func(c Cursor) { cursors = append(cursors, c) })

	for _, c := range cursors {
		if !c.Valid() {
			continue
		}
		spec := c.Spec()

		if e.workers.AvailableCount() == 0 {
			if !e.pending.HasPending() {
				Log.WithFields(logrus.Fields{
					"event": "dispatch_tasks", "branch": "start_worker",
					"task_id": spec.TaskID,
				}).Debug("no available workers and none pending, starting one")
				e.workerControl.StartWorker(NilActorID)
			}
			return
		}

		if allResourcesExhausted(e.resources) {
			Log.WithFields(logrus.Fields{
				"event": "dispatch_tasks", "branch": "resources_exhausted",
				"task_id": spec.TaskID,
			}).Debug("all dynamic resources exhausted, stopping this pass")
			return
		}

		if !fitsInDynamic(spec, e.resources) {
			Log.WithFields(logrus.Fields{
				"event": "dispatch_tasks", "branch": "head_of_line_skip",
				"task_id": spec.TaskID,
			}).Debug("task does not fit in remaining dynamic resources, skipping")
			continue // head-of-line skip, intentional (§4.5, §9)
		}

		w := e.workers.AssignFromAvailable()
		w.Reserved = spec.RequiredResources
		Log.WithFields(logrus.Fields{
			"event": "dispatch_tasks", "branch": "assign",
			"task_id": spec.TaskID,
		}).Debug("assigning task to an available worker")
		e.workerControl.AssignTask(w, spec, specSize(spec))
		e.queue.erase(c)
	}
}

func allResourcesExhausted(r ResourceAccessor) bool {
	for i := ResourceIndex(0); i < ResourceIndexMax; i++ {
		if r.Dynamic(i) != 0 {
			return false
		}
	}
	return true
}

func fitsInDynamic(spec *TaskSpec, r ResourceAccessor) bool {
	for i := ResourceIndex(0); i < ResourceIndexMax; i++ {
		if spec.RequiredResources[i] > r.Dynamic(i) {
			return false
		}
	}
	return true
}
