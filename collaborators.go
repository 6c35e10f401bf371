package localsched

// The interfaces in this file are the "small, clearly-defined interface"
// §1 promises for the external collaborators: the object store client,
// the cluster-wide task table, worker-process control, and the resource
// vectors owned by the embedding scheduler state. The core only ever
// calls these; it never blocks on them (§5). Modeled on the teacher's
// Runnable interface (RunE/CreateImage/Execute) as the shape for "opaque
// external behavior behind a small interface" and its RunnerResolver for
// late-bound, swappable implementations (see runner.go grounding notes
// in DESIGN.md).

// TaskStatus mirrors the task table's status enum (§6).
type TaskStatus int

const (
	TaskStatusWaiting TaskStatus = iota
	TaskStatusScheduled
	TaskStatusQueued
)

// TaskTableEntry is what the core hands to the task table.
type TaskTableEntry struct {
	Spec       *TaskSpec
	Size       int
	Status     TaskStatus
	AssigneeID string // NilAssignee when unassigned
}

// ObjectStoreClient is the plasma-like collaborator §4.2 drives.
type ObjectStoreClient interface {
	IsConnected() bool
	Fetch(objectIDs []string)
	Reconstruct(objectID string)
}

// TaskTable is the cluster-wide task table collaborator §4.4/§4.5 emit
// updates to.
type TaskTable interface {
	AddTask(entry TaskTableEntry)
	UpdateTask(entry TaskTableEntry)
}

// WorkerControl is the worker-process-lifecycle collaborator. StartWorker
// takes NilActorID for a general worker and an actor ID otherwise; the
// spawn mechanics themselves are explicitly out of scope (§1 Non-goals)
// so this is a fire-and-forget request, not a call that returns a worker.
type WorkerControl interface {
	AssignTask(w *Worker, spec *TaskSpec, size int)
	StartWorker(actorID string)
}

// ResourceAccessor exposes the dynamic resource vector the embedding
// scheduler state owns (§5 "mutated by the embedding scheduler state...
// the core reads it within handlers"). Release/Reacquire are the
// SUPPLEMENTED companions to on_worker_blocked/on_worker_unblocked (see
// SPEC_FULL.md) modeled on the original Ray source's
// handle_task_blocked/handle_task_unblocked resource bookkeeping.
type ResourceAccessor interface {
	Static(r ResourceIndex) float64
	Dynamic(r ResourceIndex) float64
	// Release credits back the resources a blocked worker's task had
	// reserved, making them available to other tasks while it waits.
	Release(resources [ResourceIndexMax]float64)
	// Reacquire debits the resources back out when the worker unblocks.
	Reacquire(resources [ResourceIndexMax]float64)
}

// ActorMapping answers "which local scheduler is actor X assigned to",
// backing §4.4/§4.5's mapped-to-us checks.
type ActorMapping interface {
	// Lookup returns the local-scheduler ID an actor is assigned to, and
	// whether the mapping is known at all.
	Lookup(actorID string) (localSchedulerID string, known bool)
}

// PendingWorkers reports whether a StartWorker request is already in
// flight, standing in for §4.5 dispatch_tasks's "no child worker
// processes are pending registration" check on config.child_pids.
type PendingWorkers interface {
	HasPending() bool
}
