package localsched

// LocalActorInfo is §3's per-actor bookkeeping record.
type LocalActorInfo struct {
	ActorID     string
	taskCounter int64 // number of tasks already executed
	queue       *actorQueue
	worker      *Worker
	workerAvail bool
}

// ActorRegistry implements §4.4. It owns the actor-ID-keyed map, the
// per-actor task queues, and the cached-submitted-actor-tasks spillover
// list, and performs the routing decisions §4.5 assigns to
// on_actor_task_submitted/on_actor_task_scheduled since those decisions
// need exactly the state this component already owns (actor_mapping,
// this scheduler's own ID, the task table). Grounded on
// ommit-test/scheduler/dispatcher.go's getOrCreateActor/singleflight
// idea (collapse concurrent creates into one) generalized to
// ensureActor's idempotent create-or-bind.
type ActorRegistry struct {
	infos  map[string]*LocalActorInfo
	cached []*TaskSpec // cached_submitted_actor_tasks, append-only

	mapping ActorMapping
	selfID  string
	workers WorkerControl
	table   TaskTable
}

// NewActorRegistry wires an ActorRegistry to its collaborators.
func NewActorRegistry(mapping ActorMapping, selfID string, workers WorkerControl, table TaskTable) *ActorRegistry {
	return &ActorRegistry{
		infos:   make(map[string]*LocalActorInfo),
		mapping: mapping,
		selfID:  selfID,
		workers: workers,
		table:   table,
	}
}

// ensureActor idempotently creates an actor entry, optionally binding a
// freshly-connected worker (§4.4 ensure_actor).
func (r *ActorRegistry) ensureActor(actorID string, worker *Worker) *LocalActorInfo {
	info, ok := r.infos[actorID]
	if !ok {
		info = &LocalActorInfo{ActorID: actorID, queue: newActorQueue()}
		r.infos[actorID] = info
	}
	if worker != nil {
		info.worker = worker
		info.workerAvail = true
	}
	return info
}

// RemoveActor frees all queued tasks and deletes the entry (§4.4
// remove_actor).
func (r *ActorRegistry) RemoveActor(actorID string) {
	delete(r.infos, actorID)
}

// EnqueueActorTask implements §4.4 enqueue_actor_task.
func (r *ActorRegistry) EnqueueActorTask(spec *TaskSpec, fromGlobal bool) {
	info := r.ensureActor(spec.ActorID, nil)
	assertf(spec.ActorCounter >= info.taskCounter,
		"EnqueueActorTask: actor %s task_counter regression: got %d, have %d",
		spec.ActorID, spec.ActorCounter, info.taskCounter)
	info.queue.insertOrdered(spec)

	entry := TaskTableEntry{Spec: spec, Size: specSize(spec), Status: TaskStatusScheduled, AssigneeID: r.selfID}
	if fromGlobal {
		r.table.UpdateTask(entry)
	} else {
		r.table.AddTask(entry)
	}
}

// DispatchActor implements §4.4 dispatch_actor. Returns true iff it
// dispatched.
func (r *ActorRegistry) DispatchActor(actorID string) bool {
	info, ok := r.infos[actorID]
	if !ok {
		return false
	}
	if localID, known := r.mapping.Lookup(actorID); known {
		assertf(localID == r.selfID, "DispatchActor: actor %s is not assigned to this scheduler", actorID)
	}
	if info.queue.len() == 0 {
		return false
	}
	front := info.queue.front()
	assertf(front.ActorCounter >= info.taskCounter,
		"DispatchActor: actor %s counter went backwards (front=%d, have=%d)",
		actorID, front.ActorCounter, info.taskCounter)
	if front.ActorCounter != info.taskCounter {
		return false
	}
	if !info.workerAvail {
		return false
	}
	info.taskCounter++
	r.workers.AssignTask(info.worker, front, specSize(front))
	info.workerAvail = false
	info.queue.popFront()
	return true
}

// OnActorWorkerConnect implements §4.4 on_actor_worker_connect.
func (r *ActorRegistry) OnActorWorkerConnect(actorID string, w *Worker) {
	r.ensureActor(actorID, w)
	r.DispatchActor(actorID)
}

// OnActorWorkerDisconnect implements §4.4 on_actor_worker_disconnect.
func (r *ActorRegistry) OnActorWorkerDisconnect(actorID string) {
	r.RemoveActor(actorID)
}

// OnActorWorkerAvailable implements §4.4 on_actor_worker_available.
func (r *ActorRegistry) OnActorWorkerAvailable(actorID string, w *Worker) {
	info, ok := r.infos[actorID]
	assertf(ok, "OnActorWorkerAvailable: unknown actor %s", actorID)
	assertf(info.worker == w, "OnActorWorkerAvailable: worker mismatch for actor %s", actorID)
	assertf(!info.workerAvail, "OnActorWorkerAvailable: worker for actor %s was already available", actorID)
	info.workerAvail = true
	r.DispatchActor(actorID)
}

// OnActorTaskSubmitted implements the actor-routing half of §4.5
// on_actor_task_submitted.
func (r *ActorRegistry) OnActorTaskSubmitted(spec *TaskSpec) {
	localID, known := r.mapping.Lookup(spec.ActorID)
	if !known {
		r.cached = append(r.cached, copyTaskSpec(spec))
		return
	}
	if localID == r.selfID {
		r.EnqueueActorTask(spec, false)
		r.DispatchActor(spec.ActorID)
		return
	}
	r.table.UpdateTask(TaskTableEntry{
		Spec: spec, Size: specSize(spec), Status: TaskStatusScheduled, AssigneeID: localID,
	})
}

// OnActorTaskScheduled implements the actor-routing half of §4.5
// on_actor_task_scheduled. Callers are responsible for the "db present
// and global scheduler exists" precondition (Engine-level Config check).
func (r *ActorRegistry) OnActorTaskScheduled(spec *TaskSpec) {
	if localID, known := r.mapping.Lookup(spec.ActorID); known {
		assertf(localID == r.selfID,
			"OnActorTaskScheduled: actor %s scheduled to us but mapped to %s", spec.ActorID, localID)
	} else {
		informationalf("OnActorTaskScheduled: actor %s scheduled before its creation notification", spec.ActorID)
	}
	r.EnqueueActorTask(spec, true)
	r.DispatchActor(spec.ActorID)
}

// OnActorCreationNotification implements §4.4's cached-actor-task
// spillover replay: snapshot the current length, re-submit exactly those
// entries (each may re-append if still unmapped or mapped elsewhere),
// then drop the first N so freshly appended entries survive untouched.
func (r *ActorRegistry) OnActorCreationNotification(actorID string) {
	n := len(r.cached)
	for i := 0; i < n; i++ {
		r.OnActorTaskSubmitted(r.cached[i])
	}
	remaining := make([]*TaskSpec, len(r.cached)-n)
	copy(remaining, r.cached[n:])
	r.cached = remaining
}
