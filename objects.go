package localsched

// objectEntry is the Object Entry of §3: {object_id, dependent_tasks}.
// dependent_tasks is populated only while the entry lives in remoteObjects.
type objectEntry struct {
	objectID       string
	dependentTasks []Cursor
}

// ObjectTracker implements §4.2, the Object Dependency Tracker. It owns
// the local/remote object tables and drives fetch retries, and promotes
// tasks through the queue store it is given; the "call dispatch_tasks
// afterwards" step is left to an injected callback so this component stays
// decoupled from the Scheduling Engine that wires it up (mirrors the
// teacher's own RunnerResolver-style late-binding of behavior a component
// doesn't own, see runner.go).
type ObjectTracker struct {
	local  map[string]*objectEntry
	remote map[string]*objectEntry

	client ObjectStoreClient
	queue  *queueStore

	// onDispatchTasks is invoked after any change that may have made new
	// tasks runnable, standing in for §4.5's central dispatch_tasks loop.
	onDispatchTasks func()
}

// NewObjectTracker constructs an empty tracker wired to the given
// collaborators.
func NewObjectTracker(client ObjectStoreClient, queue *queueStore, onDispatchTasks func()) *ObjectTracker {
	return &ObjectTracker{
		local:           make(map[string]*objectEntry),
		remote:          make(map[string]*objectEntry),
		client:          client,
		queue:           queue,
		onDispatchTasks: onDispatchTasks,
	}
}

// canRun reports whether every by-ref argument of spec is locally
// available. By-value arguments never gate scheduling (§9).
func (ot *ObjectTracker) canRun(spec *TaskSpec) bool {
	for i := 0; i < spec.NumArgs(); i++ {
		objectID, isRef := spec.ArgByRef(i)
		if !isRef {
			continue
		}
		if _, ok := ot.local[objectID]; !ok {
			return false
		}
	}
	return true
}

// registerDependency implements §4.2 register_dependency.
func (ot *ObjectTracker) registerDependency(c Cursor, objectID string) {
	if _, ok := ot.local[objectID]; ok {
		return
	}
	entry, ok := ot.remote[objectID]
	if !ok {
		entry = &objectEntry{objectID: objectID}
		ot.remote[objectID] = entry
		if ot.client.IsConnected() {
			ot.client.Fetch([]string{objectID})
		} else {
			transientf("registerDependency: object store disconnected, deferring fetch of %s", objectID)
		}
	}
	entry.dependentTasks = append(entry.dependentTasks, c)
}

// registerAll implements §4.2 register_all. requireMissing asserts that at
// least one by-ref argument was actually missing, matching the "task needs
// waiting" call site's precondition; callers that merely want to top up
// dependency registrations pass false.
func (ot *ObjectTracker) registerAll(c Cursor, requireMissing bool) {
	spec := c.Spec()
	missing := 0
	for i := 0; i < spec.NumArgs(); i++ {
		objectID, isRef := spec.ArgByRef(i)
		if !isRef {
			continue
		}
		if _, ok := ot.local[objectID]; ok {
			continue
		}
		ot.registerDependency(c, objectID)
		missing++
	}
	if requireMissing {
		assertf(missing > 0, "registerAll: task %s has no missing by-ref dependency", spec.TaskID)
	}
}

// onObjectAvailable implements §4.2 on_object_available.
func (ot *ObjectTracker) onObjectAvailable(objectID string) {
	if _, ok := ot.local[objectID]; ok {
		// Idempotent: already local, second delivery of the same event is a no-op.
		return
	}

	entry, wasRemote := ot.remote[objectID]
	if wasRemote {
		delete(ot.remote, objectID)
	} else {
		entry = &objectEntry{objectID: objectID}
	}
	ot.local[objectID] = &objectEntry{objectID: objectID}

	for _, c := range entry.dependentTasks {
		if !c.Valid() {
			continue
		}
		if ot.canRun(c.Spec()) {
			ot.queue.promote(c)
		}
		// else: another object is still missing, task stays in waiting.
	}
	entry.dependentTasks = nil

	ot.onDispatchTasks()
}

// onObjectRemoved implements §4.2 on_object_removed.
func (ot *ObjectTracker) onObjectRemoved(objectID string) {
	assertf(hasKey(ot.local, objectID), "onObjectRemoved: %s is not local", objectID)
	delete(ot.local, objectID)

	ot.queue.forEachDispatch(func(c Cursor) {
		if dependsOn(c.Spec(), objectID) {
			ot.queue.demote(c)
		}
	})

	// demote pushes onto the tail of the waiting list, so this single walk
	// also reaches every task just demoted above.
	ot.queue.forEachWaiting(func(c Cursor) {
		if dependsOn(c.Spec(), objectID) {
			ot.registerDependency(c, objectID)
		}
	})
}

// fetchTimeoutTick implements §4.2 fetch_timeout_tick: one bulk fetch and
// one reconstruct request per remotely-tracked object, when connected.
func (ot *ObjectTracker) fetchTimeoutTick() {
	if !ot.client.IsConnected() {
		transientf("fetchTimeoutTick: object store disconnected, skipping this tick")
		return
	}
	if len(ot.remote) == 0 {
		return
	}
	ids := make([]string, 0, len(ot.remote))
	for id := range ot.remote {
		ids = append(ids, id)
	}
	ot.client.Fetch(ids)
	for _, id := range ids {
		ot.client.Reconstruct(id)
	}
}

// scrubDriver implements the remote-objects half of §4.5 on_driver_removed
// step 1, dropping cursors belonging to driverID and erasing any entry
// left with no dependents. Must run before the waiting/dispatch queues are
// scrubbed, since erasing those entries invalidates the cursors here.
func (ot *ObjectTracker) scrubDriver(driverID string) {
	for id, entry := range ot.remote {
		kept := entry.dependentTasks[:0]
		for _, c := range entry.dependentTasks {
			if c.Valid() && c.Spec().DriverID == driverID {
				continue
			}
			kept = append(kept, c)
		}
		entry.dependentTasks = kept
		if len(entry.dependentTasks) == 0 {
			delete(ot.remote, id)
		}
	}
}

// dependsOn reports whether spec has a by-ref argument equal to objectID.
func dependsOn(spec *TaskSpec, objectID string) bool {
	for i := 0; i < spec.NumArgs(); i++ {
		id, isRef := spec.ArgByRef(i)
		if isRef && id == objectID {
			return true
		}
	}
	return false
}

func hasKey(m map[string]*objectEntry, k string) bool {
	_, ok := m[k]
	return ok
}
