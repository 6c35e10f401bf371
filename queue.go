package localsched

import "container/list"

// queueEntry is the Task Queue Entry of §3: {task_spec, task_spec_size}.
type queueEntry struct {
	spec *TaskSpec
	size int
}

// Cursor is a stable reference into one of the queue store's lists.
// container/list guarantees an *list.Element survives insertion and
// removal of any other element in the same list, which is exactly the
// "stable cursor" property §4.1 and Design Notes §9 require so that
// remote_objects can hold back-references into the waiting queue across
// unrelated queue mutations.
type Cursor struct {
	elem *list.Element
	list *list.List
}

// Valid reports whether the cursor still refers to a live entry. A cursor
// whose element has been removed (erase, promote, demote) reports false.
func (c Cursor) Valid() bool {
	return c.elem != nil && c.list != nil && (c.elem.Prev() != nil || c.list.Front() == c.elem)
}

func (c Cursor) entry() *queueEntry {
	return c.elem.Value.(*queueEntry)
}

// Spec returns the task spec the cursor points at.
func (c Cursor) Spec() *TaskSpec { return c.entry().spec }

// queueStore owns the waiting and dispatch stage-queues of §4.1. Each
// actor's own queue is an actorQueue held by its LocalActorInfo.
type queueStore struct {
	waiting  *list.List
	dispatch *list.List
}

func newQueueStore() *queueStore {
	return &queueStore{
		waiting:  list.New(),
		dispatch: list.New(),
	}
}

// enqueueWaiting appends a copy of spec to the waiting queue and returns a
// stable cursor to it.
func (q *queueStore) enqueueWaiting(spec *TaskSpec) Cursor {
	e := q.waiting.PushBack(&queueEntry{spec: copyTaskSpec(spec), size: specSize(spec)})
	return Cursor{elem: e, list: q.waiting}
}

// enqueueDispatch appends a copy of spec to the dispatch queue.
func (q *queueStore) enqueueDispatch(spec *TaskSpec) Cursor {
	e := q.dispatch.PushBack(&queueEntry{spec: copyTaskSpec(spec), size: specSize(spec)})
	return Cursor{elem: e, list: q.dispatch}
}

// promote moves the entry at cursor from the waiting queue to the tail of
// the dispatch queue in O(1). The input cursor is invalidated per §4.1.
func (q *queueStore) promote(c Cursor) {
	assertf(c.Valid(), "promote: cursor is not valid")
	assertf(c.list == q.waiting, "promote: cursor does not belong to the waiting queue")
	entry := c.entry()
	q.waiting.Remove(c.elem)
	q.dispatch.PushBack(entry)
}

// demote moves the entry at cursor from the dispatch queue to the tail of
// the waiting queue, returning a fresh cursor into the waiting queue. Used
// when a previously-local dependency is evicted (§4.2 on_object_removed).
func (q *queueStore) demote(c Cursor) Cursor {
	assertf(c.Valid(), "demote: cursor is not valid")
	assertf(c.list == q.dispatch, "demote: cursor does not belong to the dispatch queue")
	entry := c.entry()
	q.dispatch.Remove(c.elem)
	e := q.waiting.PushBack(entry)
	return Cursor{elem: e, list: q.waiting}
}

// erase removes the entry at cursor, freeing the owned spec.
func (q *queueStore) erase(c Cursor) {
	assertf(c.Valid(), "erase: cursor is not valid")
	c.list.Remove(c.elem)
}

// forEachWaiting calls fn for every live entry in the waiting queue, in
// head-to-tail order. fn may erase or demote the *current* cursor safely
// (iteration has already advanced past it); it must not touch other
// cursors' underlying elements.
func (q *queueStore) forEachWaiting(fn func(c Cursor)) {
	forEachOf(q.waiting, fn)
}

// forEachDispatch calls fn for every live entry in the dispatch queue, in
// head-to-tail order, with the same safety contract as forEachWaiting.
func (q *queueStore) forEachDispatch(fn func(c Cursor)) {
	forEachOf(q.dispatch, fn)
}

func forEachOf(l *list.List, fn func(c Cursor)) {
	for e := l.Front(); e != nil; {
		next := e.Next()
		fn(Cursor{elem: e, list: l})
		e = next
	}
}

// actorQueue is one actor's task_queue: entries kept sorted by ascending
// actor_counter (§3 invariant, ties forbidden).
type actorQueue struct {
	tasks *list.List
}

func newActorQueue() *actorQueue {
	return &actorQueue{tasks: list.New()}
}

// insertOrdered inserts spec preserving ascending actor_counter order.
// Linear scan from the head, per §4.1: "Implementation may be linear from
// head; this is a known quadratic worst case accepted by the design."
func (aq *actorQueue) insertOrdered(spec *TaskSpec) {
	entry := &queueEntry{spec: copyTaskSpec(spec), size: specSize(spec)}
	for e := aq.tasks.Front(); e != nil; e = e.Next() {
		existing := e.Value.(*queueEntry).spec
		assertf(existing.ActorCounter != spec.ActorCounter,
			"actor %s: duplicate actor_counter %d", spec.ActorID, spec.ActorCounter)
		if spec.ActorCounter < existing.ActorCounter {
			aq.tasks.InsertBefore(entry, e)
			return
		}
	}
	aq.tasks.PushBack(entry)
}

// front returns the head entry's spec, or nil if the queue is empty.
func (aq *actorQueue) front() *TaskSpec {
	if e := aq.tasks.Front(); e != nil {
		return e.Value.(*queueEntry).spec
	}
	return nil
}

// popFront removes and frees the head entry.
func (aq *actorQueue) popFront() {
	if e := aq.tasks.Front(); e != nil {
		aq.tasks.Remove(e)
	}
}

// len reports the number of queued tasks.
func (aq *actorQueue) len() int { return aq.tasks.Len() }
