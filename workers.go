package localsched

// Worker is the opaque handle described in §3. Identity is by pointer
// equality; ActorID is NilActorID for non-actor workers.
type Worker struct {
	ActorID        string
	TaskInProgress bool // observed, never mutated by the core (§3)

	// Reserved is the resource vector debited when this worker was last
	// assigned a task. It is core-owned bookkeeping (distinct from the
	// externally-owned TaskInProgress) used only to drive the SUPPLEMENTED
	// ResourceAccessor.Release/Reacquire calls around block/unblock (see
	// SPEC_FULL.md).
	Reserved [ResourceIndexMax]float64
}

// WorkerPool implements §4.3: three disjoint sets for non-actor workers,
// each with O(1) removal by identity via swap-with-back-and-pop. Actor
// workers are single-tenant and live in LocalActorInfo instead (§4.4),
// never in these sets.
type WorkerPool struct {
	available []*Worker
	executing []*Worker
	blocked   []*Worker
}

// NewWorkerPool constructs an empty pool.
func NewWorkerPool() *WorkerPool {
	return &WorkerPool{}
}

func indexOf(set []*Worker, w *Worker) int {
	for i, x := range set {
		if x == w {
			return i
		}
	}
	return -1
}

// swapPopRemove removes w from set by swapping it with the last element
// and shrinking by one. Order within a set carries no meaning for
// non-actor workers (§4.3).
func swapPopRemove(set []*Worker, w *Worker) ([]*Worker, bool) {
	i := indexOf(set, w)
	if i < 0 {
		return set, false
	}
	last := len(set) - 1
	set[i] = set[last]
	set = set[:last]
	return set, true
}

func (p *WorkerPool) memberships(w *Worker) int {
	n := 0
	if indexOf(p.available, w) >= 0 {
		n++
	}
	if indexOf(p.executing, w) >= 0 {
		n++
	}
	if indexOf(p.blocked, w) >= 0 {
		n++
	}
	return n
}

// AddAvailable registers a worker with no task in progress ("worker
// registers with no task" row of §4.3's transition table).
func (p *WorkerPool) AddAvailable(w *Worker) {
	assertf(p.memberships(w) == 0, "AddAvailable: worker already tracked in a set")
	p.available = append(p.available, w)
}

// AssignFromAvailable moves a worker from available to executing, popping
// from the back for LIFO reuse (§4.5 dispatch_tasks: "most-recently-
// available first"). Returns nil if the pool is empty.
func (p *WorkerPool) AssignFromAvailable() *Worker {
	if len(p.available) == 0 {
		return nil
	}
	last := len(p.available) - 1
	w := p.available[last]
	p.available = p.available[:last]
	p.executing = append(p.executing, w)
	return w
}

// MarkAvailable moves w from executing to available ("worker reports task
// done").
func (p *WorkerPool) MarkAvailable(w *Worker) {
	var ok bool
	p.executing, ok = swapPopRemove(p.executing, w)
	assertf(ok, "MarkAvailable: worker not in executing set")
	assertf(indexOf(p.available, w) < 0, "MarkAvailable: worker already available")
	w.Reserved = [ResourceIndexMax]float64{}
	p.available = append(p.available, w)
}

// RemoveIfExecuting drops w from the executing set if present, a no-op
// otherwise. Used by on_worker_available to cover both "worker reports
// task done" and "worker registers with no task" with one call (§4.5).
func (p *WorkerPool) RemoveIfExecuting(w *Worker) {
	p.executing, _ = swapPopRemove(p.executing, w)
}

// MarkBlocked moves w from executing to blocked ("worker reports blocked
// on object").
func (p *WorkerPool) MarkBlocked(w *Worker) {
	var ok bool
	p.executing, ok = swapPopRemove(p.executing, w)
	assertf(ok, "MarkBlocked: worker not in executing set")
	assertf(indexOf(p.blocked, w) < 0, "MarkBlocked: worker already blocked")
	p.blocked = append(p.blocked, w)
}

// MarkUnblocked moves w from blocked to executing ("worker reports
// unblocked").
func (p *WorkerPool) MarkUnblocked(w *Worker) {
	var ok bool
	p.blocked, ok = swapPopRemove(p.blocked, w)
	assertf(ok, "MarkUnblocked: worker not in blocked set")
	assertf(indexOf(p.executing, w) < 0, "MarkUnblocked: worker already executing")
	p.executing = append(p.executing, w)
}

// Remove drops w from whichever set contains it ("worker disconnects"),
// asserting it is a member of at most one.
func (p *WorkerPool) Remove(w *Worker) {
	assertf(p.memberships(w) <= 1, "Remove: worker present in more than one set")
	if s, ok := swapPopRemove(p.available, w); ok {
		p.available = s
		return
	}
	if s, ok := swapPopRemove(p.executing, w); ok {
		p.executing = s
		return
	}
	if s, ok := swapPopRemove(p.blocked, w); ok {
		p.blocked = s
	}
}

// AvailableCount reports the number of idle non-actor workers.
func (p *WorkerPool) AvailableCount() int { return len(p.available) }

// Contains reports which set (if any) currently holds w, for tests and
// invariant checks.
func (p *WorkerPool) Contains(w *Worker) (available, executing, blocked bool) {
	return indexOf(p.available, w) >= 0, indexOf(p.executing, w) >= 0, indexOf(p.blocked, w) >= 0
}
