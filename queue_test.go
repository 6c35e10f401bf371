package localsched

import "testing"

func TestCursorSurvivesUnrelatedMutation(t *testing.T) {
	q := newQueueStore()
	c1 := q.enqueueWaiting(cpuSpec("T1", "d", 1))
	c2 := q.enqueueWaiting(cpuSpec("T2", "d", 1))

	q.erase(c1)

	if !c2.Valid() {
		t.Fatalf("expected c2 to remain valid after an unrelated erase")
	}
	if c2.Spec().TaskID != "T2" {
		t.Fatalf("expected c2 to still point at T2, got %s", c2.Spec().TaskID)
	}
}

func TestPromoteMovesWaitingToDispatch(t *testing.T) {
	q := newQueueStore()
	c := q.enqueueWaiting(cpuSpec("T", "d", 1))

	q.promote(c)

	if q.waiting.Len() != 0 || q.dispatch.Len() != 1 {
		t.Fatalf("expected the entry moved from waiting to dispatch")
	}
}

func TestPromoteRejectsDispatchCursor(t *testing.T) {
	q := newQueueStore()
	c := q.enqueueDispatch(cpuSpec("T", "d", 1))

	panicOnFatal = true
	defer func() { panicOnFatal = false }()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected promote to reject a dispatch-queue cursor")
		}
	}()
	q.promote(c)
}

func TestDemoteReturnsFreshWaitingCursor(t *testing.T) {
	q := newQueueStore()
	c := q.enqueueDispatch(cpuSpec("T", "d", 1))

	c2 := q.demote(c)

	if q.dispatch.Len() != 0 || q.waiting.Len() != 1 {
		t.Fatalf("expected the entry moved from dispatch to waiting")
	}
	if !c2.Valid() || c2.Spec().TaskID != "T" {
		t.Fatalf("expected a valid fresh cursor into the waiting queue")
	}
}

func TestForEachAllowsSelfErase(t *testing.T) {
	q := newQueueStore()
	q.enqueueWaiting(cpuSpec("T1", "d", 1))
	q.enqueueWaiting(cpuSpec("T2", "d", 1))
	q.enqueueWaiting(cpuSpec("T3", "d", 1))

	var seen []string
	q.forEachWaiting(func(c Cursor) {
		seen = append(seen, c.Spec().TaskID)
		if c.Spec().TaskID == "T2" {
			q.erase(c)
		}
	})

	if len(seen) != 3 {
		t.Fatalf("expected the walk to visit all three original entries, got %v", seen)
	}
	if q.waiting.Len() != 2 {
		t.Fatalf("expected T2 removed, %d entries remain", q.waiting.Len())
	}
}

func TestActorQueueOrdersByAscendingCounter(t *testing.T) {
	aq := newActorQueue()
	aq.insertOrdered(actorSpec("T2", "A", 2))
	aq.insertOrdered(actorSpec("T0", "A", 0))
	aq.insertOrdered(actorSpec("T1", "A", 1))

	var order []string
	for aq.len() > 0 {
		order = append(order, aq.front().TaskID)
		aq.popFront()
	}
	if len(order) != 3 || order[0] != "T0" || order[1] != "T1" || order[2] != "T2" {
		t.Fatalf("expected ascending counter order, got %v", order)
	}
}

func TestActorQueueRejectsDuplicateCounter(t *testing.T) {
	aq := newActorQueue()
	aq.insertOrdered(actorSpec("T0", "A", 0))

	panicOnFatal = true
	defer func() { panicOnFatal = false }()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic on duplicate actor_counter")
		}
	}()
	aq.insertOrdered(actorSpec("T0dup", "A", 0))
}

func TestEnqueueCopiesTheSpec(t *testing.T) {
	q := newQueueStore()
	spec := cpuSpec("T", "d", 1)
	c := q.enqueueWaiting(spec)

	spec.TaskID = "mutated"

	if c.Spec().TaskID != "T" {
		t.Fatalf("expected the queued copy to be unaffected by mutating the original, got %s", c.Spec().TaskID)
	}
}
