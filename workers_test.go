package localsched

import "testing"

func TestAddAvailableRejectsAlreadyTracked(t *testing.T) {
	p := NewWorkerPool()
	w := &Worker{}
	p.AddAvailable(w)

	panicOnFatal = true
	defer func() { panicOnFatal = false }()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected AddAvailable to reject a worker already in a set")
		}
	}()
	p.AddAvailable(w)
}

func TestAssignFromAvailableIsLIFO(t *testing.T) {
	p := NewWorkerPool()
	w1, w2, w3 := &Worker{}, &Worker{}, &Worker{}
	p.AddAvailable(w1)
	p.AddAvailable(w2)
	p.AddAvailable(w3)

	if got := p.AssignFromAvailable(); got != w3 {
		t.Fatalf("expected the most recently added worker first, got %v want %v", got, w3)
	}
	if got := p.AssignFromAvailable(); got != w2 {
		t.Fatalf("expected w2 next, got %v", got)
	}
}

func TestAssignFromAvailableEmptyReturnsNil(t *testing.T) {
	p := NewWorkerPool()
	if w := p.AssignFromAvailable(); w != nil {
		t.Fatalf("expected nil from an empty pool, got %v", w)
	}
}

func TestMarkAvailableClearsReserved(t *testing.T) {
	p := NewWorkerPool()
	w := &Worker{}
	p.AddAvailable(w)
	p.AssignFromAvailable()
	w.Reserved[ResourceCPU] = 4

	p.MarkAvailable(w)

	if w.Reserved[ResourceCPU] != 0 {
		t.Fatalf("expected Reserved cleared on return to available, got %v", w.Reserved)
	}
	if avail, exec, _ := p.Contains(w); !avail || exec {
		t.Fatalf("expected worker back in available set only")
	}
}

func TestMarkAvailableAssertsExecutingMembership(t *testing.T) {
	p := NewWorkerPool()
	w := &Worker{}

	panicOnFatal = true
	defer func() { panicOnFatal = false }()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected MarkAvailable to reject a worker not in the executing set")
		}
	}()
	p.MarkAvailable(w)
}

func TestBlockUnblockRoundTrip(t *testing.T) {
	p := NewWorkerPool()
	w := &Worker{}
	p.AddAvailable(w)
	p.AssignFromAvailable()

	p.MarkBlocked(w)
	if avail, exec, blocked := p.Contains(w); avail || exec || !blocked {
		t.Fatalf("expected worker in blocked set only")
	}

	p.MarkUnblocked(w)
	if avail, exec, blocked := p.Contains(w); avail || !exec || blocked {
		t.Fatalf("expected worker back in executing set only")
	}
}

func TestRemoveDropsFromWhicheverSet(t *testing.T) {
	p := NewWorkerPool()
	w := &Worker{}
	p.AddAvailable(w)

	p.Remove(w)

	if avail, exec, blocked := p.Contains(w); avail || exec || blocked {
		t.Fatalf("expected worker in no set after Remove")
	}
	if p.AvailableCount() != 0 {
		t.Fatalf("expected available count 0, got %d", p.AvailableCount())
	}
}

func TestRemoveIsNoopForUntrackedWorker(t *testing.T) {
	p := NewWorkerPool()
	w := &Worker{}
	p.Remove(w) // must not panic
}

func TestRemoveIfExecutingNoopWhenElsewhere(t *testing.T) {
	p := NewWorkerPool()
	w := &Worker{}
	p.AddAvailable(w)

	p.RemoveIfExecuting(w)

	if p.AvailableCount() != 1 {
		t.Fatalf("expected available worker untouched by RemoveIfExecuting")
	}
}

func TestSwapPopRemovePreservesOtherMembers(t *testing.T) {
	set := []*Worker{{}, {}, {}}
	target := set[1]
	first, third := set[0], set[2]

	newSet, ok := swapPopRemove(set, target)

	if !ok || len(newSet) != 2 {
		t.Fatalf("expected removal to succeed and shrink the set by one")
	}
	if indexOf(newSet, target) >= 0 {
		t.Fatalf("expected target no longer present")
	}
	if indexOf(newSet, first) < 0 || indexOf(newSet, third) < 0 {
		t.Fatalf("expected the other two members still present, got %v", newSet)
	}
}
