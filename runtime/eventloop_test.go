package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/seoyhaein/localsched"
)

type staticResources struct {
	static, dynamic [localsched.ResourceIndexMax]float64
}

func (r *staticResources) Static(i localsched.ResourceIndex) float64  { return r.static[i] }
func (r *staticResources) Dynamic(i localsched.ResourceIndex) float64 { return r.dynamic[i] }
func (r *staticResources) Release(res [localsched.ResourceIndexMax]float64) {
	for i := range res {
		r.dynamic[i] += res[i]
	}
}
func (r *staticResources) Reacquire(res [localsched.ResourceIndexMax]float64) {
	for i := range res {
		r.dynamic[i] -= res[i]
	}
}

type staticMapping struct{}

func (staticMapping) Lookup(actorID string) (string, bool) { return "", false }

func newHarness(t *testing.T, cpu float64) (*EventLoop, *TaskTableSim, context.CancelFunc) {
	t.Helper()
	table := NewTaskTableSim()
	res := &staticResources{}
	res.static[localsched.ResourceCPU] = cpu
	res.dynamic[localsched.ResourceCPU] = cpu

	cfg := localsched.NewConfig(localsched.WithDBClientID("sim"))
	// engine is wired below once the loop (and thus the object store sim,
	// which needs the loop to deliver object_available) exist.
	loop := &EventLoop{}
	store := NewObjectStoreSim(loop, 5*time.Millisecond)
	wc := NewWorkerProcSim(loop, 5*time.Millisecond, 5*time.Millisecond)
	engine := localsched.NewEngine(cfg, store, table, wc, res, staticMapping{}, wc)
	*loop = *NewEventLoop(engine, 16)

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	return loop, table, cancel
}

func TestHarnessSimpleDispatch(t *testing.T) {
	loop, table, cancel := newHarness(t, 1)
	defer cancel()

	spec := &localsched.TaskSpec{TaskID: "T0", DriverID: "d"}
	spec.RequiredResources[localsched.ResourceCPU] = 1

	// No worker registered yet: this call queues locally and returns fast.
	loop.TaskSubmitted(spec)

	deadline := time.After(2 * time.Second)
	for {
		snap := table.Snapshot()
		if e, ok := snap["T0"]; ok && e.Status == localsched.TaskStatusQueued {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for T0 to be queued, snapshot=%v", table.Snapshot())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHarnessFetchDrivenPromotion(t *testing.T) {
	loop, _, cancel := newHarness(t, 1)
	defer cancel()

	objectID := "seed-object"
	spec := &localsched.TaskSpec{TaskID: "T1", DriverID: "d", Args: []localsched.ArgRef{{IsRef: true, RefID: objectID}}}
	spec.RequiredResources[localsched.ResourceCPU] = 1

	loop.TaskSubmitted(spec)
	loop.ObjectAvailable(objectID)
	// Give the object store sim's own async Fetch (registered while T1 sat
	// in the waiting queue) a chance to settle before the loop shuts down,
	// so its goroutine doesn't block forever trying to submit afterward.
	time.Sleep(20 * time.Millisecond)
}
