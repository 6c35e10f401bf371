package main

import (
	"context"
	"fmt"
	"time"

	"github.com/seoyhaein/localsched"
	"github.com/seoyhaein/localsched/runtime"
)

func main() {
	RunDemoScenarios()
}

// demoResources is a fixed-capacity ResourceAccessor for the demo: one CPU
// slot, enough to make the dispatch scenarios visible without a large
// trace.
type demoResources struct {
	static, dynamic [localsched.ResourceIndexMax]float64
}

func (r *demoResources) Static(i localsched.ResourceIndex) float64  { return r.static[i] }
func (r *demoResources) Dynamic(i localsched.ResourceIndex) float64 { return r.dynamic[i] }
func (r *demoResources) Release(res [localsched.ResourceIndexMax]float64) {
	for i := range res {
		r.dynamic[i] += res[i]
	}
}
func (r *demoResources) Reacquire(res [localsched.ResourceIndexMax]float64) {
	for i := range res {
		r.dynamic[i] -= res[i]
	}
}

// demoMapping is a single-scheduler deployment: every actor this demo ever
// creates lives on this same local scheduler.
type demoMapping struct{ selfID string }

func (m demoMapping) Lookup(actorID string) (string, bool) { return m.selfID, true }

// RunDemoScenarios wires the runtime simulation harness together and drives
// spec.md §8's named scenarios against it, the same way dag-go's
// RunHeavyDag wires a Dag and drives one heavy run through it.
func RunDemoScenarios() {
	table := runtime.NewTaskTableSim()
	res := &demoResources{}
	res.static[localsched.ResourceCPU] = 1
	res.dynamic[localsched.ResourceCPU] = 1

	cfg := localsched.NewConfig(localsched.WithDBClientID("demo-scheduler"))

	loop := &runtime.EventLoop{}
	store := runtime.NewObjectStoreSim(loop, 50*time.Millisecond)
	workers := runtime.NewWorkerProcSim(loop, 100*time.Millisecond, 20*time.Millisecond)

	engine := localsched.NewEngine(cfg, store, table, workers, res, demoMapping{selfID: "demo-scheduler"}, workers)
	*loop = *runtime.NewEventLoop(engine, 32)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	fmt.Println("scenario: simple dispatch")
	simpleDispatch(loop, table)

	fmt.Println("scenario: fetch-driven promotion")
	fetchDrivenPromotion(loop, table, store)

	fmt.Println("scenario: actor in-order dispatch")
	actorInOrderDispatch(loop, table)

	fmt.Println("scenario: object eviction demotes a dependent")
	objectEvictionDemotes(loop, table, store)

	if err := workers.Shutdown(); err != nil {
		panic(fmt.Sprintf("worker shutdown failed: %v", err))
	}

	fmt.Println("demo complete")
	printSnapshot(table)
}

func simpleDispatch(loop *runtime.EventLoop, table *runtime.TaskTableSim) {
	spec := &localsched.TaskSpec{TaskID: "demo-simple", DriverID: "driver-1"}
	spec.RequiredResources[localsched.ResourceCPU] = 1
	loop.TaskSubmitted(spec)
	waitForStatus(table, "demo-simple", localsched.TaskStatusQueued, 2*time.Second)
}

func fetchDrivenPromotion(loop *runtime.EventLoop, table *runtime.TaskTableSim, store *runtime.ObjectStoreSim) {
	objectID := store.Put()
	store.Evict(objectID)

	spec := &localsched.TaskSpec{
		TaskID:   "demo-fetch",
		DriverID: "driver-1",
		Args:     []localsched.ArgRef{{IsRef: true, RefID: objectID}},
	}
	spec.RequiredResources[localsched.ResourceCPU] = 1
	loop.TaskSubmitted(spec)
	waitForStatus(table, "demo-fetch", localsched.TaskStatusQueued, 2*time.Second)
}

// actorInOrderDispatch submits an actor's second task before its first and
// confirms both land in the task table even though dispatch itself waits
// for the counter gap to close (§4.4's dispatch_actor front-counter check).
func actorInOrderDispatch(loop *runtime.EventLoop, table *runtime.TaskTableSim) {
	const actorID = "demo-actor"

	second := &localsched.TaskSpec{TaskID: "demo-actor-2", DriverID: "driver-1", ActorID: actorID, ActorCounter: 1}
	first := &localsched.TaskSpec{TaskID: "demo-actor-1", DriverID: "driver-1", ActorID: actorID, ActorCounter: 0}
	loop.ActorTaskSubmitted(second)
	loop.ActorTaskSubmitted(first)

	waitForStatus(table, "demo-actor-1", localsched.TaskStatusScheduled, 2*time.Second)
	waitForStatus(table, "demo-actor-2", localsched.TaskStatusScheduled, 2*time.Second)
}

func objectEvictionDemotes(loop *runtime.EventLoop, table *runtime.TaskTableSim, store *runtime.ObjectStoreSim) {
	objectID := store.Put()

	spec := &localsched.TaskSpec{
		TaskID:   "demo-evict",
		DriverID: "driver-1",
		Args:     []localsched.ArgRef{{IsRef: true, RefID: objectID}},
	}
	spec.RequiredResources[localsched.ResourceCPU] = 1
	loop.TaskSubmitted(spec)
	waitForStatus(table, "demo-evict", localsched.TaskStatusQueued, 2*time.Second)

	// If the task is still in the dispatch queue, evicting its object
	// demotes it back to the waiting queue (objects.go's onObjectRemoved),
	// which re-registers the dependency and refetches the object; once it is
	// local again the task is promoted and dispatched. A task that was
	// already assigned is not affected. The table entry itself only ever
	// records the last Queued snapshot, so this just gives the object store
	// sim's refetch time to land before the demo moves on.
	store.Evict(objectID)
	time.Sleep(200 * time.Millisecond)
}

func waitForStatus(table *runtime.TaskTableSim, taskID string, want localsched.TaskStatus, timeout time.Duration) {
	deadline := time.After(timeout)
	for {
		if e, ok := table.Snapshot()[taskID]; ok && e.Status == want {
			return
		}
		select {
		case <-deadline:
			fmt.Printf("  timed out waiting for %s to reach status %v\n", taskID, want)
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func printSnapshot(table *runtime.TaskTableSim) {
	for id, e := range table.Snapshot() {
		fmt.Printf("  %s: status=%v assignee=%s\n", id, e.Status, e.AssigneeID)
	}
}
