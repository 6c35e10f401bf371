package localsched

// Test doubles for the six external collaborator interfaces in
// collaborators.go (§6), shared across
// this package's test files. Mirrors the teacher's own style of small,
// in-file fakes (e.g. dag_test.go's inline stub Runnables) rather than a
// generated-mock library — nothing in the retrieval pack uses one.

type fakeObjectStore struct {
	connected   bool
	fetches     [][]string
	reconstruct []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{connected: true}
}

func (f *fakeObjectStore) IsConnected() bool { return f.connected }
func (f *fakeObjectStore) Fetch(ids []string) {
	cp := append([]string(nil), ids...)
	f.fetches = append(f.fetches, cp)
}
func (f *fakeObjectStore) Reconstruct(id string) { f.reconstruct = append(f.reconstruct, id) }

type fakeTaskTable struct {
	adds    []TaskTableEntry
	updates []TaskTableEntry
}

func (f *fakeTaskTable) AddTask(e TaskTableEntry)    { f.adds = append(f.adds, e) }
func (f *fakeTaskTable) UpdateTask(e TaskTableEntry) { f.updates = append(f.updates, e) }

type assignment struct {
	worker *Worker
	spec   *TaskSpec
	size   int
}

type fakeWorkerControl struct {
	assigned []assignment
	started  []string
}

func (f *fakeWorkerControl) AssignTask(w *Worker, spec *TaskSpec, size int) {
	f.assigned = append(f.assigned, assignment{worker: w, spec: spec, size: size})
}
func (f *fakeWorkerControl) StartWorker(actorID string) {
	f.started = append(f.started, actorID)
}

type fakeResources struct {
	static  [ResourceIndexMax]float64
	dynamic [ResourceIndexMax]float64
}

func newFakeResources(cpu float64) *fakeResources {
	r := &fakeResources{}
	r.static[ResourceCPU] = cpu
	r.dynamic[ResourceCPU] = cpu
	return r
}

func (r *fakeResources) Static(i ResourceIndex) float64  { return r.static[i] }
func (r *fakeResources) Dynamic(i ResourceIndex) float64 { return r.dynamic[i] }
func (r *fakeResources) Release(res [ResourceIndexMax]float64) {
	for i := range res {
		r.dynamic[i] += res[i]
	}
}
func (r *fakeResources) Reacquire(res [ResourceIndexMax]float64) {
	for i := range res {
		r.dynamic[i] -= res[i]
	}
}

type fakeMapping struct {
	m map[string]string
}

func newFakeMapping() *fakeMapping { return &fakeMapping{m: map[string]string{}} }

func (f *fakeMapping) Lookup(actorID string) (string, bool) {
	v, ok := f.m[actorID]
	return v, ok
}

type fakePending struct{ has bool }

func (f *fakePending) HasPending() bool { return f.has }

func cpuSpec(taskID, driverID string, cpu float64) *TaskSpec {
	s := &TaskSpec{TaskID: taskID, DriverID: driverID}
	s.RequiredResources[ResourceCPU] = cpu
	return s
}

func refArgSpec(taskID, driverID, objectID string, cpu float64) *TaskSpec {
	s := cpuSpec(taskID, driverID, cpu)
	s.Args = []ArgRef{{IsRef: true, RefID: objectID}}
	return s
}

func actorSpec(taskID, actorID string, counter int64) *TaskSpec {
	return &TaskSpec{TaskID: taskID, ActorID: actorID, ActorCounter: counter, DriverID: "driver"}
}

func newTestEngine(cpu float64) (*Engine, *fakeObjectStore, *fakeTaskTable, *fakeWorkerControl, *fakeResources, *fakeMapping) {
	store := newFakeObjectStore()
	table := &fakeTaskTable{}
	wc := &fakeWorkerControl{}
	res := newFakeResources(cpu)
	mapping := newFakeMapping()
	cfg := NewConfig(WithDBClientID("self"))
	e := NewEngine(cfg, store, table, wc, res, mapping, &fakePending{})
	return e, store, table, wc, res, mapping
}
