package localsched

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ArgRef describes one positional argument of a task: either a
// by-reference object dependency (RefID set, IsRef true) or an inlined
// by-value argument. §9 "can_run considers only by-ref arguments; by-value
// arguments never gate scheduling."
type ArgRef struct {
	IsRef bool
	RefID string
	Value []byte
}

// TaskSpec is the opaque, immutable task specification described in §3.
// The scheduler core treats it as a value type: enqueue copies it in,
// dispatch/eviction free the copy. Field names match the spec's accessor
// list (driver_id, actor_id, actor_counter, required_resources, args).
type TaskSpec struct {
	TaskID       string
	DriverID     string
	ActorID      string // NilActorID when this is not an actor task
	ActorCounter int64  // meaningful only when ActorID != NilActorID

	RequiredResources [ResourceIndexMax]float64

	Args []ArgRef
}

// NumArgs returns the number of positional arguments.
func (t *TaskSpec) NumArgs() int { return len(t.Args) }

// ArgByRef reports whether argument i is a by-reference object dependency
// and, if so, its object ID.
func (t *TaskSpec) ArgByRef(i int) (objectID string, isRef bool) {
	a := t.Args[i]
	return a.RefID, a.IsRef
}

// ArgID is an alias for the reference form of ArgByRef, kept distinct per
// §3's accessor list (`arg_by_ref(i)`, `arg_id(i)`) even though both read
// the same field here: arg_id is only meaningful when arg_by_ref is true.
func (t *TaskSpec) ArgID(i int) string {
	return t.Args[i].RefID
}

// IsActorTask reports whether this task belongs to an actor.
func (t *TaskSpec) IsActorTask() bool { return t.ActorID != NilActorID }

// copyTaskSpec deep-copies a TaskSpec so the queue store owns an
// independent value, per §3 "Copied into queues (the core owns its
// copy)". Marshal-round-trip via json-iterator is the same idiom the
// teacher's utils.DeepCopy used, applied directly rather than through
// that now-dropped wrapper package (see DESIGN.md).
func copyTaskSpec(t *TaskSpec) *TaskSpec {
	if t == nil {
		return nil
	}
	payload, err := json.Marshal(t)
	if err != nil {
		fatalf("copyTaskSpec: marshal failed: %v", err)
	}
	out := &TaskSpec{}
	if err := json.Unmarshal(payload, out); err != nil {
		fatalf("copyTaskSpec: unmarshal failed: %v", err)
	}
	return out
}

// specSize estimates the wire size of a task spec, used wherever the spec
// asks for `task_spec_size` alongside the spec itself (§3 Task Queue
// Entry, §6 task table `size` field).
func specSize(t *TaskSpec) int {
	payload, err := json.Marshal(t)
	if err != nil {
		return 0
	}
	return len(payload)
}
