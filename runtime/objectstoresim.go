package runtime

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seoyhaein/localsched"
)

// ObjectStoreSim is a goroutine-backed stand-in for the real object store
// client spec.md §6 deliberately leaves out of the core. Fetch and
// Reconstruct calls are answered asynchronously after a configurable
// latency, feeding object_available back through the owning EventLoop —
// exactly the "opaque go func()" shape dag-go's own Runnable
// implementations use to bridge blocking work into a channel-based caller.
type ObjectStoreSim struct {
	loop    *EventLoop
	latency time.Duration

	mu        sync.Mutex
	connected bool
	produced  map[string]bool // objects the sim has decided to "materialize"
}

// NewObjectStoreSim constructs a connected simulator wired to loop.
func NewObjectStoreSim(loop *EventLoop, latency time.Duration) *ObjectStoreSim {
	return &ObjectStoreSim{
		loop:      loop,
		latency:   latency,
		connected: true,
		produced:  make(map[string]bool),
	}
}

// IsConnected implements localsched.ObjectStoreClient.
func (s *ObjectStoreSim) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// SetConnected flips simulated connectivity, for exercising the
// "deferred fetch while disconnected" path from a demo or test.
func (s *ObjectStoreSim) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
}

// Put marks objectID as immediately available and notifies the loop, as if
// a driver had just called ray.put(). Used to seed a demo's initial data.
func (s *ObjectStoreSim) Put() string {
	objectID := uuid.NewString()
	s.mu.Lock()
	s.produced[objectID] = true
	s.mu.Unlock()
	s.loop.ObjectAvailable(objectID)
	return objectID
}

// Fetch implements localsched.ObjectStoreClient: each requested id resolves
// after latency by marking it produced and delivering object_available. An
// Evict that lands while a fetch is in flight does not cancel that fetch.
func (s *ObjectStoreSim) Fetch(ids []string) {
	for _, id := range ids {
		id := id
		go func() {
			time.Sleep(s.latency)
			s.mu.Lock()
			s.produced[id] = true
			s.mu.Unlock()
			s.loop.ObjectAvailable(id)
		}()
	}
}

// Reconstruct implements localsched.ObjectStoreClient identically to Fetch
// for simulation purposes; the real system distinguishes "ask the object
// store to send it" from "ask a driver to recompute it", but both resolve
// to the same object_available event from the local scheduler's point of
// view (§4.2).
func (s *ObjectStoreSim) Reconstruct(id string) {
	s.Fetch([]string{id})
}

// Evict simulates eviction pressure removing objectID from the store,
// delivering object_removed if it was previously produced.
func (s *ObjectStoreSim) Evict(objectID string) {
	s.mu.Lock()
	was := s.produced[objectID]
	delete(s.produced, objectID)
	s.mu.Unlock()
	if was {
		s.loop.ObjectRemoved(objectID)
	}
}

var _ localsched.ObjectStoreClient = (*ObjectStoreSim)(nil)
