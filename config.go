package localsched

import "time"

// ResourceIndex identifies one dimension of the fixed resource-kind
// enumeration (§6 "Resource kinds are a fixed enumerated set").
type ResourceIndex int

const (
	ResourceCPU ResourceIndex = iota
	ResourceGPU
	ResourceMemory
	ResourceCustom0
	// ResourceIndexMax is one past the last valid ResourceIndex.
	ResourceIndexMax
)

func (r ResourceIndex) String() string {
	switch r {
	case ResourceCPU:
		return "CPU"
	case ResourceGPU:
		return "GPU"
	case ResourceMemory:
		return "memory"
	case ResourceCustom0:
		return "custom0"
	default:
		return "unknown-resource"
	}
}

// NilActorID is the sentinel actor ID meaning "not an actor task".
const NilActorID = ""

// NilAssignee is the sentinel local-scheduler ID meaning "unassigned".
const NilAssignee = ""

// DefaultFetchTimeout is FETCH_TIMEOUT_MS from §4.2, the periodic tick
// driving the fetch/reconstruct retry loop.
const DefaultFetchTimeout = 100 * time.Millisecond

// Config bundles the tunables the embedding process may need to vary.
// dag-go itself has no functional-options constructor (NewDag and
// NewDagWithPId both take fixed positional arguments); this follows the
// Option func(*T) + With* pattern from gowe's server.Option instead.
type Config struct {
	// GlobalSchedulerExists mirrors config.global_scheduler_exists (§6).
	GlobalSchedulerExists bool
	// FetchTimeout is the tick period for fetch_timeout_tick (§4.2).
	FetchTimeout time.Duration
	// DBClientID identifies this local scheduler for actor-mapping checks.
	DBClientID string
}

// Option mutates a Config during construction.
type Option func(*Config)

// WithGlobalScheduler toggles whether a global scheduler exists (§4.5).
func WithGlobalScheduler(exists bool) Option {
	return func(c *Config) { c.GlobalSchedulerExists = exists }
}

// WithFetchTimeout overrides the fetch-retry tick period.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.FetchTimeout = d
		}
	}
}

// WithDBClientID sets this local scheduler's own ID, used to recognize
// "assigned to us" in actor and task handoff decisions.
func WithDBClientID(id string) Option {
	return func(c *Config) { c.DBClientID = id }
}

// NewConfig builds a Config with defaults overridden by the given options.
func NewConfig(opts ...Option) Config {
	c := Config{
		GlobalSchedulerExists: false,
		FetchTimeout:          DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
