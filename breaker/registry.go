package breaker

import (
	"sync"
	"time"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

const (
	DefaultFailureThreshold = 5
	DefaultResetTimeout     = 30 * time.Second
	DefaultIdleTimeout      = 10 * time.Minute
)

// Status is a snapshot of one provider's circuit.
type Status struct {
	ProviderID          string    `json:"provider_id"`
	State               State     `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastFailureAt       time.Time `json:"last_failure_at"`
	OpenedAt            time.Time `json:"opened_at"`
	LastReason          string    `json:"last_reason"`
}

type entry struct {
	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	openedAt    time.Time
	lastReason  string
	probing     bool
	touchedAt   time.Time
}

// Registry tracks per-provider circuits. The outer lock only guards the map
// shape; each provider has its own mutex so unrelated providers never
// serialize each other.
type Registry struct {
	mu           sync.RWMutex
	entries      map[string]*entry
	threshold    int
	resetTimeout time.Duration

	nowFn func() time.Time
}

func NewRegistry() *Registry {
	return NewRegistryWith(DefaultFailureThreshold, DefaultResetTimeout)
}

func NewRegistryWith(threshold int, reset_timeout time.Duration) *Registry {
	return &Registry{
		entries:      make(map[string]*entry),
		threshold:    threshold,
		resetTimeout: reset_timeout,
		nowFn:        time.Now,
	}
}

func (r *Registry) lookup(provider_id string) *entry {
	r.mu.RLock()
	e := r.entries[provider_id]
	r.mu.RUnlock()

	return e
}

func (r *Registry) obtain(provider_id string) *entry {
	if e := r.lookup(provider_id); e != nil {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, found := r.entries[provider_id]; found {
		return e
	}

	e := &entry{state: StateClosed, touchedAt: r.nowFn()}
	r.entries[provider_id] = e

	return e
}

// IsOpen reports whether routing to the provider is currently blocked. When
// the reset timeout has elapsed on an open circuit it flips to half-open and
// admits exactly one probe: that caller sees false, every other caller in
// the same window sees true until the probe resolves.
func (r *Registry) IsOpen(provider_id string) bool {
	e := r.lookup(provider_id)
	if e == nil {
		return false
	}

	now := r.nowFn()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.touchedAt = now

	switch e.state {
	case StateClosed:
		return false
	case StateOpen:
		if now.Sub(e.openedAt) >= r.resetTimeout {
			e.state = StateHalfOpen
			e.probing = true
			return false
		}
		return true
	default: // StateHalfOpen
		if e.probing {
			return true
		}
		e.probing = true
		return false
	}
}

// RecordSuccess closes the circuit and zeroes the failure counter.
func (r *Registry) RecordSuccess(provider_id string) {
	e := r.obtain(provider_id)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateClosed
	e.failures = 0
	e.probing = false
	e.lastReason = ""
	e.touchedAt = r.nowFn()
}

// RecordFailure bumps the consecutive-failure counter. Reaching the
// threshold, or failing a half-open probe, opens the circuit.
func (r *Registry) RecordFailure(provider_id string, reason string) {
	e := r.obtain(provider_id)
	now := r.nowFn()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.failures++
	e.lastFailure = now
	e.lastReason = reason
	e.touchedAt = now

	if e.state == StateHalfOpen || e.failures >= r.threshold {
		e.state = StateOpen
		e.openedAt = now
		e.probing = false
	}
}

func (r *Registry) Status(provider_id string) (Status, bool) {
	e := r.lookup(provider_id)
	if e == nil {
		return Status{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return Status{
		ProviderID:          provider_id,
		State:               e.state,
		ConsecutiveFailures: e.failures,
		LastFailureAt:       e.lastFailure,
		OpenedAt:            e.openedAt,
		LastReason:          e.lastReason,
	}, true
}

func (r *Registry) Snapshot() []Status {
	r.mu.RLock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	statuses := make([]Status, 0, len(ids))
	for _, id := range ids {
		if status, found := r.Status(id); found {
			statuses = append(statuses, status)
		}
	}

	return statuses
}

// Sweep drops entries that have been idle longer than idle_timeout, so a
// provider that stopped trading starts from a clean circuit next time.
func (r *Registry) Sweep(idle_timeout time.Duration) int {
	now := r.nowFn()
	swept := 0

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.entries {
		e.mu.Lock()
		idle := now.Sub(e.touchedAt) >= idle_timeout
		e.mu.Unlock()

		if idle {
			delete(r.entries, id)
			swept++
		}
	}

	return swept
}
