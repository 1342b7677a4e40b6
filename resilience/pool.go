package resilience

import (
	"context"
	"sync"
	"time"
)

// PoolConfig configures the connection pool.
type PoolConfig struct {
	// Size is the maximum number of slots per realm.
	// Default: 5
	Size int

	// CheckoutTimeout is the maximum time to wait for a slot.
	// Default: 10 seconds
	CheckoutTimeout time.Duration
}

// Slot is a logical connection slot scoped to a realm.
type Slot struct {
	Realm        string
	CreatedAt    time.Time
	CheckedOutAt time.Time
	CheckedInAt  time.Time

	inUse bool
}

// Pool bounds the number of in-flight logical connections per realm.
// Checkout blocks until a slot frees or capacity allows creating one,
// up to the configured checkout timeout.
type Pool struct {
	config PoolConfig

	mu     sync.Mutex
	realms map[string]*realmSlots
}

type realmSlots struct {
	slots []*Slot

	// wake is closed and replaced on every checkin; waiters re-check
	// the slot predicate after each wake.
	wake chan struct{}
}

// NewPool creates a new connection pool.
func NewPool(config PoolConfig) *Pool {
	// Apply defaults
	if config.Size <= 0 {
		config.Size = 5
	}
	if config.CheckoutTimeout <= 0 {
		config.CheckoutTimeout = 10 * time.Second
	}

	return &Pool{
		config: config,
		realms: make(map[string]*realmSlots),
	}
}

// Checkout claims a slot for the realm, blocking until one is available,
// capacity allows creating one, the checkout timeout expires
// (ErrPoolTimeout), or the context is canceled.
func (p *Pool) Checkout(ctx context.Context, realm string) (*Slot, error) {
	deadline := time.Now().Add(p.config.CheckoutTimeout)

	p.mu.Lock()
	for {
		rs := p.realmLocked(realm)

		for _, s := range rs.slots {
			if !s.inUse {
				s.inUse = true
				s.CheckedOutAt = time.Now()
				p.mu.Unlock()
				return s, nil
			}
		}

		if len(rs.slots) < p.config.Size {
			s := &Slot{
				Realm:        realm,
				CreatedAt:    time.Now(),
				CheckedOutAt: time.Now(),
				inUse:        true,
			}
			rs.slots = append(rs.slots, s)
			p.mu.Unlock()
			return s, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			p.mu.Unlock()
			return nil, ErrPoolTimeout
		}

		wake := rs.wake
		p.mu.Unlock()

		timer := time.NewTimer(remaining)
		select {
		case <-wake:
			timer.Stop()
		case <-timer.C:
			// Re-check under the lock; the deadline test above fails
			// the checkout on the next pass.
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}

		p.mu.Lock()
	}
}

// Checkin returns a slot to the pool and wakes waiters.
func (p *Pool) Checkin(slot *Slot) {
	if slot == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	slot.inUse = false
	slot.CheckedInAt = time.Now()

	rs := p.realmLocked(slot.Realm)
	close(rs.wake)
	rs.wake = make(chan struct{})
}

// With runs fn while holding a slot for the realm, checking the slot
// back in on every exit path.
func (p *Pool) With(ctx context.Context, realm string, fn func() error) error {
	slot, err := p.Checkout(ctx, realm)
	if err != nil {
		return err
	}
	defer p.Checkin(slot)

	return fn()
}

// InUse returns the number of checked-out slots for the realm.
func (p *Pool) InUse(realm string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, s := range p.realmLocked(realm).slots {
		if s.inUse {
			n++
		}
	}
	return n
}

// Slots returns the total number of slots created for the realm.
func (p *Pool) Slots(realm string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.realmLocked(realm).slots)
}

func (p *Pool) realmLocked(realm string) *realmSlots {
	rs, ok := p.realms[realm]
	if !ok {
		rs = &realmSlots{wake: make(chan struct{})}
		p.realms[realm] = rs
	}
	return rs
}
