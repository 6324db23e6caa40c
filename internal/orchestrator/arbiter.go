package orchestrator

import "sync"

// Arbiter grants exclusive ownership of the single audio-capture device
// among competing capture sites. It exists to prevent two physical capture
// sessions from being opened simultaneously.
type Arbiter struct {
	mu    sync.Mutex
	owner SiteID
	held  bool
}

// NewArbiter creates an Arbiter with no current owner.
func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// Acquire grants ownership to site if the device is free. A denial is never
// queued; the caller surfaces it immediately.
func (a *Arbiter) Acquire(site SiteID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.held {
		if a.owner == site {
			return ErrAlreadyRecording
		}
		return ErrAlreadyOwned
	}

	a.owner = site
	a.held = true
	return nil
}

// Release relinquishes ownership if site is the current owner; otherwise a no-op.
func (a *Arbiter) Release(site SiteID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.held && a.owner == site {
		a.held = false
		a.owner = ""
	}
}

// Owner returns the current owner, or false if the device is free.
func (a *Arbiter) Owner() (SiteID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.owner, a.held
}
