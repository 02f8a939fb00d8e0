package minter

import "sync"

// Snapshot is a point-in-time copy of the dashboard state.
type Snapshot struct {
	Account        string
	Minted         uint64
	Capacity       uint64
	NetworkWarning bool
	IsMining       bool
}

// Connected reports whether an account is set.
func (s Snapshot) Connected() bool {
	return s.Account != ""
}

// State is the single owner of the four dashboard fields. All mutations go
// through it, and observers receive a Snapshot after each change.
type State struct {
	mu        sync.Mutex
	snap      Snapshot
	observers []func(Snapshot)
}

// NewState returns a disconnected state with the given display capacity.
func NewState(capacity uint64) *State {
	return &State{snap: Snapshot{Capacity: capacity}}
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Observe registers fn to be called after every change. fn runs on the
// goroutine that made the change and must not call back into State
// mutators.
func (s *State) Observe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// SetAccount sets the connected account; empty disconnects.
func (s *State) SetAccount(account string) {
	s.update(func(snap *Snapshot) bool {
		if snap.Account == account {
			return false
		}
		snap.Account = account
		return true
	})
}

// SetNetworkWarning sets whether the wrong-network warning shows.
func (s *State) SetNetworkWarning(on bool) {
	s.update(func(snap *Snapshot) bool {
		if snap.NetworkWarning == on {
			return false
		}
		snap.NetworkWarning = on
		return true
	})
}

// SetMinted replaces the counter with a value read from the contract.
func (s *State) SetMinted(n uint64) {
	s.update(func(snap *Snapshot) bool {
		if snap.Minted == n {
			return false
		}
		snap.Minted = n
		return true
	})
}

// AddMinted adds delta to the current counter and returns the new value.
func (s *State) AddMinted(delta uint64) uint64 {
	var out uint64
	s.update(func(snap *Snapshot) bool {
		snap.Minted += delta
		out = snap.Minted
		return delta != 0
	})
	return out
}

// StartMining sets IsMining and reports true, unless a mint is already in
// flight, in which case nothing changes and it reports false.
func (s *State) StartMining() bool {
	started := false
	s.update(func(snap *Snapshot) bool {
		if snap.IsMining {
			return false
		}
		snap.IsMining = true
		started = true
		return true
	})
	return started
}

// StopMining clears IsMining.
func (s *State) StopMining() {
	s.update(func(snap *Snapshot) bool {
		if !snap.IsMining {
			return false
		}
		snap.IsMining = false
		return true
	})
}

// update applies fn under the lock and notifies observers outside it when
// fn reports a change.
func (s *State) update(fn func(*Snapshot) bool) {
	s.mu.Lock()
	changed := fn(&s.snap)
	snap := s.snap
	observers := append([]func(Snapshot){}, s.observers...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, o := range observers {
		o(snap)
	}
}
