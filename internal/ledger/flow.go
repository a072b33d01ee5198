package ledger

import (
	"sync"
	"time"
)

// stageTTL bounds how long a checked expense stays eligible for confirm.
// Abandoned flows fall back to Idle once the TTL lapses.
const stageTTL = 10 * time.Minute

type stagedCheck struct {
	id       int64
	project  string
	stagedAt time.Time
}

// DeleteFlows tracks per-session delete-flow state:
// Idle -> Checked(id) -> {Deleted | Idle}.
// Stale entries are dropped by a periodic cleanup, mirroring how abandoned
// flows simply expire rather than lingering in session state.
type DeleteFlows struct {
	mu           sync.Mutex
	staged       map[string]stagedCheck
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewDeleteFlows() *DeleteFlows {
	return &DeleteFlows{
		staged:      make(map[string]stagedCheck),
		stopCleanup: make(chan struct{}),
	}
}

// Stage records a successful check. A second check in the same session
// replaces the previous one.
func (f *DeleteFlows) Stage(sessionKey string, id int64, project string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staged[sessionKey] = stagedCheck{id: id, project: project, stagedAt: time.Now()}
}

// Matches reports whether the session has a live staged check for exactly
// this id and project.
func (f *DeleteFlows) Matches(sessionKey string, id int64, project string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	sc, ok := f.staged[sessionKey]
	if !ok {
		return false
	}
	if time.Since(sc.stagedAt) > stageTTL {
		delete(f.staged, sessionKey)
		return false
	}
	return sc.id == id && sc.project == project
}

// Staged returns the session's staged check, if any.
func (f *DeleteFlows) Staged(sessionKey string) (id int64, project string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sc, found := f.staged[sessionKey]
	if !found || time.Since(sc.stagedAt) > stageTTL {
		return 0, "", false
	}
	return sc.id, sc.project, true
}

func (f *DeleteFlows) Clear(sessionKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.staged, sessionKey)
}

// StartCleanup runs periodic removal of expired stages until Stop.
func (f *DeleteFlows) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.cleanupStale()
			case <-f.stopCleanup:
				return
			}
		}
	}()
}

func (f *DeleteFlows) cleanupStale() {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().Add(-stageTTL)
	for key, sc := range f.staged {
		if sc.stagedAt.Before(cutoff) {
			delete(f.staged, key)
		}
	}
}

// Stop shuts the cleanup goroutine down. Safe to call more than once.
func (f *DeleteFlows) Stop() {
	f.shutdownOnce.Do(func() {
		close(f.stopCleanup)
	})
}
