package ledger

import (
	"testing"
	"time"
)

func TestFlowStageMatchClear(t *testing.T) {
	f := NewDeleteFlows()

	if f.Matches("sess", 1, "oikos Solar") {
		t.Fatalf("idle flow must not match")
	}

	f.Stage("sess", 1, "oikos Solar")
	if !f.Matches("sess", 1, "oikos Solar") {
		t.Fatalf("staged check must match")
	}
	if f.Matches("sess", 2, "oikos Solar") {
		t.Fatalf("different id must not match")
	}
	if f.Matches("sess", 1, "oikos Catalyst") {
		t.Fatalf("different project must not match")
	}
	if f.Matches("other", 1, "oikos Solar") {
		t.Fatalf("other session must not match")
	}

	f.Clear("sess")
	if f.Matches("sess", 1, "oikos Solar") {
		t.Fatalf("cleared flow must not match")
	}
}

func TestFlowRestageReplaces(t *testing.T) {
	f := NewDeleteFlows()
	f.Stage("sess", 1, "oikos Solar")
	f.Stage("sess", 5, "oikos Solar")
	if f.Matches("sess", 1, "oikos Solar") {
		t.Fatalf("replaced stage must not match old id")
	}
	id, project, ok := f.Staged("sess")
	if !ok || id != 5 || project != "oikos Solar" {
		t.Fatalf("expected staged (5, oikos Solar), got (%d, %q, %v)", id, project, ok)
	}
}

func TestFlowCleanupStale(t *testing.T) {
	f := NewDeleteFlows()
	f.Stage("sess", 1, "oikos Solar")

	f.mu.Lock()
	sc := f.staged["sess"]
	sc.stagedAt = time.Now().Add(-stageTTL - time.Minute)
	f.staged["sess"] = sc
	f.mu.Unlock()

	if f.Matches("sess", 1, "oikos Solar") {
		t.Fatalf("expired stage must not match")
	}

	f.Stage("old", 2, "oikos Solar")
	f.mu.Lock()
	sc = f.staged["old"]
	sc.stagedAt = time.Now().Add(-stageTTL - time.Minute)
	f.staged["old"] = sc
	f.mu.Unlock()

	f.cleanupStale()
	if _, _, ok := f.Staged("old"); ok {
		t.Fatalf("cleanup must drop expired stages")
	}
}

func TestFlowStopIdempotent(t *testing.T) {
	f := NewDeleteFlows()
	f.StartCleanup(time.Millisecond)
	f.Stop()
	f.Stop()
}
