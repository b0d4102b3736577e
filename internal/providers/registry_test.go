package providers

import (
	"testing"

	"github.com/quotadeck/quotadeck/internal/core"
)

func TestAllAdapterOrderAndDisjointness(t *testing.T) {
	adapters := All(nil)

	wantIDs := []string{"antigravity", "claude", "codex"}
	if len(adapters) != len(wantIDs) {
		t.Fatalf("adapters = %d, want %d", len(adapters), len(wantIDs))
	}
	for i, id := range wantIDs {
		if adapters[i].ID() != id {
			t.Errorf("adapters[%d] = %s, want %s", i, adapters[i].ID(), id)
		}
	}

	// Every auth tag is claimed by exactly one adapter.
	for _, tag := range wantIDs {
		matches := 0
		for _, a := range adapters {
			if a.Matches(core.AuthFile{Provider: tag}) {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("tag %q matched %d adapters, want 1", tag, matches)
		}
	}
}
