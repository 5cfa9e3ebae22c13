package xid

import (
	"strings"
	"testing"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := New("draft")
	if !strings.HasPrefix(id, "draft-") {
		t.Fatalf("expected draft- prefix, got %q", id)
	}
	if len(id) <= len("draft-") {
		t.Fatalf("expected a random suffix, got %q", id)
	}
}

func TestNewIsCollisionResistant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New("x")
		if seen[id] {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}
