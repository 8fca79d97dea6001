package access

import (
	"strings"
	"testing"
)

func TestGenerateStaffIDPrefix(t *testing.T) {
	id := GenerateStaffID()
	if !strings.HasPrefix(id, "STAFF") {
		t.Fatalf("generated staff id %q missing STAFF prefix", id)
	}
	if len(id) <= len("STAFF") {
		t.Fatalf("generated staff id %q has no numeric suffix", id)
	}
}

func TestGenerateStaffIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateStaffID()
		if seen[id] {
			t.Fatalf("duplicate staff id %q", id)
		}
		seen[id] = true
	}
}
