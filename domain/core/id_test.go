package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDString tests ID string conversion
func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("Expected String() to return 'test-123', got '%s'", id.String())
	}
}

// TestParseSnapshotID tests snapshot ID parsing
func TestParseSnapshotID(t *testing.T) {
	tests := []struct {
		input    string
		expected SnapshotID
		hasError bool
	}{
		{"valid-id", SnapshotID("valid-id"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseSnapshotID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestVersionTagDeterminism tests that identical bytes produce identical tags
func TestVersionTagDeterminism(t *testing.T) {
	a := NewVersionTag([]byte("P1|WHEAT|2023|6.5|0\n"))
	b := NewVersionTag([]byte("P1|WHEAT|2023|6.5|0\n"))
	if a != b {
		t.Errorf("Expected identical tags for identical content, got %s and %s", a, b)
	}

	c := NewVersionTag([]byte("P1|WHEAT|2023|6.6|0\n"))
	if a == c {
		t.Error("Expected different tags for different content")
	}
}

// TestHashEquals tests hash comparison
func TestHashEquals(t *testing.T) {
	h := NewHash([]byte("data"))
	if !h.Equals(NewHash([]byte("data"))) {
		t.Error("Expected equal hashes for equal data")
	}
	if h.IsEmpty() {
		t.Error("Expected non-empty hash")
	}
}
