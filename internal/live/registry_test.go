package live

import (
	"testing"
)

func TestRegistryBindAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Bind("conn-1", "C1", "alice", "instructor")

	binding, ok := r.Lookup("conn-1")
	if !ok {
		t.Fatal("Expected binding for conn-1")
	}
	if binding.CourseID != "C1" || binding.UserID != "alice" || binding.Role != "instructor" {
		t.Errorf("Unexpected binding: %+v", binding)
	}

	connID, ok := r.Resolve("C1", "alice")
	if !ok || connID != "conn-1" {
		t.Errorf("Expected Resolve to return conn-1, got %q (ok=%v)", connID, ok)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("ghost"); ok {
		t.Error("Expected no binding for an unknown connection")
	}
	if _, ok := r.Resolve("C1", "alice"); ok {
		t.Error("Expected no resolution in an empty registry")
	}
}

func TestRegistryUnbind(t *testing.T) {
	r := NewRegistry()
	r.Bind("conn-1", "C1", "alice", "student")
	r.Unbind("conn-1")

	if _, ok := r.Lookup("conn-1"); ok {
		t.Error("Expected binding removed")
	}
	if _, ok := r.Resolve("C1", "alice"); ok {
		t.Error("Expected reverse index entry removed")
	}

	// Idempotent on an already-absent connection.
	r.Unbind("conn-1")
}

func TestRegistryRebindEvictsStaleConnection(t *testing.T) {
	r := NewRegistry()
	r.Bind("conn-old", "C1", "alice", "student")
	r.Bind("conn-new", "C1", "alice", "student")

	if _, ok := r.Lookup("conn-old"); ok {
		t.Error("Expected stale binding evicted on re-join")
	}
	connID, ok := r.Resolve("C1", "alice")
	if !ok || connID != "conn-new" {
		t.Errorf("Expected alice resolved to conn-new, got %q", connID)
	}

	// Unbinding the stale connection later must not disturb the fresh one.
	r.Unbind("conn-old")
	if _, ok := r.Resolve("C1", "alice"); !ok {
		t.Error("Expected fresh binding to survive stale unbind")
	}
}

func TestRegistryConnections(t *testing.T) {
	r := NewRegistry()
	r.Bind("conn-1", "C1", "alice", "instructor")
	r.Bind("conn-2", "C1", "bob", "student")
	r.Bind("conn-3", "C2", "carol", "student")

	conns := r.Connections("C1")
	if len(conns) != 2 {
		t.Fatalf("Expected 2 connections in C1, got %d", len(conns))
	}
	seen := map[string]bool{}
	for _, c := range conns {
		seen[c] = true
	}
	if !seen["conn-1"] || !seen["conn-2"] {
		t.Errorf("Expected conn-1 and conn-2, got %v", conns)
	}

	if len(r.Connections("C3")) != 0 {
		t.Error("Expected no connections for an unknown course")
	}
}

func TestRegistryDropCourse(t *testing.T) {
	r := NewRegistry()
	r.Bind("conn-1", "C1", "alice", "instructor")
	r.Bind("conn-2", "C1", "bob", "student")
	r.Bind("conn-3", "C2", "carol", "student")

	r.DropCourse("C1")

	if len(r.Connections("C1")) != 0 {
		t.Error("Expected all C1 connections dropped")
	}
	if _, ok := r.Lookup("conn-1"); ok {
		t.Error("Expected conn-1 binding dropped with the course")
	}
	if _, ok := r.Lookup("conn-3"); !ok {
		t.Error("Expected other courses untouched")
	}
}
