package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/veleda/skald/internal/atlas"
)

func TestStore_AppendAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Append([]atlas.StoryMetadata{{ID: 1, Title: "First"}, {ID: 2, Title: "Second"}})
	s.Append([]atlas.StoryMetadata{{ID: 3, Title: "Third"}})

	snap := s.Snapshot()
	if len(snap.Stories) != 3 || snap.Stories[0].ID != 1 || snap.Stories[2].ID != 3 {
		t.Fatalf("snapshot stories = %#v, want 3 items in append order", snap.Stories)
	}
	if snap.Pages != 2 {
		t.Fatalf("Pages = %d, want 2", snap.Pages)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Stories[0].ID = 999
	snap2 := s.Snapshot()
	if snap2.Stories[0].ID != 1 {
		t.Fatalf("Snapshot should clone stories; got id %d want 1", snap2.Stories[0].ID)
	}
}

func TestStore_FailKeepsPreviousData(t *testing.T) {
	var s Store

	s.Append([]atlas.StoryMetadata{{ID: 1}})
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Fail(origErr)

	snap := s.Snapshot()
	if len(snap.Stories) != 1 || snap.Stories[0].ID != 1 {
		t.Fatalf("stories changed on error: got %#v want %#v", snap.Stories, prev.Stories)
	}
	if snap.Pages != prev.Pages {
		t.Fatalf("Pages changed on error: got %d want %d", snap.Pages, prev.Pages)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	// Initially zero failures
	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if snap.IsStalled() {
		t.Fatal("IsStalled() = true, want false with 0 failures")
	}

	// First failure
	s.Fail(errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsStalled() {
		t.Fatal("IsStalled() = true, want false with 1 failure")
	}

	// Second failure - now stalled
	s.Fail(errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", snap.ConsecutiveFailures)
	}
	if !snap.IsStalled() {
		t.Fatal("IsStalled() = false, want true with 2 failures")
	}

	// Success resets counter
	s.Append([]atlas.StoryMetadata{{ID: 7}})
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0 after success", snap.ConsecutiveFailures)
	}
	if snap.IsStalled() {
		t.Fatal("IsStalled() = true, want false after success")
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil after success", snap.LastError)
	}
}

func TestStore_HaltRecordsFatalError(t *testing.T) {
	var s Store

	s.Append([]atlas.StoryMetadata{{ID: 1}})
	s.Halt(errors.New("credentials rejected"))

	snap := s.Snapshot()
	if !snap.Halted {
		t.Fatal("Halted = false, want true")
	}
	if snap.LastError == nil {
		t.Fatal("LastError = nil, want halt error")
	}
	if len(snap.Stories) != 1 {
		t.Fatalf("stories dropped on halt: got %d want 1", len(snap.Stories))
	}
}

func TestStore_MarkExhausted(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.Exhausted {
		t.Fatal("Exhausted = true, want false initially")
	}

	s.MarkExhausted()
	snap = s.Snapshot()
	if !snap.Exhausted {
		t.Fatal("Exhausted = false, want true after MarkExhausted")
	}
}
