package ledger

import (
	"testing"
	"time"

	"snaptour/pkg/model"
)

func makeStop(name string) *model.TourStop {
	return &model.TourStop{
		Landmark:  model.LandmarkInfo{Name: name, City: "Paris", Country: "France", Latitude: 48.85, Longitude: 2.29},
		Image:     &model.Image{Data: []byte{1, 2, 3}, MIME: "image/jpeg"},
		History:   "Some history.",
		Audio:     "AAEC",
		CreatedAt: time.Now(),
	}
}

func TestAppendDeduplicatesByName(t *testing.T) {
	l := New()

	if !l.Append(makeStop("Eiffel Tower")) {
		t.Fatal("first append must succeed")
	}
	if !l.Append(makeStop("Louvre")) {
		t.Fatal("second landmark must append")
	}
	if l.Append(makeStop("Eiffel Tower")) {
		t.Error("duplicate landmark must be rejected")
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 stops, got %d", l.Len())
	}
}

func TestSelectByIndex(t *testing.T) {
	l := New()
	names := []string{"A", "B", "C", "D", "E"}
	for _, n := range names {
		l.Append(makeStop(n))
	}

	stop, err := l.SelectByIndex(2)
	if err != nil {
		t.Fatalf("SelectByIndex failed: %v", err)
	}
	if stop.Landmark.Name != "C" {
		t.Errorf("expected C, got %s", stop.Landmark.Name)
	}

	// The view is shared, not cloned
	again, _ := l.SelectByIndex(2)
	if again != stop {
		t.Error("expected the same stop instance")
	}

	for _, idx := range []int{-1, 5, 100} {
		if _, err := l.SelectByIndex(idx); err == nil {
			t.Errorf("expected bounds error for index %d", idx)
		}
	}
}

func TestSummarizeOrdered(t *testing.T) {
	l := New()
	for _, n := range []string{"First", "Second", "Third"} {
		l.Append(makeStop(n))
	}

	summary := l.Summarize()
	if len(summary) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(summary))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if summary[i].Name != want {
			t.Errorf("index %d: expected %s, got %s", i, want, summary[i].Name)
		}
	}
}

func TestClearReleasesResources(t *testing.T) {
	l := New()
	stop := makeStop("Eiffel Tower")
	l.Append(stop)

	l.Clear()

	if l.Len() != 0 {
		t.Error("expected empty ledger after clear")
	}
	if !stop.Image.Released() {
		t.Error("expected image resource released on clear")
	}

	// Cleared ledger accepts the landmark again
	if !l.Append(makeStop("Eiffel Tower")) {
		t.Error("expected append to succeed after clear")
	}
}
