package services

import (
	"context"
	"math"
	"testing"
)

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical after normalize", "Morning Run", "morning run", 1},
		{"synonym keywords match", "Go jogging", "Running", 1},
		{"disjoint keywords", "Read books", "Gym workout", 0},
		{"partial keyword overlap", "Run and read", "Morning run", 0.5},
		{"empty title", "", "Morning run", 0},
		{"levenshtein near-duplicate", "Piano", "Pianos", 1 - 1.0/6},
	}
	for _, tt := range tests {
		if got := TitleSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: TitleSimilarity(%q, %q) = %v, want %v", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTitleSimilarity_UnrelatedTitlesScoreLow(t *testing.T) {
	if got := TitleSimilarity("Piano", "Guitar"); got >= duplicateTitleThreshold {
		t.Errorf("unrelated titles scored %v, want below %v", got, duplicateTitleThreshold)
	}
}

func TestFindSimilar(t *testing.T) {
	run := testCard("c-run", "me", "aerobic", "2026-03-10")
	run.Title = "Morning run"
	read := testCard("c-read", "me", "reading", "2026-03-10")
	read.Title = "Read books"
	other := testCard("c-other", "someone-else", "aerobic", "2026-03-10")
	other.Title = "Jogging"

	svc := NewTitleCheckService(newFakeCardStore(run, read, other))

	similar, err := svc.FindSimilar(context.Background(), "me", "Jogging in the morning")
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(similar) != 1 || similar[0].ID != "c-run" {
		ids := make([]string, 0, len(similar))
		for _, c := range similar {
			ids = append(ids, c.ID)
		}
		t.Fatalf("got %v, want only c-run", ids)
	}
}

func TestFindSimilar_NoMatches(t *testing.T) {
	read := testCard("c-read", "me", "reading", "2026-03-10")
	read.Title = "Read books"
	svc := NewTitleCheckService(newFakeCardStore(read))

	similar, err := svc.FindSimilar(context.Background(), "me", "Drink water")
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(similar) != 0 {
		t.Fatalf("got %d matches, want none", len(similar))
	}
}
