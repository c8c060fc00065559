package event

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2026/3/15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2026/12/1", time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"2026/02/01", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"not a date", time.Time{}},
		{"2026/13/40", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNearest(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, ok := Nearest(nil); ok {
			t.Error("expected no selection from empty slice")
		}
	})

	t.Run("earliest wins", func(t *testing.T) {
		got, ok := Nearest([]Candidate{
			{ID: "late", Date: "2026/3/15"},
			{ID: "early", Date: "2026/2/01"},
			{ID: "mid", Date: "2026/2/20"},
		})
		if !ok || got.ID != "early" {
			t.Errorf("expected early, got %+v (ok=%v)", got, ok)
		}
	})

	t.Run("equal dates keep discovery order", func(t *testing.T) {
		got, ok := Nearest([]Candidate{
			{ID: "first", Date: "2026/5/5"},
			{ID: "second", Date: "2026/5/5"},
		})
		if !ok || got.ID != "first" {
			t.Errorf("expected stable tie-break to keep first, got %+v", got)
		}
	})

	t.Run("unparseable dates sort last", func(t *testing.T) {
		got, ok := Nearest([]Candidate{
			{ID: "bad", Date: "2026/99/99"},
			{ID: "good", Date: "2027/1/1"},
		})
		if !ok || got.ID != "good" {
			t.Errorf("expected parseable date to win, got %+v", got)
		}
	})

	t.Run("input not mutated", func(t *testing.T) {
		in := []Candidate{
			{ID: "b", Date: "2026/6/2"},
			{ID: "a", Date: "2026/6/1"},
		}
		Nearest(in)
		if in[0].ID != "b" || in[1].ID != "a" {
			t.Errorf("Nearest mutated its input: %+v", in)
		}
	})
}
