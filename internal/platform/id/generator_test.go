package id

import (
	"strings"
	"testing"
)

func TestRandomGenerator_Prefix(t *testing.T) {
	t.Parallel()

	gen := NewRandomGenerator().WithPrefix("team_")
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if !strings.HasPrefix(first, "team_") || len(first) != len("team_")+32 {
		t.Fatalf("unexpected id shape: %s", first)
	}
	if first == second {
		t.Fatalf("expected distinct ids")
	}
}

func TestSequence(t *testing.T) {
	t.Parallel()

	seq := &Sequence{Prefix: "e"}
	a, _ := seq.NewID()
	b, _ := seq.NewID()
	if a != "e1" || b != "e2" {
		t.Fatalf("unexpected sequence: %s %s", a, b)
	}
}
