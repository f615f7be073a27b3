package random

import "testing"

func TestSeededIsDeterministic(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 100; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("draw %d out of range: %v", i, x)
		}
	}
}

func TestSequenceRepeatsLast(t *testing.T) {
	s := NewSequence(0.1, 0.9)
	got := []float64{s.Float64(), s.Float64(), s.Float64()}
	want := []float64{0.1, 0.9, 0.9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestUniformAndIntn(t *testing.T) {
	if v := Uniform(Fixed(0.5), -0.025, 0.025); v != 0 {
		t.Fatalf("expected midpoint 0, got %v", v)
	}
	if v := Uniform(Fixed(0), 85, 99); v != 85 {
		t.Fatalf("expected lower bound, got %v", v)
	}
	if i := Intn(Fixed(0.999999), 4); i != 3 {
		t.Fatalf("expected last index, got %d", i)
	}
	if i := Intn(Fixed(0.5), 0); i != 0 {
		t.Fatalf("expected 0 for empty range, got %d", i)
	}
}
