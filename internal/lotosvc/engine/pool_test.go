package engine

import (
	"errors"
	"testing"
)

func TestNewDrawPool_FullRange(t *testing.T) {
	p := NewDrawPool(99)
	if p.Left() != 99 {
		t.Fatalf("unexpected pool size: got=%d want=99", p.Left())
	}
	rem := p.Remaining()
	if rem[0] != "01" || rem[98] != "99" {
		t.Fatalf("unexpected bounds: %q..%q", rem[0], rem[98])
	}
}

func TestDraw_MovesExactlyOneNumber(t *testing.T) {
	p := NewDrawPool(90)
	if err := p.Draw("42"); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if p.Left()+len(p.Drawn()) != 90 {
		t.Fatalf("pool+drawn mismatch: %d+%d", p.Left(), len(p.Drawn()))
	}
	if p.Contains("42") {
		t.Fatal("drawn number still in pool")
	}
	if got := p.Drawn(); len(got) != 1 || got[0] != "42" {
		t.Fatalf("unexpected drawn sequence: %v", got)
	}
}

func TestDraw_RejectsUnknownNumber(t *testing.T) {
	p := NewDrawPool(90)
	if err := p.Draw("42"); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if err := p.Draw("42"); !errors.Is(err, ErrNotInPool) {
		t.Fatalf("expected ErrNotInPool, got %v", err)
	}
	if len(p.Drawn()) != 1 {
		t.Fatalf("rejected draw must not touch history, got %v", p.Drawn())
	}
}

func TestSampleNext_PeeksWithoutRemoving(t *testing.T) {
	original := randIntn
	randIntn = func(n int) int { return 0 }
	defer func() { randIntn = original }()

	p := NewDrawPool(90)
	n, err := p.SampleNext()
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if n != "01" {
		t.Fatalf("unexpected sample: got=%q want=01", n)
	}
	if p.Left() != 90 {
		t.Fatal("sample must not remove from the pool")
	}
}

func TestPool_Exhaustion(t *testing.T) {
	p := NewDrawPool(90)
	for p.Left() > 0 {
		n, err := p.SampleNext()
		if err != nil {
			t.Fatalf("sample failed: %v", err)
		}
		if err := p.Draw(n); err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		if p.Left()+len(p.Drawn()) != 90 {
			t.Fatalf("invariant broken at %d drawn", len(p.Drawn()))
		}
	}
	if _, err := p.SampleNext(); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	if len(p.Drawn()) != 90 {
		t.Fatalf("unexpected drawn count: %d", len(p.Drawn()))
	}
}
