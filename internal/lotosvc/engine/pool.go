package engine

import "errors"

var (
	ErrPoolExhausted = errors.New("draw pool exhausted")
	ErrNotInPool     = errors.New("number not in draw pool")
)

// DrawPool is the shrinking set of undrawn numbers plus the append-only drawn
// sequence. Drawn order is significant: it is the evaluator's input.
type DrawPool struct {
	remaining []string
	drawn     []string
	size      int
}

// NewDrawPool prepares the full "01"..max set.
func NewDrawPool(max int) *DrawPool {
	remaining := make([]string, 0, max)
	for n := 1; n <= max; n++ {
		remaining = append(remaining, FormatNumber(n))
	}
	return &DrawPool{remaining: remaining, size: max}
}

func (p *DrawPool) Size() int {
	return p.size
}

func (p *DrawPool) Left() int {
	return len(p.remaining)
}

// Remaining returns a copy of the undrawn numbers.
func (p *DrawPool) Remaining() []string {
	return append([]string(nil), p.remaining...)
}

// Drawn returns a copy of the drawn sequence in draw order.
func (p *DrawPool) Drawn() []string {
	return append([]string(nil), p.drawn...)
}

func (p *DrawPool) Contains(number string) bool {
	for _, v := range p.remaining {
		if v == number {
			return true
		}
	}
	return false
}

// SampleNext picks a uniformly random undrawn number without removing it, so
// the reveal animation can run before the draw is committed.
func (p *DrawPool) SampleNext() (string, error) {
	if len(p.remaining) == 0 {
		return "", ErrPoolExhausted
	}
	return p.remaining[randIntn(len(p.remaining))], nil
}

// Draw removes number from the pool and appends it to the drawn sequence.
// Numbers not in the pool are rejected rather than silently swallowed.
func (p *DrawPool) Draw(number string) error {
	for i, v := range p.remaining {
		if v == number {
			p.remaining = append(p.remaining[:i], p.remaining[i+1:]...)
			p.drawn = append(p.drawn, number)
			return nil
		}
	}
	return ErrNotInPool
}
