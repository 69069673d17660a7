package conversation

import (
	"github.com/thywilljoshua/survey-report/internal/ai"
)

// Budget bounds the conversation size in estimated tokens.
type Budget struct {
	CharsPerToken float64
	// Upper triggers trimming when the estimate exceeds it.
	Upper int
	// Lower is the size trimming works down to.
	Lower int
}

func DefaultBudget() Budget {
	return Budget{CharsPerToken: 4, Upper: 100_000, Lower: 70_000}
}

// EstimateTokens converts a character count into tokens.
func (b Budget) EstimateTokens(chars int) int {
	cpt := b.CharsPerToken
	if cpt <= 0 {
		cpt = 4
	}
	return int(float64(chars) / cpt)
}

// TrimStrategy shrinks a turn list until fits reports true or nothing more can go.
type TrimStrategy interface {
	Trim(turns []ai.Turn, fits func([]ai.Turn) bool) []ai.Turn
}

// KeepPrefixDropOldestPairs keeps the first Prefix turns (system, submitted
// data, acknowledgment) and drops user/assistant pairs oldest first.
type KeepPrefixDropOldestPairs struct {
	Prefix int
}

func (s KeepPrefixDropOldestPairs) Trim(turns []ai.Turn, fits func([]ai.Turn) bool) []ai.Turn {
	out := append([]ai.Turn(nil), turns...)
	for !fits(out) && len(out) >= s.Prefix+2 {
		out = append(out[:s.Prefix], out[s.Prefix+2:]...)
	}
	return out
}

// Buffer is the ordered turn list of one conversation. It grows by Append and
// shrinks only through its trim strategy.
type Buffer struct {
	turns    []ai.Turn
	budget   Budget
	strategy TrimStrategy
}

func NewBuffer(budget Budget, strategy TrimStrategy) *Buffer {
	if strategy == nil {
		strategy = KeepPrefixDropOldestPairs{Prefix: 3}
	}
	return &Buffer{budget: budget, strategy: strategy}
}

func (b *Buffer) Append(t ...ai.Turn) { b.turns = append(b.turns, t...) }

func (b *Buffer) Len() int { return len(b.turns) }

// Turns returns a copy of the current turns.
func (b *Buffer) Turns() []ai.Turn { return append([]ai.Turn(nil), b.turns...) }

// Estimate is the token estimate of the buffer plus any pending turns.
func (b *Buffer) Estimate(pending ...ai.Turn) int {
	return b.budget.EstimateTokens(chars(b.turns) + chars(pending))
}

// Trim applies the strategy when the estimate (including pending turns)
// exceeds the upper ceiling. It reports how many turns were dropped.
func (b *Buffer) Trim(pending ...ai.Turn) int {
	extra := chars(pending)
	if b.budget.EstimateTokens(chars(b.turns)+extra) <= b.budget.Upper {
		return 0
	}
	before := len(b.turns)
	b.turns = b.strategy.Trim(b.turns, func(ts []ai.Turn) bool {
		return b.budget.EstimateTokens(chars(ts)+extra) <= b.budget.Lower
	})
	return before - len(b.turns)
}

func chars(turns []ai.Turn) int {
	n := 0
	for _, t := range turns {
		n += len([]rune(t.Content))
	}
	return n
}
