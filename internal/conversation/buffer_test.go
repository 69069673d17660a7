package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thywilljoshua/survey-report/internal/ai"
)

func TestTrimNoopUnderCeiling(t *testing.T) {
	b := NewBuffer(Budget{CharsPerToken: 1, Upper: 100, Lower: 50}, nil)
	b.Append(ai.Turn{Role: ai.RoleSystem, Content: "sys"})
	assert.Zero(t, b.Trim(ai.Turn{Role: ai.RoleUser, Content: "hi"}))
	assert.Equal(t, 1, b.Len())
}

func TestTrimNeverTouchesPrefix(t *testing.T) {
	b := NewBuffer(Budget{CharsPerToken: 1, Upper: 10, Lower: 5}, nil)
	big := strings.Repeat("x", 100)
	b.Append(
		ai.Turn{Role: ai.RoleSystem, Content: big},
		ai.Turn{Role: ai.RoleUser, Content: big},
		ai.Turn{Role: ai.RoleAssistant, Content: big},
		ai.Turn{Role: ai.RoleUser, Content: "q"},
		ai.Turn{Role: ai.RoleAssistant, Content: "a"},
	)
	assert.Equal(t, 2, b.Trim())
	assert.Equal(t, 3, b.Len())
	// Nothing left to drop.
	assert.Zero(t, b.Trim())
}

func TestKeepPrefixDropOldestPairsOrder(t *testing.T) {
	turns := []ai.Turn{
		{Content: "s"}, {Content: "d"}, {Content: "ack"},
		{Content: "q1"}, {Content: "a1"},
		{Content: "q2"}, {Content: "a2"},
		{Content: "q3"}, {Content: "a3"},
	}
	out := KeepPrefixDropOldestPairs{Prefix: 3}.Trim(turns, func(ts []ai.Turn) bool { return len(ts) <= 5 })
	got := make([]string, len(out))
	for i, t := range out {
		got[i] = t.Content
	}
	assert.Equal(t, []string{"s", "d", "ack", "q3", "a3"}, got)
	assert.Len(t, turns, 9, "input must not be modified")
}
