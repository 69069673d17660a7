package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPlan(t *testing.T) {
	p, err := For(Basic)
	require.NoError(t, err)
	require.Len(t, p.Sections, 1)
	assert.Empty(t, p.Sections[0].Subsections)
	assert.Equal(t, 3.0, p.TotalPages())
}

func TestPremiumPlanTotals(t *testing.T) {
	p, err := For(Premium)
	require.NoError(t, err)
	require.Len(t, p.Sections, 9)
	assert.InDelta(t, 63.0, p.TotalPages(), 1e-9)

	seen := map[string]bool{}
	for _, s := range p.Sections {
		assert.False(t, seen[s.Key], "duplicate section key %s", s.Key)
		seen[s.Key] = true
		assert.NotEmpty(t, s.Subsections, s.Key)
		for _, sub := range s.Subsections {
			assert.Greater(t, sub.TargetPages, 0.0)
			assert.NotEmpty(t, sub.Description)
		}
	}
}

func TestFractionalTargets(t *testing.T) {
	sub := Subsection{Description: "x", TargetPages: 1.5}
	assert.Equal(t, 4500, sub.TargetChars(DefaultCharsPerPage))
	assert.Equal(t, 2, sub.ExpectedPages())

	half := Subsection{TargetPages: 0.5}
	assert.Equal(t, 1, half.ExpectedPages())
	assert.Equal(t, 1500, half.TargetChars(0))
}

func TestForReturnsCopy(t *testing.T) {
	p, err := For(Premium)
	require.NoError(t, err)
	p.Sections[0].Subsections[0].TargetPages = 99

	again, err := For(Premium)
	require.NoError(t, err)
	assert.Equal(t, 2.0, again.Sections[0].Subsections[0].TargetPages)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant(" Premium ")
	require.NoError(t, err)
	assert.Equal(t, Premium, v)
	_, err = ParseVariant("gold")
	assert.Error(t, err)
}

func TestTitles(t *testing.T) {
	p, _ := For(Premium)
	sections, subs := p.Titles()
	assert.Contains(t, sections, "Зоны роста")
	assert.Contains(t, subs, "Ограничивающие убеждения")
}
