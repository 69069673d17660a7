package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/survey-report/internal/failure"
)

func texts(pages []PageContent) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.RawText
	}
	return out
}

func TestTwoMarkersTwoPages(t *testing.T) {
	raw := "---PAGE 1---\n  Первая страница текста.  \n\n---PAGE 2---\nВторая страница текста.\n"
	pages, err := New(Thresholds{MinTotal: 10, MinChunk: 5}, nil).ParseSection(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Первая страница текста.", "Вторая страница текста."}, texts(pages))
	for _, p := range pages {
		assert.Empty(t, p.Heading)
	}
}

func TestMarkersAreTolerant(t *testing.T) {
	raw := "--- page 1 ---\nalpha text\n  ----СТРАНИЦА 2----  \nbeta text\n---Page3---\ngamma text"
	pages, err := New(Thresholds{}, nil).ParseSection(raw, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha text", "beta text", "gamma text"}, texts(pages))
}

func TestMarkerCountWins(t *testing.T) {
	raw := Marker(1) + "\none\n" + Marker(2) + "\ntwo\n" + Marker(3) + "\nthree"
	pages, err := New(Thresholds{}, nil).ParseSection(raw, 2)
	require.NoError(t, err)
	assert.Len(t, pages, 3)
}

func TestLeadingTextJoinsFirstChunk(t *testing.T) {
	raw := "Вступление\n" + Marker(1) + "\none\n" + Marker(2) + "\ntwo"
	pages, err := New(Thresholds{}, nil).ParseSection(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, "Вступление\n\none", pages[0].RawText)
}

func TestCodeFencesAreStripped(t *testing.T) {
	raw := "```markdown\n" + Marker(1) + "\none\n```"
	pages, err := New(Thresholds{}, nil).ParseSection(raw, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, texts(pages))
}

func TestMarkerlessFallbackReconstructsText(t *testing.T) {
	raw := strings.Repeat("Слово за словом складывается текст. ", 40)
	raw = strings.TrimSpace(raw)
	for _, n := range []int{1, 2, 3, 7} {
		pages, err := New(Thresholds{MinTotal: 100, MinChunk: 10}, nil).ParseSection(raw, n)
		require.NoError(t, err)
		require.Len(t, pages, n)
		var sb strings.Builder
		for _, p := range pages {
			assert.NotEmpty(t, p.RawText)
			sb.WriteString(p.RawText)
		}
		assert.Equal(t, raw, sb.String(), "n=%d", n)
	}
}

func TestMarkerlessFallbackKeepsSurroundingText(t *testing.T) {
	raw := "\n```\n  " + strings.Repeat("Текст без разметки страниц. ", 20) + "\n```\n\n"
	pages, err := New(Thresholds{MinTotal: 100, MinChunk: 10}, nil).ParseSection(raw, 3)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, raw, strings.Join(texts(pages), ""))
}

func TestInlineMarkersSplitPages(t *testing.T) {
	raw := "---PAGE 1--- Первая страница\nтекст один.\nКонец. **---PAGE 2---** Вторая страница\nтекст два."
	pages, err := New(Thresholds{}, nil).ParseSection(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Первая страница\nтекст один.\nКонец.",
		"Вторая страница\nтекст два.",
	}, texts(pages))
	for _, p := range pages {
		assert.NotContains(t, p.Text(), "PAGE")
	}
}

func TestFallbackSynthesizesHeading(t *testing.T) {
	raw := strings.Repeat("обычный текст без заголовка ", 20)
	p := New(Thresholds{}, nil)
	p.HeadingFor = func(i, n int) string { return "Раздел" }
	pages, err := p.ParseSection(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, "Раздел", pages[0].Heading)
	assert.True(t, strings.HasPrefix(pages[0].Text(), "Раздел\n\n"))
}

func TestFallbackKeepsExistingHeading(t *testing.T) {
	raw := "Ваш стиль мышления\nТекст страницы, довольно длинный."
	pages, err := New(Thresholds{}, nil).ParseSection(raw, 1)
	require.NoError(t, err)
	assert.Empty(t, pages[0].Heading)
}

func TestMalformedMarkersFallBack(t *testing.T) {
	raw := Marker(1) + "\n" + Marker(2) + "\n" + strings.Repeat("a", 40)
	pages, err := New(Thresholds{}, nil).ParseSection(raw, 2)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, strings.Repeat("a", 40), pages[0].RawText+pages[1].RawText)
}

func TestShortResponseIsDegenerate(t *testing.T) {
	raw := strings.Repeat("x", 50)
	_, err := New(Thresholds{MinTotal: 3000, MinChunk: 500}, nil).ParseSection(raw, 1)
	var de *failure.DegenerateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 50, de.Got)
	assert.Equal(t, failure.KindDegenerateResponse, failure.KindOf(err))
}

func TestShortChunkIsDegenerate(t *testing.T) {
	raw := Marker(1) + "\n" + strings.Repeat("x", 300) + "\n" + Marker(2) + "\nкоротко"
	_, err := New(Thresholds{MinTotal: 100, MinChunk: 50}, nil).ParseSection(raw, 2)
	var de *failure.DegenerateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "page 2", de.What)
}

func TestEmptyResponseIsDegenerateEvenWithoutThresholds(t *testing.T) {
	_, err := New(Thresholds{}, nil).ParseSection("   \n ", 1)
	assert.Error(t, err)
}

func TestEqualSplit(t *testing.T) {
	assert.Equal(t, []string{"ab", "cd", "efg"}, EqualSplit("abcdefg", 3))
	assert.Equal(t, []string{"абв"}, EqualSplit("абв", 0))
}
