// Package parse splits one generation response into ordered page chunks.
//
// Responses are expected to separate pages with markers produced by Marker.
// When the markers are missing or malformed the text is cut into equal
// slices instead, and every chunk is checked against minimum lengths.
package parse

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/thywilljoshua/survey-report/internal/failure"
)

// PageContent is one logical page of generated text.
type PageContent struct {
	SectionKey  string `json:"section"`
	Subsection  int    `json:"subsection"`
	GlobalIndex int    `json:"page"`
	// Heading is set when the chunk had no heading of its own.
	Heading string `json:"heading,omitempty"`
	RawText string `json:"text"`
}

// Text is the page text as it should be laid out.
func (p PageContent) Text() string {
	if p.Heading == "" {
		return p.RawText
	}
	return p.Heading + "\n\n" + strings.TrimSpace(p.RawText)
}

// Marker is the page boundary the generation service is asked to emit
// before page n (1-based).
func Marker(n int) string { return fmt.Sprintf("---PAGE %d---", n) }

// markerRE also matches markers sharing a line with text and markers
// wrapped in markdown emphasis.
var markerRE = regexp.MustCompile(`(?i)[#*_]*[ \t]*-{3,}[ \t]*(?:PAGE|СТРАНИЦА)[ \t]*\d+[ \t]*-{3,}[*_]*`)

type Thresholds struct {
	// MinTotal is the minimum rune count of the whole response.
	MinTotal int `yaml:"min_total"`
	// MinChunk is the minimum rune count of every page chunk.
	MinChunk int `yaml:"min_chunk"`
}

type Parser struct {
	Thresholds Thresholds
	// HeadingFor names a synthesized heading for chunk i of n (0-based).
	HeadingFor func(i, n int) string
	log        *zap.Logger
}

func New(th Thresholds, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{Thresholds: th, log: log}
}

// ParseSection splits raw into pages. With N well-formed markers it returns N
// trimmed chunks in input order. Without any marker it returns expected
// equal slices of raw itself, so concatenating them yields raw exactly. With
// malformed markers the slices are cut from the text with the markers and
// code fences removed.
func (p *Parser) ParseSection(raw string, expected int) ([]PageContent, error) {
	if expected < 1 {
		expected = 1
	}
	text := strings.TrimSpace(stripCodeFences(raw))
	if n := runeLen(text); n < p.Thresholds.MinTotal || n == 0 {
		return nil, &failure.DegenerateError{What: "response", Got: n, Min: p.Thresholds.MinTotal}
	}

	chunks, ok := splitMarkers(text)
	if ok {
		if len(chunks) != expected {
			p.log.Warn("page count differs from request",
				zap.Int("markers", len(chunks)), zap.Int("expected", expected))
		}
	} else {
		if markerRE.MatchString(text) {
			p.log.Warn("malformed page markers, using equal split", zap.Int("expected", expected))
			text = strings.TrimSpace(markerRE.ReplaceAllString(text, ""))
		} else {
			if expected > 1 {
				p.log.Warn("no page markers, using equal split", zap.Int("expected", expected))
			}
			text = raw
		}
		chunks = EqualSplit(text, expected)
	}

	pages := make([]PageContent, 0, len(chunks))
	for i, c := range chunks {
		if n := runeLen(strings.TrimSpace(c)); n < p.Thresholds.MinChunk || n == 0 {
			return nil, &failure.DegenerateError{What: fmt.Sprintf("page %d", i+1), Got: n, Min: p.Thresholds.MinChunk}
		}
		pc := PageContent{Subsection: -1, RawText: c}
		if !ok && !headingLike(c) {
			pc.Heading = p.heading(i, len(chunks))
		}
		pages = append(pages, pc)
	}
	return pages, nil
}

func (p *Parser) heading(i, n int) string {
	if p.HeadingFor != nil {
		return p.HeadingFor(i, n)
	}
	if n == 1 {
		return "Продолжение"
	}
	return fmt.Sprintf("Часть %d из %d", i+1, n)
}

// splitMarkers cuts text at page markers. Text before the first marker is
// kept with the first chunk. It reports false when there are no markers or a
// marker encloses nothing.
func splitMarkers(text string) ([]string, bool) {
	locs := markerRE.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil, false
	}
	lead := strings.TrimSpace(text[:locs[0][0]])
	chunks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		c := strings.TrimSpace(text[loc[1]:end])
		if c == "" {
			return nil, false
		}
		chunks = append(chunks, c)
	}
	if lead != "" {
		chunks[0] = lead + "\n\n" + chunks[0]
	}
	return chunks, true
}

// EqualSplit cuts text into n contiguous slices of equal rune length (the
// last ones one rune longer when it does not divide evenly). Concatenating
// the slices yields text. Slices may break words.
func EqualSplit(text string, n int) []string {
	r := []rune(text)
	if n < 1 {
		n = 1
	}
	out := make([]string, n)
	for i := range n {
		out[i] = string(r[i*len(r)/n : (i+1)*len(r)/n])
	}
	return out
}

// headingLike reports whether s opens with a short title line.
func headingLike(s string) bool {
	s = strings.TrimSpace(s)
	first, _, _ := strings.Cut(s, "\n")
	first = strings.TrimSpace(first)
	if first == "" || runeLen(first) >= 100 {
		return false
	}
	if strings.HasPrefix(first, "#") || strings.HasSuffix(first, ":") {
		return true
	}
	if first == s {
		return false
	}
	last, _ := lastRune(first)
	return runeLen(first) < 80 && !strings.ContainsRune(".!?…,;", last) && unicode.IsUpper(firstRune(first))
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func runeLen(s string) int { return len([]rune(s)) }

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) (rune, bool) {
	r := []rune(s)
	if len(r) == 0 {
		return 0, false
	}
	return r[len(r)-1], true
}
