package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind is the closed set of line classes.
type Kind string

const (
	Blank     Kind = "blank"
	Heading1  Kind = "heading1"
	Heading2  Kind = "heading2"
	Quote     Kind = "quote"
	ListItem  Kind = "list_item"
	Paragraph Kind = "paragraph"
)

const (
	maxHeading1Runes = 100
	maxHeading2Runes = 80
)

var ordinalRE = regexp.MustCompile(`^\d+[.)]\s`)

// quotePairs maps opening quotation marks to their closing mark.
var quotePairs = map[rune]rune{
	'«': '»',
	'“': '”',
	'„': '“',
	'"': '"',
}

// rule is one ordered classification predicate.
type rule struct {
	kind  Kind
	match func(c *Classifier, line string) bool
}

// rules run in order; the first match wins. Quote continuation is handled
// before them in Classify.
var rules = []rule{
	{Blank, isBlank},
	{Heading1, isHeading1},
	{Heading2, isHeading2},
	{Quote, isQuoteStart},
	{ListItem, isListItem},
}

// Classifier assigns a Kind to each source line. It keeps state across
// lines to track quotations that span several of them, so one Classifier
// serves one text at a time.
type Classifier struct {
	sections    map[string]bool
	subsections map[string]bool
	closer      rune // non-zero while inside a multi-line quote
}

// NewClassifier builds a classifier whose heading vocabulary is the given
// section and subsection titles.
func NewClassifier(sections, subsections []string) *Classifier {
	c := &Classifier{sections: map[string]bool{}, subsections: map[string]bool{}}
	for _, s := range sections {
		c.sections[normalize(s)] = true
	}
	for _, s := range subsections {
		c.subsections[normalize(s)] = true
	}
	return c
}

func (c *Classifier) Reset() { c.closer = 0 }

// Classify returns the kind of line given the lines seen before it.
func (c *Classifier) Classify(line string) Kind {
	line = strings.TrimSpace(line)
	if c.closer != 0 {
		if isBlank(c, line) {
			c.closer = 0
			return Blank
		}
		if strings.ContainsRune(line, c.closer) {
			c.closer = 0
		}
		return Quote
	}
	for _, r := range rules {
		if r.match(c, line) {
			if r.kind == Quote {
				c.openQuote(line)
			}
			return r.kind
		}
	}
	return Paragraph
}

// ClassifyAll classifies lines as one text, starting from a fresh state.
func (c *Classifier) ClassifyAll(lines []string) []Kind {
	c.Reset()
	out := make([]Kind, len(lines))
	for i, l := range lines {
		out[i] = c.Classify(l)
	}
	return out
}

func (c *Classifier) openQuote(line string) {
	open, size := utf8.DecodeRuneInString(line)
	closer := quotePairs[open]
	if !strings.ContainsRune(line[size:], closer) {
		c.closer = closer
	}
}

func isBlank(_ *Classifier, line string) bool { return line == "" }

func isHeading1(c *Classifier, line string) bool {
	return utf8.RuneCountInString(line) < maxHeading1Runes && c.sections[normalize(line)]
}

func isHeading2(c *Classifier, line string) bool {
	if utf8.RuneCountInString(line) >= maxHeading2Runes || isListItem(c, line) || isQuoteStart(c, line) {
		return false
	}
	return strings.HasSuffix(line, ":") || c.subsections[normalize(line)]
}

func isQuoteStart(_ *Classifier, line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	_, ok := quotePairs[r]
	return ok
}

func isListItem(_ *Classifier, line string) bool {
	for _, b := range []string{"• ", "- ", "* ", "– ", "— "} {
		if strings.HasPrefix(line, b) {
			return true
		}
	}
	return ordinalRE.MatchString(line)
}

// normalize folds a title for vocabulary lookup.
func normalize(s string) string {
	s = strings.TrimSpace(strings.TrimLeft(s, "# "))
	s = strings.TrimRight(s, " :?.!")
	return strings.ToLower(s)
}
