// Package plan is the static policy table describing what a report contains:
// its sections, their subsections, and how much text each subsection gets.
package plan

import (
	"fmt"
	"math"
	"strings"
)

type Variant string

const (
	Basic   Variant = "basic"
	Premium Variant = "premium"
)

func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case Basic:
		return Basic, nil
	case Premium:
		return Premium, nil
	}
	return "", fmt.Errorf("unknown report variant %q (want basic|premium)", s)
}

// DefaultCharsPerPage converts page targets into character budgets.
const DefaultCharsPerPage = 3000

type Subsection struct {
	Description string  `json:"description" yaml:"description"`
	TargetPages float64 `json:"target_pages" yaml:"target_pages"`
}

// TargetChars is the character budget for the subsection.
func (s Subsection) TargetChars(charsPerPage int) int {
	if charsPerPage <= 0 {
		charsPerPage = DefaultCharsPerPage
	}
	return int(math.Round(s.TargetPages * float64(charsPerPage)))
}

// ExpectedPages is the number of logical pages the response is split into.
func (s Subsection) ExpectedPages() int {
	return max(1, int(math.Ceil(s.TargetPages)))
}

type Section struct {
	Key         string       `json:"key" yaml:"key"`
	Title       string       `json:"title" yaml:"title"`
	Subsections []Subsection `json:"subsections,omitempty" yaml:"subsections,omitempty"`
	// PageTitles is used by flat sections (no subsections): one logical page each.
	PageTitles []string `json:"page_titles,omitempty" yaml:"page_titles,omitempty"`
}

// TargetPages sums the subsection targets, or counts the flat pages.
func (s Section) TargetPages() float64 {
	if len(s.Subsections) == 0 {
		return float64(len(s.PageTitles))
	}
	var total float64
	for _, sub := range s.Subsections {
		total += sub.TargetPages
	}
	return total
}

type Plan struct {
	Variant  Variant   `json:"variant" yaml:"variant"`
	Sections []Section `json:"sections" yaml:"sections"`
}

func (p Plan) TotalPages() float64 {
	var total float64
	for _, s := range p.Sections {
		total += s.TargetPages()
	}
	return total
}

// Section returns the section with the given key.
func (p Plan) Section(key string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// Titles lists every section title and subsection description, used as the
// heading vocabulary of the layout classifier.
func (p Plan) Titles() (sections, subsections []string) {
	for _, s := range p.Sections {
		sections = append(sections, s.Title)
		sections = append(sections, s.PageTitles...)
		for _, sub := range s.Subsections {
			subsections = append(subsections, sub.Description)
		}
	}
	return sections, subsections
}

// For returns the plan of variant. The result is a copy; callers may modify it.
func For(v Variant) (Plan, error) {
	var src Plan
	switch v {
	case Basic:
		src = basicPlan
	case Premium:
		src = premiumPlan
	default:
		return Plan{}, fmt.Errorf("unknown report variant %q", v)
	}
	out := Plan{Variant: src.Variant, Sections: make([]Section, len(src.Sections))}
	for i, s := range src.Sections {
		s.Subsections = append([]Subsection(nil), s.Subsections...)
		s.PageTitles = append([]string(nil), s.PageTitles...)
		out.Sections[i] = s
	}
	return out, nil
}
