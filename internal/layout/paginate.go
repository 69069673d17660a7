package layout

import (
	"errors"
	"fmt"
)

// Geometry is the page box in points.
type Geometry struct {
	PageWidth    float64 `yaml:"page_width"`
	PageHeight   float64 `yaml:"page_height"`
	MarginLeft   float64 `yaml:"margin_left"`
	MarginRight  float64 `yaml:"margin_right"`
	MarginTop    float64 `yaml:"margin_top"`
	MarginBottom float64 `yaml:"margin_bottom"`
	LineHeight   float64 `yaml:"line_height"`
	// SafetyMargin is kept free at the bottom of the content area.
	SafetyMargin float64 `yaml:"safety_margin"`
}

// A4 is the default geometry.
func A4() Geometry {
	return Geometry{
		PageWidth:    595.28,
		PageHeight:   841.89,
		MarginLeft:   75,
		MarginRight:  75,
		MarginTop:    100,
		MarginBottom: 100,
		LineHeight:   14,
		SafetyMargin: 14,
	}
}

func (g Geometry) ContentWidth() float64  { return g.PageWidth - g.MarginLeft - g.MarginRight }
func (g Geometry) ContentHeight() float64 { return g.PageHeight - g.MarginTop - g.MarginBottom }

// Budget is the usable height of one page.
func (g Geometry) Budget() float64 { return g.ContentHeight() - g.SafetyMargin }

// Style is how one line kind is set.
type Style struct {
	Face Face    `yaml:"face"`
	Size float64 `yaml:"size"`
	// Advance is the vertical step per physical line, in line heights.
	Advance float64 `yaml:"advance"`
	Indent  float64 `yaml:"indent"`
}

type Styles map[Kind]Style

func DefaultStyles(regular, bold, italic Face) Styles {
	return Styles{
		Heading1:  {Face: bold, Size: 18, Advance: 2},
		Heading2:  {Face: bold, Size: 13, Advance: 1.3},
		Quote:     {Face: italic, Size: 10, Advance: 1, Indent: 20},
		ListItem:  {Face: regular, Size: 11, Advance: 1},
		Paragraph: {Face: regular, Size: 11, Advance: 1},
		Blank:     {Face: regular, Size: 11, Advance: 0.5},
	}
}

// Step is the vertical space one physical line of kind takes.
func (s Styles) Step(k Kind, g Geometry) float64 { return s[k].Advance * g.LineHeight }

// Validate checks that every kind has a style and that each fits on a page.
func (s Styles) Validate(g Geometry) error {
	if g.ContentWidth() <= 0 || g.Budget() <= 0 {
		return errors.New("page geometry leaves no content area")
	}
	for _, k := range []Kind{Heading1, Heading2, Quote, ListItem, Paragraph, Blank} {
		st, ok := s[k]
		if !ok {
			return fmt.Errorf("no style for %s lines", k)
		}
		if st.Size <= 0 || st.Advance <= 0 {
			return fmt.Errorf("style for %s lines needs positive size and advance", k)
		}
		if s.Step(k, g) > g.Budget() {
			return fmt.Errorf("%s line does not fit the page height", k)
		}
		if st.Indent >= g.ContentWidth() {
			return fmt.Errorf("%s indent exceeds content width", k)
		}
	}
	return nil
}

// Line is a classified source line and its wrapped physical lines.
type Line struct {
	Text     string   `json:"text"`
	Kind     Kind     `json:"kind"`
	Physical []string `json:"physical"`
}

// Page is one laid-out page. Height never exceeds the geometry budget it
// was built for.
type Page struct {
	Lines  []Line  `json:"lines"`
	Height float64 `json:"height"`
}

// Paginate fills pages greedily, physical line by physical line, so a long
// paragraph may continue on the next page. Blank lines are not carried to
// the top of a page, and a heading moves to the next page when the first
// line after it would not fit.
func Paginate(lines []Line, g Geometry, styles Styles) []Page {
	p := &pager{g: g, styles: styles, budget: g.Budget(), curSrc: -1}
	for i, l := range lines {
		phys := l.Physical
		if l.Kind == Blank {
			phys = []string{""}
		}
		if len(phys) == 0 {
			continue
		}
		h := styles.Step(l.Kind, g)
		if (l.Kind == Heading1 || l.Kind == Heading2) && len(p.cur.Lines) > 0 {
			if !p.fits(h*float64(len(phys)) + p.keepWith(lines, i+1)) {
				p.flush()
			}
		}
		for _, ph := range phys {
			p.add(i, l, ph, h)
		}
	}
	p.flush()
	return p.pages
}

type pager struct {
	g      Geometry
	styles Styles
	budget float64
	pages  []Page
	cur    Page
	curSrc int
}

func (p *pager) fits(h float64) bool { return p.cur.Height+h <= p.budget }

func (p *pager) flush() {
	if len(p.cur.Lines) > 0 {
		p.pages = append(p.pages, p.cur)
	}
	p.cur = Page{}
	p.curSrc = -1
}

func (p *pager) add(src int, l Line, phys string, h float64) {
	if len(p.cur.Lines) > 0 && !p.fits(h) {
		p.flush()
	}
	if len(p.cur.Lines) == 0 && l.Kind == Blank {
		return
	}
	if src == p.curSrc {
		last := &p.cur.Lines[len(p.cur.Lines)-1]
		last.Physical = append(last.Physical, phys)
	} else {
		p.cur.Lines = append(p.cur.Lines, Line{Text: l.Text, Kind: l.Kind, Physical: []string{phys}})
		p.curSrc = src
	}
	p.cur.Height += h
}

// keepWith is the height of the blank lines from index i on plus the first
// physical line of the next non-blank line.
func (p *pager) keepWith(lines []Line, i int) float64 {
	var h float64
	for ; i < len(lines); i++ {
		h += p.styles.Step(lines[i].Kind, p.g)
		if lines[i].Kind != Blank {
			return h
		}
	}
	return 0
}
