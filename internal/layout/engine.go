// Package layout turns generated text into pages: markdown cleanup, line
// classification, word wrap and pagination. It does no I/O; text widths
// come from a Measurer, so planning and rendering share one computed split.
package layout

// Engine lays out text with fixed geometry, styles and heading vocabulary.
type Engine struct {
	Measurer    Measurer
	Geometry    Geometry
	Styles      Styles
	sections    []string
	subsections []string
}

func NewEngine(m Measurer, g Geometry, styles Styles, sections, subsections []string) (*Engine, error) {
	if err := styles.Validate(g); err != nil {
		return nil, err
	}
	return &Engine{Measurer: m, Geometry: g, Styles: styles, sections: sections, subsections: subsections}, nil
}

// Lines cleans up, classifies and wraps text without paginating it.
func (e *Engine) Lines(text string) []Line {
	src := Cleanup(text)
	kinds := NewClassifier(e.sections, e.subsections).ClassifyAll(src)
	out := make([]Line, len(src))
	for i, s := range src {
		out[i] = Line{Text: s, Kind: kinds[i]}
		if kinds[i] == Blank {
			continue
		}
		st := e.Styles[kinds[i]]
		out[i].Physical = Wrap(e.Measurer, s, st.Face, st.Size, e.Geometry.ContentWidth()-st.Indent)
	}
	return out
}

// Layout returns the pages of text. Empty text yields no pages.
func (e *Engine) Layout(text string) []Page {
	return Paginate(e.Lines(text), e.Geometry, e.Styles)
}
