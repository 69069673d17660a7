// Package render draws laid-out pages onto template backgrounds, one PDF
// file per page.
package render

import (
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"go.uber.org/zap"

	"github.com/thywilljoshua/survey-report/internal/failure"
	"github.com/thywilljoshua/survey-report/internal/layout"
)

type RGB struct{ R, G, B int }

// DefaultColors uses the accent colors for headings and one base color
// for everything else.
func DefaultColors() map[layout.Kind]RGB {
	base := RGB{51, 51, 51}
	return map[layout.Kind]RGB{
		layout.Heading1:  {46, 134, 171},
		layout.Heading2:  {162, 59, 114},
		layout.Quote:     base,
		layout.ListItem:  base,
		layout.Paragraph: base,
		layout.Blank:     base,
	}
}

// Result reports what a render call did.
type Result struct {
	Lines   int `json:"lines"`
	Dropped int `json:"dropped"`
}

// Renderer is safe for concurrent use; every call builds its own document.
type Renderer struct {
	fonts    *FontSet
	geometry layout.Geometry
	styles   layout.Styles
	colors   map[layout.Kind]RGB
	log      *zap.Logger
}

func New(fonts *FontSet, g layout.Geometry, styles layout.Styles, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{fonts: fonts, geometry: g, styles: styles, colors: DefaultColors(), log: log}
}

// Render draws page over the background template and writes a one-page
// PDF to out. Lines that would cross the bottom margin are dropped and
// counted; pagination is expected to make that impossible.
func (r *Renderer) Render(page layout.Page, background, out string) (Result, error) {
	pdf, err := r.start(background)
	if err != nil {
		return Result{}, err
	}
	g := r.geometry
	limit := g.PageHeight - g.MarginBottom
	y := g.MarginTop
	var res Result
	for _, line := range page.Lines {
		st := r.styles[line.Kind]
		step := r.styles.Step(line.Kind, g)
		if line.Kind == layout.Blank {
			y += step * float64(len(line.Physical))
			continue
		}
		c := r.colors[line.Kind]
		pdf.SetFont(st.Face.Family, st.Face.Style, st.Size)
		pdf.SetTextColor(c.R, c.G, c.B)
		for _, phys := range line.Physical {
			if y+step > limit {
				res.Dropped++
				r.log.Warn("line dropped past bottom margin",
					zap.String("kind", string(failure.KindLayoutOverflow)),
					zap.String("line_kind", string(line.Kind)),
					zap.Float64("y", y),
					zap.String("text", phys))
				continue
			}
			pdf.Text(g.MarginLeft+st.Indent, y+st.Size, phys)
			y += step
			res.Lines++
		}
	}
	if err := finish(pdf, out); err != nil {
		return res, err
	}
	return res, nil
}

// RenderCover composites the user's name and the completion date onto the
// cover background.
func (r *Renderer) RenderCover(background, name, date, out string) error {
	pdf, err := r.start(background)
	if err != nil {
		return err
	}
	regular, bold, _ := r.fonts.Faces()
	w, h := r.geometry.PageWidth, r.geometry.PageHeight
	c := r.colors[layout.Heading1]

	pdf.SetFont(bold.Family, bold.Style, 26)
	pdf.SetTextColor(c.R, c.G, c.B)
	pdf.Text((w-pdf.GetStringWidth(name))/2, h*0.55, name)

	base := r.colors[layout.Paragraph]
	pdf.SetFont(regular.Family, regular.Style, 14)
	pdf.SetTextColor(base.R, base.G, base.B)
	pdf.Text((w-pdf.GetStringWidth(date))/2, h*0.55+32, date)
	return finish(pdf, out)
}

func (r *Renderer) start(background string) (*fpdf.Fpdf, error) {
	pdf := r.fonts.newDoc()
	pdf.AddPage()
	imp := gofpdi.NewImporter()
	if err := UseTemplate(pdf, imp, background, 1); err != nil {
		return nil, err
	}
	return pdf, nil
}

// UseTemplate draws page n of the PDF at path over the whole current page.
func UseTemplate(pdf *fpdf.Fpdf, imp *gofpdi.Importer, path string, n int) (err error) {
	if _, err := os.Stat(path); err != nil {
		return &failure.MissingTemplateError{Path: path, Key: path, Err: err}
	}
	// gofpdi panics on unreadable input.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import template %s page %d: %v", path, n, r)
		}
	}()
	tpl := imp.ImportPage(pdf, path, n, "/MediaBox")
	w, h := pdf.GetPageSize()
	imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("import template %s: %w", path, err)
	}
	return nil
}

func finish(pdf *fpdf.Fpdf, out string) error {
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("draw page: %w", err)
	}
	if err := pdf.OutputFileAndClose(out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
