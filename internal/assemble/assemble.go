// Package assemble orders template pages and rendered pages into the final
// report and writes it as one PDF.
package assemble

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
	"go.uber.org/zap"

	"github.com/thywilljoshua/survey-report/internal/plan"
	"github.com/thywilljoshua/survey-report/internal/render"
	"github.com/thywilljoshua/survey-report/internal/templates"
)

// PageRef is one page of the output: page Page (1-based) of the PDF at Path.
// Page zero means every page of the file.
type PageRef struct {
	Path  string `json:"path"`
	Page  int    `json:"page,omitempty"`
	Label string `json:"label"`
}

// SectionPages holds the rendered page files of one premium section, per
// subsection in plan order.
type SectionPages struct {
	Key         string
	Subsections [][]string
}

type Assembler struct {
	catalog *templates.Catalog
	log     *zap.Logger
}

func New(catalog *templates.Catalog, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{catalog: catalog, log: log}
}

// Basic orders cover and title templates, the rendered pages, then the
// closing templates.
func (a *Assembler) Basic(rendered []string) ([]PageRef, error) {
	var out []PageRef
	add := func(k templates.Key) error {
		p, err := a.catalog.Resolve(k)
		if err != nil {
			return err
		}
		out = append(out, PageRef{Path: p, Label: k.String()})
		return nil
	}
	v := plan.Basic
	for _, k := range []templates.Key{{Variant: v, Role: templates.RoleCover}, {Variant: v, Role: templates.RoleTitle}} {
		if err := add(k); err != nil {
			return nil, err
		}
	}
	for i, p := range rendered {
		out = append(out, PageRef{Path: p, Page: 1, Label: fmt.Sprintf("content#%d", i)})
	}
	for i := range templates.BasicClosingPages {
		if err := add(templates.Key{Variant: v, Role: templates.RoleClosing, Block: i}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Premium orders the personalized cover, the title page, then per section
// its title, each subsection's divider followed by its pages, and the
// section notes; the closing page ends the document.
func (a *Assembler) Premium(cover string, sections []SectionPages) ([]PageRef, error) {
	v := plan.Premium
	out := []PageRef{{Path: cover, Page: 1, Label: "cover"}}
	add := func(k templates.Key) error {
		p, err := a.catalog.Resolve(k)
		if err != nil {
			return err
		}
		out = append(out, PageRef{Path: p, Label: k.String()})
		return nil
	}
	if err := add(templates.Key{Variant: v, Role: templates.RoleTitle}); err != nil {
		return nil, err
	}
	for _, s := range sections {
		if err := add(templates.Key{Variant: v, Section: s.Key, Role: templates.RoleTitle}); err != nil {
			return nil, err
		}
		for j, pages := range s.Subsections {
			if err := add(templates.Key{Variant: v, Section: s.Key, Role: templates.RoleDivider, Block: j}); err != nil {
				return nil, err
			}
			for i, p := range pages {
				out = append(out, PageRef{Path: p, Page: 1, Label: fmt.Sprintf("%s#%d.%d", s.Key, j, i)})
			}
		}
		if err := add(templates.Key{Variant: v, Section: s.Key, Role: templates.RoleNote}); err != nil {
			return nil, err
		}
	}
	if err := add(templates.Key{Variant: v, Role: templates.RoleClosing}); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteResult describes a written artifact.
type WriteResult struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Bytes int64  `json:"bytes"`
}

// Write concatenates pages into one PDF at outputPath. The file appears
// only once it is complete and verified: non-empty, with as many pages as
// were assembled. An existing file is never replaced: when outputPath is
// taken the alternates are tried in order.
func (a *Assembler) Write(pages []PageRef, outputPath string, alternates ...string) (WriteResult, error) {
	if len(pages) == 0 {
		return WriteResult{}, errors.New("nothing to write")
	}
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("create output dir: %w", err)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	imp := gofpdi.NewImporter()
	expected := 0
	for _, ref := range pages {
		first, last := ref.Page, ref.Page
		if ref.Page == 0 {
			n, err := templates.PageCount(ref.Path)
			if err != nil {
				return WriteResult{}, fmt.Errorf("page %q: %w", ref.Label, err)
			}
			first, last = 1, n
		}
		for n := first; n <= last; n++ {
			pdf.AddPage()
			if err := render.UseTemplate(pdf, imp, ref.Path, n); err != nil {
				return WriteResult{}, fmt.Errorf("page %q: %w", ref.Label, err)
			}
			expected++
		}
	}

	tmp, err := os.CreateTemp(dir, ".report-*.pdf")
	if err != nil {
		return WriteResult{}, fmt.Errorf("create artifact: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		return WriteResult{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return WriteResult{}, fmt.Errorf("write artifact: %w", err)
	}

	res, err := verify(tmpPath, expected)
	if err != nil {
		return WriteResult{}, err
	}
	final := ""
	for _, candidate := range append([]string{outputPath}, alternates...) {
		err = commit(tmpPath, candidate)
		if err == nil {
			final = candidate
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return WriteResult{}, fmt.Errorf("move artifact into place: %w", err)
		}
		a.log.Debug("artifact name taken", zap.String("path", candidate))
	}
	if final == "" {
		return WriteResult{}, fmt.Errorf("move artifact into place: every name taken: %w", err)
	}
	res.Path = final
	a.log.Info("report written",
		zap.String("path", final),
		zap.Int("pages", res.Pages),
		zap.Int64("bytes", res.Bytes))
	return res, nil
}

// commit publishes tmp at out without replacing an existing file. It
// returns an error wrapping fs.ErrExist when out is taken.
func commit(tmp, out string) error {
	err := os.Link(tmp, out)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	// No hard links here: reserve the name exclusively, then replace only
	// the reservation.
	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	f.Close()
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(out)
		return err
	}
	return nil
}

func verify(path string, expected int) (WriteResult, error) {
	st, err := os.Stat(path)
	if err != nil {
		return WriteResult{}, fmt.Errorf("verify artifact: %w", err)
	}
	if st.Size() == 0 {
		return WriteResult{}, errors.New("verify artifact: empty file")
	}
	n, err := templates.PageCount(path)
	if err != nil {
		return WriteResult{}, fmt.Errorf("verify artifact: %w", err)
	}
	if n != expected {
		return WriteResult{}, fmt.Errorf("verify artifact: %d pages, assembled %d", n, expected)
	}
	return WriteResult{Pages: n, Bytes: st.Size()}, nil
}
