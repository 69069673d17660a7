package render

import (
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/thywilljoshua/survey-report/internal/layout"
)

// FontFiles names TrueType files for the three faces. Unset faces use the
// embedded Go fonts, which cover Latin and Cyrillic.
type FontFiles struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
	Italic  string `yaml:"italic"`
}

// FontSet holds loaded font data shared by every document of a run. A nil
// *FontSet uses the embedded Go fonts.
type FontSet struct {
	regular, bold, italic []byte
}

const bodyFamily = "body"

var defaultFonts = &FontSet{regular: goregular.TTF, bold: gobold.TTF, italic: goitalic.TTF}

func LoadFonts(files FontFiles) (*FontSet, error) {
	read := func(path string, fallback []byte) ([]byte, error) {
		if path == "" {
			return fallback, nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load font: %w", err)
		}
		return b, nil
	}
	var fs FontSet
	var err error
	if fs.regular, err = read(files.Regular, defaultFonts.regular); err != nil {
		return nil, err
	}
	// A custom regular face without custom variants keeps one family.
	bold, italic := defaultFonts.bold, defaultFonts.italic
	if files.Regular != "" {
		bold, italic = fs.regular, fs.regular
	}
	if fs.bold, err = read(files.Bold, bold); err != nil {
		return nil, err
	}
	if fs.italic, err = read(files.Italic, italic); err != nil {
		return nil, err
	}
	return &fs, nil
}

func (fs *FontSet) orDefault() *FontSet {
	if fs == nil || len(fs.regular) == 0 {
		return defaultFonts
	}
	return fs
}

// Faces returns the regular, bold and italic faces to lay out with.
func (fs *FontSet) Faces() (regular, bold, italic layout.Face) {
	return layout.Face{Family: bodyFamily}, layout.Face{Family: bodyFamily, Style: "B"}, layout.Face{Family: bodyFamily, Style: "I"}
}

// newDoc starts an A4 document in points with the fonts registered.
func (fs *FontSet) newDoc() *fpdf.Fpdf {
	f := fs.orDefault()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddUTF8FontFromBytes(bodyFamily, "", f.regular)
	pdf.AddUTF8FontFromBytes(bodyFamily, "B", f.bold)
	pdf.AddUTF8FontFromBytes(bodyFamily, "I", f.italic)
	return pdf
}

// Measurer measures text with the same font metrics the renderer draws
// with. It is not safe for concurrent use.
type Measurer struct {
	pdf *fpdf.Fpdf
}

func NewMeasurer(fs *FontSet) (*Measurer, error) {
	pdf := fs.newDoc()
	regular, bold, italic := fs.Faces()
	for _, f := range []layout.Face{regular, bold, italic} {
		pdf.SetFont(f.Family, f.Style, 11)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("register fonts: %w", err)
	}
	return &Measurer{pdf: pdf}, nil
}

func (m *Measurer) Width(text string, face layout.Face, size float64) float64 {
	m.pdf.SetFont(face.Family, face.Style, size)
	return m.pdf.GetStringWidth(text)
}
