package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/thywilljoshua/survey-report/internal/plan"
)

// Scaffold writes a plain placeholder page for every template the plans
// use and that is not present yet under dir. It returns the created paths.
func Scaffold(dir string, plans ...plan.Plan) ([]string, error) {
	c := New(dir)
	var created []string
	for _, p := range plans {
		for _, k := range Keys(p) {
			path, err := c.Path(k)
			if err != nil {
				return created, err
			}
			if _, err := os.Stat(path); err == nil {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return created, fmt.Errorf("create template dir: %w", err)
			}
			if err := writePlaceholder(path, k); err != nil {
				return created, fmt.Errorf("write template %s: %w", k, err)
			}
			created = append(created, path)
		}
	}
	return created, nil
}

var placeholderEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func writePlaceholder(path string, k Key) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(placeholderEpoch)
	pdf.SetModificationDate(placeholderEpoch)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	w, h := pdf.GetPageSize()

	r, g, b := tint(k.Role)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(0, 0, w, 36, "F")
	pdf.Rect(0, h-36, w, 36, "F")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.Text(24, h-14, k.String())

	if k.Role != RoleContent {
		pdf.SetFont("Helvetica", "B", 20)
		pdf.SetTextColor(60, 60, 60)
		label := string(k.Role)
		if k.Section != "" {
			label = k.Section + " / " + label
		}
		pdf.Text((w-pdf.GetStringWidth(label))/2, h/2, label)
	}
	return pdf.OutputFileAndClose(path)
}

func tint(r Role) (int, int, int) {
	switch r {
	case RoleCover, RoleClosing:
		return 46, 134, 171
	case RoleTitle, RoleDivider:
		return 162, 59, 114
	case RoleNote:
		return 230, 230, 230
	default:
		return 245, 245, 245
	}
}
