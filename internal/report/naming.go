package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/thywilljoshua/survey-report/internal/plan"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9_-]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "/", "-", ".", "-").Replace(s)
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	if s == "" {
		return "anonymous"
	}
	return s
}

// OutputName is the artifact file name of a run:
// {variant}_{requester}_{yyyymmdd_hhmmss}.pdf.
func OutputName(v plan.Variant, requesterID string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.pdf", v, slugify(requesterID), at.Format("20060102_150405"))
}
