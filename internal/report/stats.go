package report

import (
	"time"

	"github.com/thywilljoshua/survey-report/internal/ai"
	"github.com/thywilljoshua/survey-report/internal/plan"
)

type SectionStats struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Chars int    `json:"chars"`
	// Pages counts rendered content pages.
	Pages int `json:"pages"`
	Calls int `json:"calls"`
}

type Stats struct {
	Sections     []SectionStats `json:"sections"`
	Chars        int            `json:"chars"`
	ContentPages int            `json:"content_pages"`
	Calls        int            `json:"calls"`
	Retries      int            `json:"retries"`
	TrimmedTurns int            `json:"trimmed_turns"`
	DroppedLines int            `json:"dropped_lines"`
	Usage        ai.Usage       `json:"usage"`
	Duration     time.Duration  `json:"duration"`
}

func (s *Stats) section(key string) *SectionStats {
	for i := range s.Sections {
		if s.Sections[i].Key == key {
			return &s.Sections[i]
		}
	}
	s.Sections = append(s.Sections, SectionStats{Key: key})
	return &s.Sections[len(s.Sections)-1]
}

// Result describes a finished run.
type Result struct {
	RunID   string       `json:"run_id"`
	Variant plan.Variant `json:"variant"`
	Path    string       `json:"path"`
	Pages   int          `json:"pages"`
	Bytes   int64        `json:"bytes"`
	// Degraded is set when canned text replaced generation.
	Degraded bool  `json:"degraded"`
	Stats    Stats `json:"stats"`
}
