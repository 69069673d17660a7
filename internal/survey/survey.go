// Package survey holds the read-only inputs of a report run: the user's
// answered questions and the metadata shown on the cover.
package survey

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

type Entry struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Transcript is an immutable ordered list of answered questions.
type Transcript struct {
	entries []Entry
}

// NewTranscript copies entries and orders them by question number.
func NewTranscript(entries []Entry) Transcript {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Number < cp[j].Number })
	return Transcript{entries: cp}
}

func (t Transcript) Len() int { return len(t.entries) }

// Entries returns a copy of the ordered entries.
func (t Transcript) Entries() []Entry {
	cp := make([]Entry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

// User is the display metadata of the person the report is for.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Username    string    `json:"username,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// DisplayName picks the best available name: explicit name, first+last,
// first, username, then a generic label with the id.
func (u User) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	var parts []string
	if f := strings.TrimSpace(u.FirstName); f != "" {
		parts = append(parts, f)
	}
	if l := strings.TrimSpace(u.LastName); l != "" {
		parts = append(parts, l)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if un := strings.TrimSpace(u.Username); un != "" {
		return "@" + strings.TrimPrefix(un, "@")
	}
	return "Пользователь " + u.ID
}

// CompletionDate formats the completion time as dd.mm.yyyy, falling back to now.
func (u User) CompletionDate(now time.Time) string {
	t := u.CompletedAt
	if t.IsZero() {
		t = now
	}
	return t.Format("02.01.2006")
}

type fileQuestion struct {
	OrderNumber int    `json:"order_number"`
	Text        string `json:"text"`
	Type        string `json:"type,omitempty"`
	Answer      string `json:"answer"`
}

type file struct {
	User      User           `json:"user"`
	Questions []fileQuestion `json:"questions"`
}

// Load reads a transcript file. Questions without an answer are skipped.
func Load(path string) (Transcript, User, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, User{}, err
	}
	return Decode(b)
}

func Decode(b []byte) (Transcript, User, error) {
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return Transcript{}, User{}, fmt.Errorf("decode transcript: %w", err)
	}
	if strings.TrimSpace(f.User.ID) == "" {
		return Transcript{}, User{}, errors.New("transcript user id is required")
	}
	var entries []Entry
	for _, q := range f.Questions {
		ans := strings.TrimSpace(q.Answer)
		if ans == "" {
			continue
		}
		entries = append(entries, Entry{Number: q.OrderNumber, Question: strings.TrimSpace(q.Text), Answer: ans})
	}
	if len(entries) == 0 {
		return Transcript{}, User{}, errors.New("transcript has no answered questions")
	}
	return NewTranscript(entries), f.User, nil
}
