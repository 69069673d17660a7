package survey

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user User
		want string
	}{
		{"explicit", User{ID: "1", Name: "  Анна  ", FirstName: "X"}, "Анна"},
		{"first and last", User{ID: "1", FirstName: "Иван", LastName: "Петров"}, "Иван Петров"},
		{"first only", User{ID: "2", FirstName: "Михаил"}, "Михаил"},
		{"username", User{ID: "3", Username: "john_doe"}, "@john_doe"},
		{"nothing", User{ID: "4"}, "Пользователь 4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.user.DisplayName())
		})
	}
}

func TestCompletionDate(t *testing.T) {
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "09.03.2025", User{}.CompletionDate(now))
	u := User{CompletedAt: time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)}
	assert.Equal(t, "31.12.2024", u.CompletionDate(now))
}

func TestTranscriptIsImmutable(t *testing.T) {
	src := []Entry{{Number: 2, Question: "b", Answer: "2"}, {Number: 1, Question: "a", Answer: "1"}}
	tr := NewTranscript(src)
	src[0].Answer = "changed"

	got := tr.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, "2", got[1].Answer)

	got[0].Answer = "mutated"
	assert.Equal(t, "1", tr.Entries()[0].Answer)
}

func TestLoadSkipsUnanswered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	body := `{
	  "user": {"id": "42", "first_name": "Ольга"},
	  "questions": [
	    {"order_number": 1, "text": "Кто вы?", "answer": "Инженер"},
	    {"order_number": 2, "text": "Что важно?", "answer": "   "},
	    {"order_number": 3, "text": "Мечта?", "answer": "Горы"}
	  ]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	tr, user, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, 3, tr.Entries()[1].Number)
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, _, err := Decode([]byte(`{"user":{"id":"1"},"questions":[]}`))
	assert.Error(t, err)
	_, _, err = Decode([]byte(`{"questions":[{"order_number":1,"answer":"x"}]}`))
	assert.Error(t, err)
}
