package companies

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_ThesisOrderIsFixed(t *testing.T) {
	vocab := DefaultVocabulary()

	b := vocab.Classify([]string{"Masterarbeiten", "Bachelorarbeiten"})
	assert.Equal(t, []ListItem{
		{Text: "Bachelor"},
		{Text: "Master", Last: true},
	}, b.Thesis)

	b = vocab.Classify([]string{"Masterarbeiten", "Semesterarbeiten", "Bachelorarbeiten"})
	assert.Equal(t, []ListItem{
		{Text: "Semester"},
		{Text: "Bachelor"},
		{Text: "Master", Last: true},
	}, b.Thesis)
}

func TestClassify_Buckets(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		name       string
		tokens     []string
		fullTime   bool
		entryLevel []ListItem
		thesis     []ListItem
	}{
		{
			name:       "none",
			tokens:     []string{"Sonstiges"},
			entryLevel: []ListItem{},
			thesis:     []ListItem{},
		},
		{
			name:       "full time only",
			tokens:     []string{"Festanstellungen"},
			fullTime:   true,
			entryLevel: []ListItem{},
			thesis:     []ListItem{},
		},
		{
			name:       "all buckets",
			tokens:     []string{"Trainee", "Festanstellungen", "Praktika", "Semesterarbeiten"},
			fullTime:   true,
			entryLevel: []ListItem{{Text: "Praktika"}, {Text: "Traineeprogramme", Last: true}},
			thesis:     []ListItem{{Text: "Semester", Last: true}},
		},
		{
			name:       "case and whitespace tolerant",
			tokens:     []string{" praktika ", "MASTERARBEITEN"},
			entryLevel: []ListItem{{Text: "Praktika", Last: true}},
			thesis:     []ListItem{{Text: "Master", Last: true}},
		},
		{
			name:       "empty",
			tokens:     nil,
			entryLevel: []ListItem{},
			thesis:     []ListItem{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := vocab.Classify(tt.tokens)
			assert.Equal(t, tt.fullTime, b.FullTime)
			assert.Equal(t, tt.entryLevel, b.EntryLevel)
			assert.Equal(t, tt.thesis, b.Thesis)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	vocab := DefaultVocabulary()
	first := vocab.Classify([]string{"Masterarbeiten", "Praktika", "Bachelorarbeiten"})
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, vocab.Classify([]string{"Bachelorarbeiten", "Masterarbeiten", "Praktika"}))
	}
}

func TestJoinItems(t *testing.T) {
	items := []ListItem{{Text: "Semester"}, {Text: "Bachelor"}, {Text: "Master", Last: true}}
	assert.Equal(t, "Semester, Bachelor und Master", JoinItems(items, ", ", " und "))
	assert.Equal(t, "Master", JoinItems(items[2:], ", ", " und "))
	assert.Equal(t, "", JoinItems(nil, ", ", " und "))
}
