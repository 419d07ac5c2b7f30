package companies

import (
	"strings"

	"github.com/jonathan/fairguide/internal/crm"
)

// Normalizer maps CRM account rows to Company records.
type Normalizer struct {
	fields FieldSet
	vocab  Vocabulary
}

// NewNormalizer creates a normalizer for the given field names and vocabulary.
func NewNormalizer(fields FieldSet, vocab Vocabulary) (*Normalizer, error) {
	if err := CheckCountFormat(vocab.CountFormat); err != nil {
		return nil, err
	}
	return &Normalizer{fields: fields, vocab: vocab}, nil
}

// Fields returns the CRM fields a company query has to select.
func (n *Normalizer) Fields() []string {
	return n.fields.Select()
}

// First normalizes the first row. It reports false when rows is empty, which
// callers treat as "not found". A row whose fields are all empty still yields
// a record.
func (n *Normalizer) First(rows []crm.Row) (*Company, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	c := n.Normalize(rows[0])
	return &c, true
}

// Normalize maps one row. Missing fields read as empty strings.
func (n *Normalizer) Normalize(row crm.Row) Company {
	f := n.fields
	offering := ParseList(row.Get(f.Offering))
	buckets := n.vocab.Classify(offering)
	media := strings.TrimSpace(row.Get(f.MediaPackage))

	return Company{
		ID:      row.Get(f.ID),
		Name:    row.Get(f.Name),
		Website: strings.TrimSpace(row.Get(f.Website)),
		Contact: CleanText(row.Get(f.Contact)),
		Booth:   strings.TrimSpace(row.Get(f.Booth)),

		InterestedIn: ParseList(row.Get(f.InterestedIn)),
		Offering:     offering,

		FullTime:   buckets.FullTime,
		EntryLevel: buckets.EntryLevel,
		Thesis:     buckets.Thesis,

		About: CleanText(row.Get(f.About)),
		Focus: CleanText(row.Get(f.Focus)),

		Employees: n.employees(row),

		MediaPackage: media,
		HasAd:        n.hasAd(media),
	}
}

// employees builds the employee summary. Lines without any digit are left out.
func (n *Normalizer) employees(row crm.Row) []SummaryLine {
	lines := []SummaryLine{}
	add := func(field, label string) {
		if field == "" {
			return
		}
		count, ok := ParseCount(row.Get(field))
		if !ok {
			return
		}
		lines = append(lines, SummaryLine{Label: label, Value: FormatCount(n.vocab.CountFormat, count)})
	}
	add(n.fields.EmployeesLocal, n.vocab.EmployeesLocalLabel)
	add(n.fields.EmployeesWorld, n.vocab.EmployeesWorldLabel)
	return lines
}

func (n *Normalizer) hasAd(media string) bool {
	if media == "" {
		return false
	}
	for _, v := range n.vocab.AdPackages {
		if strings.EqualFold(v, media) {
			return true
		}
	}
	return false
}
