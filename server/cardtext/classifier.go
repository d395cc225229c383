// Package cardtext turns the raw text an OCR engine reads off a business card
// into a best-effort guess of the card holder's name, email and phone.
//
// The guess only pre-fills a lead form; a person always reviews it before the
// lead is saved.
package cardtext

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minLineLength = 3

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,4}[-.\s]?)?(\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}`)
	digitRun     = regexp.MustCompile(`\d{5,}`)
)

// Fields is the classifier output. A nil field means no line supported a value.
type Fields struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// Empty reports whether no field was filled.
func (f Fields) Empty() bool {
	return f.Name == nil && f.Email == nil && f.Phone == nil
}

func (f Fields) complete() bool {
	return f.Name != nil && f.Email != nil && f.Phone != nil
}

// Classify scans the lines of rawText top to bottom and assigns each field to
// the first line that qualifies for it. An email match claims its line; a
// line can otherwise fill the phone, or failing that the name. Filled fields
// are never revisited.
func Classify(rawText string) Fields {
	var fields Fields

	for _, line := range Lines(rawText) {
		switch {
		case fields.Email == nil && emailPattern.MatchString(line):
			email := emailPattern.FindString(line)
			fields.Email = &email
		case fields.Phone == nil && phonePattern.MatchString(line):
			phone := phonePattern.FindString(line)
			fields.Phone = &phone
		case fields.Name == nil && nameCandidate(line):
			name := line
			fields.Name = &name
		}

		if fields.complete() {
			break
		}
	}

	return fields
}

// Lines splits rawText on newlines, strips invalid UTF-8, trims every line
// and drops the ones too short to be anything but OCR noise.
func Lines(rawText string) []string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(strings.ToValidUTF8(line, ""))
		if utf8.RuneCountInString(line) < minLineLength {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// nameCandidate rejects lines holding an '@' or 5+ consecutive digits
// (ids, postal codes, phone fragments).
func nameCandidate(line string) bool {
	return !strings.Contains(line, "@") && !digitRun.MatchString(line)
}
