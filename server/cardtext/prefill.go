package cardtext

import "strings"

// Source records how a lead was captured.
type Source string

const (
	SourceManual Source = "MANUAL"
	SourceForm   Source = "FORM"
	SourceOCR    Source = "OCR"

	// OCRAnnotation is appended to the notes of every scanned lead.
	OCRAnnotation = "[OCR Scanned]"
)

// Valid reports whether s is one of the known capture sources.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceForm, SourceOCR:
		return true
	}
	return false
}

// LeadForm is the lead-capture form a scan pre-fills.
type LeadForm struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Notes  string `json:"notes"`
	Source Source `json:"source"`
}

// Prefill merges fields into form. Fields the classifier could not fill keep
// whatever was entered by hand; the form is tagged as OCR-derived.
func Prefill(form LeadForm, fields Fields) LeadForm {
	if fields.Name != nil {
		form.Name = *fields.Name
	}
	if fields.Email != nil {
		form.Email = *fields.Email
	}
	if fields.Phone != nil {
		form.Phone = *fields.Phone
	}

	form.Source = SourceOCR
	form.Notes = annotate(form.Notes)

	return form
}

func annotate(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return OCRAnnotation
	}
	return notes + "\n" + OCRAnnotation
}
