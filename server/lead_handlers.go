package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Daskott/zantag/server/cardtext"
	"github.com/Daskott/zantag/server/metrics"
	"github.com/Daskott/zantag/server/models"
	"github.com/Daskott/zantag/server/ocr"
	"github.com/Daskott/zantag/server/work"
	"github.com/gorilla/mux"
)

const (
	LEADS_PAGE_SIZE = 50

	SCAN_FAILED_WARNING = "Failed to read card. Please enter manually."
	SCAN_EMPTY_WARNING  = "No contact details found on the card. Please review the form."
)

// submitLead stores a lead left by a visitor on a public profile & notifies the owner.
func submitLead(rw http.ResponseWriter, r *http.Request) {
	profile, err := models.FindProfileBy("username", strings.ToLower(mux.Vars(r)["username"]))
	if err != nil {
		writeModelError(rw, err)
		return
	}

	data := LeadRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	contact := contactFromRequest(data, cardtext.SourceForm)
	if err := profile.AddContact(&contact); err != nil {
		writeModelError(rw, err)
		return
	}

	metrics.LeadsCaptured.WithLabelValues(contact.Source).Inc()
	enqueue(work.JobParams{
		Name:    fmt.Sprintf("%v_%v", NOTIFY_NEW_LEAD, contact.ID),
		Handler: NOTIFY_NEW_LEAD,
		Unique:  true,
		Args:    map[string]interface{}{"profile_id": profile.ID, "contact_id": contact.ID},
	})

	writeData(rw, contact, http.StatusCreated)
}

func fetchMyLeads(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	contacts, paging, err := profile.FetchContacts(pageParam(r), LEADS_PAGE_SIZE)
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, PagedData{Items: contacts, Paging: paging}, http.StatusOK)
}

// createMyLead saves a lead the owner entered by hand or reviewed after a scan.
func createMyLead(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	data := LeadRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	source := data.Source
	if source == "" {
		source = cardtext.SourceManual
	}
	if !source.Valid() || source == cardtext.SourceForm {
		writeErrors(rw, http.StatusBadRequest, fmt.Sprintf("invalid lead source %q", data.Source))
		return
	}

	contact := contactFromRequest(data, source)
	if err := profile.AddContact(&contact); err != nil {
		writeModelError(rw, err)
		return
	}

	metrics.LeadsCaptured.WithLabelValues(contact.Source).Inc()
	writeData(rw, contact, http.StatusCreated)
}

func deleteMyLead(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	if err := profile.DeleteContact(mux.Vars(r)["id"]); err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, nil, http.StatusOK)
}

// scanLead reads an uploaded business card & returns the lead form pre-filled
// with whatever could be extracted. Nothing is stored; when the card cannot be
// read the form comes back untouched with a warning so the owner can type the
// lead in.
func scanLead(rw http.ResponseWriter, r *http.Request) {
	if _, ok := myProfile(rw, r); !ok {
		return
	}

	image, _, ok := readUpload(rw, r)
	if !ok {
		return
	}

	form := cardtext.LeadForm{
		Name:   strings.TrimSpace(r.FormValue("name")),
		Email:  strings.TrimSpace(r.FormValue("email")),
		Phone:  strings.TrimSpace(r.FormValue("phone")),
		Notes:  r.FormValue("notes"),
		Source: cardtext.SourceManual,
	}

	if ocrEngine == nil {
		metrics.CardScans.WithLabelValues(metrics.ScanFailed).Inc()
		logg.Warn("Card scan requested but no OCR engine is configured")
		writeData(rw, ScanResult{Form: form, Warnings: []string{SCAN_FAILED_WARNING}}, http.StatusOK)
		return
	}

	scan, err := ocr.ScanCard(r.Context(), ocrEngine, image, maxUploadBytes())
	if err != nil {
		metrics.CardScans.WithLabelValues(metrics.ScanFailed).Inc()
		logg.Warnf("Card scan failed: %v", err)
		writeData(rw, ScanResult{Form: form, Warnings: []string{SCAN_FAILED_WARNING}}, http.StatusOK)
		return
	}

	result := ScanResult{
		Form:     cardtext.Prefill(form, scan.Fields),
		Fields:   scan.Fields,
		Warnings: []string{},
	}

	if scan.Fields.Empty() {
		metrics.CardScans.WithLabelValues(metrics.ScanEmpty).Inc()
		result.Warnings = append(result.Warnings, SCAN_EMPTY_WARNING)
	} else {
		metrics.CardScans.WithLabelValues(metrics.ScanSucceeded).Inc()
	}

	writeData(rw, result, http.StatusOK)
}

func myAnalytics(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	stats, err := profile.Stats()
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, stats, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func contactFromRequest(data LeadRequest, source cardtext.Source) models.Contact {
	return models.Contact{
		Name:   strings.TrimSpace(data.Name),
		Email:  strings.TrimSpace(data.Email),
		Phone:  strings.TrimSpace(data.Phone),
		Notes:  data.Notes,
		Source: string(source),
	}
}
