package server

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/Daskott/zantag/server/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func fetchMyDocuments(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	writeData(rw, profile.Documents, http.StatusOK)
}

// uploadDocument attaches a file to the profile so visitors can download it
// from the public card.
func uploadDocument(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	body, header, ok := readUpload(rw, r)
	if !ok {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(header.Filename, path.Ext(header.Filename))
	}
	if len(title) > 200 {
		writeErrors(rw, http.StatusBadRequest, "title must be at most 200 characters")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(body)
	}

	document := models.Document{
		Title:       title,
		ObjectKey:   fmt.Sprintf("documents/%v/%v%v", profile.ID, uuid.NewString(), path.Ext(header.Filename)),
		FileName:    path.Base(header.Filename),
		ContentType: contentType,
		Size:        int64(len(body)),
	}

	if err := objectStore.Upload(r.Context(), document.ObjectKey, contentType, bytes.NewReader(body)); err != nil {
		writeErrors(rw, http.StatusInternalServerError, err.Error())
		return
	}

	if err := profile.AddDocument(&document); err != nil {
		enqueueObjectDeletion(document.ObjectKey)
		writeModelError(rw, err)
		return
	}

	writeData(rw, document, http.StatusCreated)
}

func deleteMyDocument(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	document, err := profile.DeleteDocument(mux.Vars(r)["id"])
	if err != nil {
		writeModelError(rw, err)
		return
	}

	enqueueObjectDeletion(document.ObjectKey)
	writeData(rw, nil, http.StatusOK)
}

func downloadDocument(rw http.ResponseWriter, r *http.Request) {
	document, err := models.FindDocument(mux.Vars(r)["id"])
	if err != nil {
		writeModelError(rw, err)
		return
	}

	streamObject(rw, r, document.ObjectKey, document.ContentType, document.FileName)
}
