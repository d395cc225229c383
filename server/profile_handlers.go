package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/Daskott/zantag/server/gstorage"
	"github.com/Daskott/zantag/server/metrics"
	"github.com/Daskott/zantag/server/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func publicProfile(rw http.ResponseWriter, r *http.Request) {
	profile, err := models.FindProfileBy("username", strings.ToLower(mux.Vars(r)["username"]))
	if err != nil {
		writeModelError(rw, err)
		return
	}

	if err := models.IncrementProfileViews(profile.ID); err != nil {
		logg.Error(err)
	} else {
		profile.Views++
		metrics.ProfileViews.Inc()
	}

	writeData(rw, profile, http.StatusOK)
}

func profileVCard(rw http.ResponseWriter, r *http.Request) {
	profile, err := models.FindProfileBy("username", strings.ToLower(mux.Vars(r)["username"]))
	if err != nil {
		writeModelError(rw, err)
		return
	}

	card, err := VCard(profile)
	if err != nil {
		logg.Error(err)
		writeErrors(rw, http.StatusInternalServerError, "unable to render contact card")
		return
	}

	rw.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	rw.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", profile.Username+".vcf"))
	rw.WriteHeader(http.StatusOK)
	io.WriteString(rw, card)
}

func profileAvatar(rw http.ResponseWriter, r *http.Request) {
	profile, err := models.FindProfileBy("username", strings.ToLower(mux.Vars(r)["username"]))
	if err != nil {
		writeModelError(rw, err)
		return
	}

	if profile.AvatarKey == "" {
		writeErrors(rw, http.StatusNotFound, "profile has no avatar")
		return
	}

	streamObject(rw, r, profile.AvatarKey, "", "")
}

func setupProfile(rw http.ResponseWriter, r *http.Request) {
	data := ProfileSetupRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	profile := models.Profile{
		UserID:      currentUser(r).ID,
		Username:    data.Username,
		DisplayName: data.DisplayName,
		Bio:         data.Bio,
	}

	if err := models.CreateProfile(&profile); err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, profile, http.StatusCreated)
}

func findMyProfile(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	writeData(rw, profile, http.StatusOK)
}

func updateMyProfile(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	data := ProfileUpdateRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	update := map[string]interface{}{}
	fields := map[string]*string{
		"username":        data.Username,
		"display_name":    data.DisplayName,
		"bio":             data.Bio,
		"primary_color":   data.PrimaryColor,
		"secondary_color": data.SecondaryColor,
	}
	for field, value := range fields {
		if value != nil {
			update[field] = *value
		}
	}

	if len(update) > 0 {
		if err := profile.Update(update); err != nil {
			writeModelError(rw, err)
			return
		}
	}

	if data.Links != nil {
		if err := profile.SyncLinks(data.Links); err != nil {
			writeModelError(rw, err)
			return
		}
	}

	profile, err := models.FindProfileBy("id", profile.ID)
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, profile, http.StatusOK)
}

func uploadAvatar(rw http.ResponseWriter, r *http.Request) {
	profile, ok := myProfile(rw, r)
	if !ok {
		return
	}

	body, header, ok := readUpload(rw, r)
	if !ok {
		return
	}

	contentType := http.DetectContentType(body)
	if !strings.HasPrefix(contentType, "image/") {
		writeErrors(rw, http.StatusBadRequest, "avatar must be an image")
		return
	}

	objectKey := fmt.Sprintf("avatars/%v/%v%v", profile.ID, uuid.NewString(), path.Ext(header.Filename))
	if err := objectStore.Upload(r.Context(), objectKey, contentType, bytes.NewReader(body)); err != nil {
		writeErrors(rw, http.StatusInternalServerError, err.Error())
		return
	}

	previousKey := profile.AvatarKey
	if err := profile.SetAvatar(objectKey); err != nil {
		writeModelError(rw, err)
		return
	}

	if previousKey != "" {
		enqueueObjectDeletion(previousKey)
	}

	writeData(rw, profile, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// myProfile loads the signed in user's profile, writing a 404 when it is not set up yet.
func myProfile(rw http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	profile, err := models.FindProfileBy("user_id", currentUser(r).ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeErrors(rw, http.StatusNotFound, "profile is not set up")
		return nil, false
	}
	if err != nil {
		writeModelError(rw, err)
		return nil, false
	}

	return profile, true
}

// readUpload reads the multipart "file" field, capped at the configured upload size.
func readUpload(rw http.ResponseWriter, r *http.Request) ([]byte, *multipart.FileHeader, bool) {
	maxBytes := maxUploadBytes()
	r.Body = http.MaxBytesReader(rw, r.Body, maxBytes+(1<<20))

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeErrors(rw, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrors(rw, http.StatusBadRequest, "file is required")
		return nil, nil, false
	}
	defer file.Close()

	if header.Size > maxBytes {
		writeErrors(rw, http.StatusRequestEntityTooLarge, fmt.Sprintf("file must be at most %v bytes", maxBytes))
		return nil, nil, false
	}

	body, err := io.ReadAll(file)
	if err != nil {
		writeErrors(rw, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	if len(body) == 0 {
		writeErrors(rw, http.StatusBadRequest, "file is empty")
		return nil, nil, false
	}

	return body, header, true
}

func streamObject(rw http.ResponseWriter, r *http.Request, objectKey, contentType, fileName string) {
	reader, err := objectStore.NewReader(r.Context(), objectKey)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		writeErrors(rw, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		writeErrors(rw, http.StatusInternalServerError, err.Error())
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	rw.Header().Set("Content-Type", contentType)
	if fileName != "" {
		rw.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	}

	rw.WriteHeader(http.StatusOK)
	if _, err := io.Copy(rw, reader); err != nil {
		logg.Error(err)
	}
}
