package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Daskott/zantag/server/auth"
	"github.com/Daskott/zantag/server/auth/key"
	"github.com/Daskott/zantag/server/metrics"
	"github.com/Daskott/zantag/server/models"
	"github.com/Daskott/zantag/server/work"
	"gorm.io/gorm"
)

func health(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	writeData(rw, map[string]string{"status": "ok"}, http.StatusOK)
}

func jwks(rw http.ResponseWriter, r *http.Request) {
	publicJWK, err := authKeyPair.JWK()
	if err != nil {
		writeErrors(rw, http.StatusInternalServerError, err.Error())
		return
	}

	writeData(rw, key.ExportJWKAsJWKS(publicJWK), http.StatusOK)
}

func publicSettings(rw http.ResponseWriter, r *http.Request) {
	settings, err := models.CurrentSettings()
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, settings, http.StatusOK)
}

// signUp registers a user. The very first user needs no invite code & becomes
// the SUPER_ADMIN.
func signUp(rw http.ResponseWriter, r *http.Request) {
	data := SignUpRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	invitationOnly, err := models.InvitationOnly()
	if err != nil {
		writeModelError(rw, err)
		return
	}

	user := models.User{Name: data.Name, Email: data.Email, Password: data.Password}
	err = models.RegisterUser(&user, data.InviteCode, invitationOnly)
	if err != nil {
		writeModelError(rw, err)
		return
	}

	metrics.UsersRegistered.Inc()
	enqueue(work.JobParams{
		Name:    fmt.Sprintf("%v_%v", SEND_VERIFICATION_EMAIL, user.ID),
		Handler: SEND_VERIFICATION_EMAIL,
		Unique:  true,
		Args:    map[string]interface{}{"user_id": user.ID},
	})

	user.Password = ""
	writeData(rw, user, http.StatusCreated)
}

func verifyEmail(rw http.ResponseWriter, r *http.Request) {
	user, err := models.VerifyEmail(r.URL.Query().Get("token"))
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeSession(rw, user)
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := LoginRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	user, err := models.FindUserWithPassword(data.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeModelError(rw, err)
		return
	}

	if user == nil || !auth.CheckPasswordHash(data.Password, user.Password) {
		writeErrors(rw, http.StatusUnauthorized, "email/password is invalid")
		return
	}

	user.Password = ""
	writeSession(rw, user)
}

func findMe(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	profile, err := models.FindProfileByUserID(user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeModelError(rw, err)
		return
	}
	user.Profile = profile

	writeData(rw, user, http.StatusOK)
}

func changePassword(rw http.ResponseWriter, r *http.Request) {
	data := ChangePasswordRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	user, err := models.FindUserWithPassword(currentUser(r).Email)
	if err != nil {
		writeModelError(rw, err)
		return
	}

	if !auth.CheckPasswordHash(data.CurrentPassword, user.Password) {
		writeErrors(rw, http.StatusBadRequest, "current password is invalid")
		return
	}

	err = user.Update(map[string]interface{}{"password": data.NewPassword})
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func writeSession(rw http.ResponseWriter, user *models.User) {
	claims := auth.NewClaims(fmt.Sprint(user.ID), user.Name, user.RoleName(), user.OrganizationID)

	token, err := auth.EncodeJWT(claims, authKeyPair)
	if err != nil {
		writeErrors(rw, http.StatusInternalServerError, err.Error())
		return
	}

	writeData(rw, SessionData{Token: token, User: user}, http.StatusOK)
}
