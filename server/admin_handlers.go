package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Daskott/zantag/server/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

const TEMPORARY_PASSWORD_LENGTH = 12

func fetchUsers(rw http.ResponseWriter, r *http.Request) {
	users, paging, err := models.FetchUsers(pageParam(r))
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, PagedData{Items: users, Paging: paging}, http.StatusOK)
}

func updateUser(rw http.ResponseWriter, r *http.Request) {
	user, err := models.FindUserBy("id", mux.Vars(r)["id"])
	if err != nil {
		writeModelError(rw, err)
		return
	}

	data := UserUpdateRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	roleChanged := data.Role != nil && *data.Role != user.RoleName()
	if roleChanged && user.ID == currentUser(r).ID {
		writeErrors(rw, http.StatusBadRequest, "you cannot change your own role")
		return
	}

	if data.OrganizationID != nil {
		if _, err := models.FindOrganization(*data.OrganizationID); err != nil {
			writeModelError(rw, err)
			return
		}
	}

	update := map[string]interface{}{}
	if data.Name != nil {
		update["name"] = strings.TrimSpace(*data.Name)
	}
	if data.Email != nil {
		update["email"] = strings.ToLower(strings.TrimSpace(*data.Email))
	}
	if data.OrganizationID != nil {
		update["organization_id"] = *data.OrganizationID
	}

	if len(update) > 0 {
		if err := user.Update(update); err != nil {
			writeModelError(rw, err)
			return
		}
	}

	if roleChanged {
		if err := user.SetRole(*data.Role); err != nil {
			writeModelError(rw, err)
			return
		}
	}

	user, err = models.FindUserBy("id", user.ID)
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, user, http.StatusOK)
}

func deleteUser(rw http.ResponseWriter, r *http.Request) {
	user, err := models.FindUserBy("id", mux.Vars(r)["id"])
	if err != nil {
		writeModelError(rw, err)
		return
	}

	if user.ID == currentUser(r).ID {
		writeErrors(rw, http.StatusBadRequest, "you cannot delete your own account")
		return
	}

	profile, err := models.FindProfileBy("user_id", user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeModelError(rw, err)
		return
	}

	if err := models.DeleteUser(user.ID); err != nil {
		writeModelError(rw, err)
		return
	}

	// Stored files outlive the cascade, clean them up in the background
	if profile != nil {
		if profile.AvatarKey != "" {
			enqueueObjectDeletion(profile.AvatarKey)
		}
		for _, document := range profile.Documents {
			enqueueObjectDeletion(document.ObjectKey)
		}
	}

	writeData(rw, nil, http.StatusOK)
}

// resetUserPassword replaces the user's password with a random one that is
// returned once, for the admin to hand over.
func resetUserPassword(rw http.ResponseWriter, r *http.Request) {
	user, err := models.FindUserBy("id", mux.Vars(r)["id"])
	if err != nil {
		writeModelError(rw, err)
		return
	}

	password := temporaryPassword()
	if err := user.Update(map[string]interface{}{"password": password}); err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, map[string]string{"temporary_password": password}, http.StatusOK)
}

func fetchOrganizations(rw http.ResponseWriter, r *http.Request) {
	orgs, paging, err := models.FetchOrganizations(pageParam(r))
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, PagedData{Items: orgs, Paging: paging}, http.StatusOK)
}

func createOrganization(rw http.ResponseWriter, r *http.Request) {
	data := OrganizationRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	org := models.Organization{
		Name:    strings.TrimSpace(data.Name),
		Slug:    models.Slugify(data.Slug),
		AdminID: data.AdminID,
	}

	if err := models.CreateOrganization(&org); err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, org, http.StatusCreated)
}

func updateOrganization(rw http.ResponseWriter, r *http.Request) {
	org, err := models.FindOrganization(mux.Vars(r)["id"])
	if err != nil {
		writeModelError(rw, err)
		return
	}

	data := OrganizationRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	update := map[string]interface{}{"name": strings.TrimSpace(data.Name)}
	if data.AdminID != nil {
		update["admin_id"] = *data.AdminID
	}

	if err := org.Update(update); err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, org, http.StatusOK)
}

func deleteOrganization(rw http.ResponseWriter, r *http.Request) {
	if err := models.DeleteOrganization(mux.Vars(r)["id"]); err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, nil, http.StatusOK)
}

func fetchOrganizationStaff(rw http.ResponseWriter, r *http.Request) {
	org, err := models.FindOrganization(mux.Vars(r)["id"])
	if err != nil {
		writeModelError(rw, err)
		return
	}

	if !canManageOrganization(currentUser(r), &org.ID) {
		writeErrors(rw, http.StatusForbidden, "action is forbidden")
		return
	}

	staff, err := org.FetchStaff()
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, staff, http.StatusOK)
}

func fetchInvitations(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var organizationID *uint
	if !user.IsAdmin() {
		if user.OrganizationID == nil {
			writeErrors(rw, http.StatusForbidden, "you do not belong to an organization")
			return
		}
		organizationID = user.OrganizationID
	}

	invites, paging, err := models.FetchInviteCodes(pageParam(r), organizationID)
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, PagedData{Items: invites, Paging: paging}, http.StatusOK)
}

// createInvitation mints an invite code. Business admins can only invite staff
// into their own organization.
func createInvitation(rw http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	data := InvitationRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	invite := models.InviteCode{
		Email:          data.Email,
		RoleName:       data.RoleName,
		OrganizationID: data.OrganizationID,
		CreatedByID:    &user.ID,
	}

	if !user.IsAdmin() {
		if user.OrganizationID == nil {
			writeErrors(rw, http.StatusForbidden, "you do not belong to an organization")
			return
		}

		if invite.RoleName == "" {
			invite.RoleName = models.BUSINESS_STAFF_ROLE
		}
		if invite.RoleName != models.BUSINESS_STAFF_ROLE {
			writeErrors(rw, http.StatusForbidden, fmt.Sprintf("you can only invite %v users", models.BUSINESS_STAFF_ROLE))
			return
		}

		if invite.OrganizationID != nil && *invite.OrganizationID != *user.OrganizationID {
			writeErrors(rw, http.StatusForbidden, "action is forbidden")
			return
		}
		invite.OrganizationID = user.OrganizationID
	}

	if invite.OrganizationID != nil {
		if _, err := models.FindOrganization(*invite.OrganizationID); err != nil {
			writeModelError(rw, err)
			return
		}
	}

	if err := models.CreateInviteCode(&invite); err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, invite, http.StatusCreated)
}

func deleteInvitation(rw http.ResponseWriter, r *http.Request) {
	invite, err := models.FindInviteCode(mux.Vars(r)["id"])
	if err != nil {
		writeModelError(rw, err)
		return
	}

	if !canManageOrganization(currentUser(r), invite.OrganizationID) {
		writeErrors(rw, http.StatusForbidden, "action is forbidden")
		return
	}

	if err := models.DeleteInviteCode(invite.ID); err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, nil, http.StatusOK)
}

func findSettings(rw http.ResponseWriter, r *http.Request) {
	settings, err := models.CurrentSettings()
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, settings, http.StatusOK)
}

func updateSettings(rw http.ResponseWriter, r *http.Request) {
	data := SettingsRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	if err := models.SetInvitationOnly(*data.InvitationOnly); err != nil {
		writeModelError(rw, err)
		return
	}

	findSettings(rw, r)
}

func fetchJobs(rw http.ResponseWriter, r *http.Request) {
	status := strings.ToLower(r.URL.Query().Get("status"))
	if status != "" && !models.JobStatusNameMap[status] {
		writeErrors(rw, http.StatusBadRequest, fmt.Sprintf("unknown job status %q", status))
		return
	}

	jobs, paging, err := models.FetchJobs(pageParam(r), status)
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, PagedData{Items: jobs, Paging: paging}, http.StatusOK)
}

func jobsStats(rw http.ResponseWriter, r *http.Request) {
	stats, err := models.CurrentJobsStats()
	if err != nil {
		writeModelError(rw, err)
		return
	}

	writeData(rw, stats, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// canManageOrganization reports whether user may act on records of the
// organization; super admins manage every organization.
func canManageOrganization(user *models.User, organizationID *uint) bool {
	if user.IsAdmin() {
		return true
	}

	return user.OrganizationID != nil && organizationID != nil && *user.OrganizationID == *organizationID
}

func temporaryPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:TEMPORARY_PASSWORD_LENGTH]
}
