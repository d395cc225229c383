package server

import (
	"net/http"
	"testing"

	"github.com/Daskott/zantag/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUsers(t *testing.T) {
	ts := setupTestServer(t)
	admin, adminToken := createTestUser(t, "admin@zantag.io", models.SUPER_ADMIN_ROLE, true)
	user, _ := createTestUser(t, "jane@zantag.io", models.INDIVIDUAL_ROLE, true)
	userPath := "/api/v1/admin/users/" + formatID(float64(user.ID))

	rec, payload := ts.do(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, dataMap(t, payload)["items"], 2)

	t.Run("Should update a user's role", func(t *testing.T) {
		rec, payload := ts.do(t, http.MethodPut, userPath, adminToken, map[string]string{
			"name": "Jane Smith",
			"role": models.BUSINESS_STAFF_ROLE,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		updated := dataMap(t, payload)
		assert.Equal(t, "Jane Smith", updated["name"])
		assert.Equal(t, models.BUSINESS_STAFF_ROLE, updated["role"].(map[string]interface{})["name"])
	})

	t.Run("Should not demote yourself", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodPut, "/api/v1/admin/users/"+formatID(float64(admin.ID)), adminToken, map[string]string{
			"role": models.INDIVIDUAL_ROLE,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should reset a password", func(t *testing.T) {
		rec, payload := ts.do(t, http.MethodPost, userPath+"/reset-password", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		password := dataMap(t, payload)["temporary_password"].(string)
		assert.Len(t, password, TEMPORARY_PASSWORD_LENGTH)

		rec, _ = ts.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
			"email":    "jane@zantag.io",
			"password": password,
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Should delete a user", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodDelete, "/api/v1/admin/users/"+formatID(float64(admin.ID)), adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = ts.do(t, http.MethodDelete, userPath, adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = ts.do(t, http.MethodDelete, userPath, adminToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminOrganizations(t *testing.T) {
	ts := setupTestServer(t)
	_, adminToken := createTestUser(t, "admin@zantag.io", models.SUPER_ADMIN_ROLE, true)
	owner, _ := createTestUser(t, "owner@acme.io", models.INDIVIDUAL_ROLE, true)

	rec, payload := ts.do(t, http.MethodPost, "/api/v1/admin/organizations", adminToken, map[string]interface{}{
		"name":     "Acme Corp",
		"admin_id": owner.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	org := dataMap(t, payload)
	assert.Equal(t, "acme-corp", org["slug"])
	orgPath := "/api/v1/admin/organizations/" + formatID(org["id"])

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/admin/organizations", adminToken, map[string]interface{}{
		"name": "ACME corp!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload = ts.do(t, http.MethodGet, orgPath+"/staff", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	staff := payload.Data.([]interface{})
	require.Len(t, staff, 1)
	assert.Equal(t, models.BUSINESS_ADMIN_ROLE, staff[0].(map[string]interface{})["role"].(map[string]interface{})["name"])

	rec, payload = ts.do(t, http.MethodPut, orgPath, adminToken, map[string]interface{}{"name": "Acme Inc"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Inc", dataMap(t, payload)["name"])

	rec, _ = ts.do(t, http.MethodDelete, orgPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	detached, err := models.FindUserBy("id", owner.ID)
	require.Nil(t, err)
	assert.Nil(t, detached.OrganizationID)
}

func TestBusinessAdminInvitations(t *testing.T) {
	ts := setupTestServer(t)
	createTestUser(t, "admin@zantag.io", models.SUPER_ADMIN_ROLE, true)
	owner, ownerToken := createTestUser(t, "owner@acme.io", models.INDIVIDUAL_ROLE, true)
	rival, _ := createTestUser(t, "owner@rival.io", models.INDIVIDUAL_ROLE, true)

	// Roles are read from the db on every request, the token stays valid after the promotion
	acme := models.Organization{Name: "Acme", AdminID: &owner.ID}
	require.Nil(t, models.CreateOrganization(&acme))
	rivalOrg := models.Organization{Name: "Rival", AdminID: &rival.ID}
	require.Nil(t, models.CreateOrganization(&rivalOrg))

	rec, payload := ts.do(t, http.MethodPost, "/api/v1/admin/invitations", ownerToken, map[string]interface{}{
		"email": "staff@acme.io",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	invite := dataMap(t, payload)
	assert.Equal(t, models.BUSINESS_STAFF_ROLE, invite["role_name"])
	assert.Equal(t, float64(acme.ID), invite["organization_id"])
	assert.Contains(t, invite["code"], models.INVITE_CODE_PREFIX)

	testCases := []struct {
		description string
		body        map[string]interface{}
	}{
		{"Should not invite admins", map[string]interface{}{"role": models.SUPER_ADMIN_ROLE}},
		{"Should not invite into another organization", map[string]interface{}{"organization_id": rivalOrg.ID}},
	}

	for _, tcase := range testCases {
		t.Run(tcase.description, func(t *testing.T) {
			rec, _ := ts.do(t, http.MethodPost, "/api/v1/admin/invitations", ownerToken, tcase.body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}

	rivalInvite := models.InviteCode{OrganizationID: &rivalOrg.ID, RoleName: models.BUSINESS_STAFF_ROLE}
	require.Nil(t, models.CreateInviteCode(&rivalInvite))

	rec, payload = ts.do(t, http.MethodGet, "/api/v1/admin/invitations", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, dataMap(t, payload)["items"], 1)

	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/admin/invitations/"+formatID(float64(rivalInvite.ID)), ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/admin/organizations/"+formatID(float64(rivalOrg.ID))+"/staff", ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/admin/invitations/"+formatID(invite["id"]), ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminSettingsAndJobs(t *testing.T) {
	ts := setupTestServer(t)
	_, adminToken := createTestUser(t, "admin@zantag.io", models.SUPER_ADMIN_ROLE, true)

	_, payload := ts.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	assert.Equal(t, true, dataMap(t, payload)["invitation_only"])

	rec, payload := ts.do(t, http.MethodPut, "/api/v1/admin/settings", adminToken, map[string]bool{"invitation_only": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, dataMap(t, payload)["invitation_only"])

	rec, _ = ts.do(t, http.MethodPut, "/api/v1/admin/settings", adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Nil(t, models.CreateJob("backup", BACKUP_SQLITE_DB, "{}", true))

	rec, payload = ts.do(t, http.MethodGet, "/api/v1/admin/jobs?status=enqueued", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, dataMap(t, payload)["items"], 1)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/admin/jobs?status=stuck", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload = ts.do(t, http.MethodGet, "/api/v1/admin/jobs/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), dataMap(t, payload)["enqueued_job_count"])
}
