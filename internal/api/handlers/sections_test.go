package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"github.com/linkdeck/linkdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionCreate(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	profile := testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "alice")

	t.Run("editor can create", func(t *testing.T) {
		token := memberToken(t, tc, access.RoleEditor)
		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sections/", map[string]interface{}{
			"profile_id": profile.ID.String(),
			"title":      "Socials",
			"order":      3,
		}, token)
		rr := doRequest(router, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var section models.Section
		testutil.ParseJSONResponse(t, rr, &section)
		assert.Equal(t, profile.ID, section.ProfileID)
		assert.Equal(t, "Socials", section.Title)
		assert.Equal(t, 3, section.Order)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		token := memberToken(t, tc, access.RoleViewer)
		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sections/", map[string]string{
			"profile_id": profile.ID.String(),
		}, token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown profile is not found", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/sections/", map[string]string{
			"profile_id": uuid.New().String(),
		}, tc.Token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSectionUpdate(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	profile := testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "alice")
	section := testutil.CreateTestSection(t, tc.DB, profile, 0)

	t.Run("editor reorders and retitles", func(t *testing.T) {
		token := memberToken(t, tc, access.RoleEditor)
		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/sections/"+section.ID.String(), map[string]interface{}{
			"title": "Projects",
			"order": 5,
		}, token)
		rr := doRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var got models.Section
		testutil.ParseJSONResponse(t, rr, &got)
		assert.Equal(t, "Projects", got.Title)
		assert.Equal(t, 5, got.Order)
	})

	t.Run("member of another tenant is forbidden", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, tc.DB)
		testutil.CreateTestTenant(t, tc.DB, stranger)
		token := testutil.GenerateTestToken(t, tc.JWTService, stranger)

		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/sections/"+section.ID.String(), map[string]string{
			"title": "Hijacked",
		}, token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown section is not found", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/sections/"+uuid.New().String(), map[string]string{
			"title": "Ghost",
		}, tc.Token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSectionDelete(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	profile := testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "alice")
	section := testutil.CreateTestSection(t, tc.DB, profile, 0)
	testutil.CreateTestBlock(t, tc.DB, section, "https://example.com", "")

	rr := doRequest(router, testutil.AuthenticatedRequest(t, http.MethodDelete, "/api/v1/sections/"+section.ID.String(), nil, tc.Token))
	require.Equal(t, http.StatusOK, rr.Code)

	var sections, blocks int64
	require.NoError(t, tc.DB.Model(&models.Section{}).Where("id = ?", section.ID).Count(&sections).Error)
	require.NoError(t, tc.DB.Model(&models.Block{}).Where("section_id = ?", section.ID).Count(&blocks).Error)
	assert.Zero(t, sections)
	assert.Zero(t, blocks)
}
