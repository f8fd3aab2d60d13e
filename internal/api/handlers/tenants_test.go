package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/api/handlers"
	"github.com/linkdeck/linkdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantList(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "alice")

	rr := doRequest(router, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/tenants/", nil, tc.Token))
	require.Equal(t, http.StatusOK, rr.Code)

	var summaries []map[string]interface{}
	testutil.ParseJSONResponse(t, rr, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, string(access.RoleOwner), summaries[0]["role"])
	assert.Equal(t, float64(1), summaries[0]["profile_count"])
}

func TestTenantGet(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "alice")
	testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "bob")

	t.Run("member sees workspace with profiles", func(t *testing.T) {
		rr := doRequest(router, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/tenants/"+tc.Tenant.Slug, nil, tc.Token))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.TenantResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, tc.Tenant.Slug, resp.Slug)
		assert.Equal(t, string(access.RoleOwner), resp.Role)
		assert.Len(t, resp.Profiles, 2)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, tc.DB)
		token := testutil.GenerateTestToken(t, tc.JWTService, outsider)

		rr := doRequest(router, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/tenants/"+tc.Tenant.Slug, nil, token))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		rr := doRequest(router, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/tenants/no-such-tenant", nil, tc.Token))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTenantMembers(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	editor := testutil.CreateTestUser(t, tc.DB)
	testutil.CreateTestMembership(t, tc.DB, editor, tc.Tenant, access.RoleEditor)

	rr := doRequest(router, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/tenants/"+tc.Tenant.Slug+"/members", nil, tc.Token))
	require.Equal(t, http.StatusOK, rr.Code)

	var members []handlers.MemberResponse
	testutil.ParseJSONResponse(t, rr, &members)
	require.Len(t, members, 2)
	assert.Equal(t, tc.User.ID.String(), members[0].UserID)
	assert.Equal(t, string(access.RoleOwner), members[0].Role)
	assert.Equal(t, editor.ID.String(), members[1].UserID)
	assert.Equal(t, editor.Email, members[1].Email)
}

func TestTenantAddMember(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)
	membersPath := "/api/v1/tenants/" + tc.Tenant.Slug + "/members"

	t.Run("admin invites existing user", func(t *testing.T) {
		invitee := testutil.CreateTestUser(t, tc.DB)
		adminToken := memberToken(t, tc, access.RoleAdmin)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, membersPath, map[string]string{
			"email": invitee.Email,
			"role":  "EDITOR",
		}, adminToken)
		rr := doRequest(router, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var member handlers.MemberResponse
		testutil.ParseJSONResponse(t, rr, &member)
		assert.Equal(t, invitee.ID.String(), member.UserID)
		assert.Equal(t, "EDITOR", member.Role)
	})

	t.Run("editor cannot invite", func(t *testing.T) {
		invitee := testutil.CreateTestUser(t, tc.DB)
		editorToken := memberToken(t, tc, access.RoleEditor)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, membersPath, map[string]string{
			"email": invitee.Email,
			"role":  "VIEWER",
		}, editorToken)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner role cannot be granted", func(t *testing.T) {
		invitee := testutil.CreateTestUser(t, tc.DB)
		req := testutil.AuthenticatedRequest(t, http.MethodPost, membersPath, map[string]string{
			"email": invitee.Email,
			"role":  "OWNER",
		}, tc.Token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, http.MethodPost, membersPath, map[string]string{
			"email": "nobody@example.com",
			"role":  "VIEWER",
		}, tc.Token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("existing member conflicts", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, http.MethodPost, membersPath, map[string]string{
			"email": tc.User.Email,
			"role":  "VIEWER",
		}, tc.Token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestTenantUpdateMember(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	member := testutil.CreateTestUser(t, tc.DB)
	testutil.CreateTestMembership(t, tc.DB, member, tc.Tenant, access.RoleViewer)
	memberPath := "/api/v1/tenants/" + tc.Tenant.Slug + "/members/" + member.ID.String()

	t.Run("admin promotes a viewer", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, http.MethodPut, memberPath, map[string]string{
			"role": "EDITOR",
		}, tc.Token)
		rr := doRequest(router, req)
		require.Equal(t, http.StatusOK, rr.Code)

		// The new role takes effect on the very next request
		memberToken := testutil.GenerateTestToken(t, tc.JWTService, member)
		createReq := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/profiles/", map[string]string{
			"tenant_slug": tc.Tenant.Slug,
			"handle":      "promoted",
		}, memberToken)
		rr = doRequest(router, createReq)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("owner membership is immutable", func(t *testing.T) {
		ownerPath := "/api/v1/tenants/" + tc.Tenant.Slug + "/members/" + tc.User.ID.String()
		req := testutil.AuthenticatedRequest(t, http.MethodPut, ownerPath, map[string]string{
			"role": "VIEWER",
		}, tc.Token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown member is not found", func(t *testing.T) {
		path := "/api/v1/tenants/" + tc.Tenant.Slug + "/members/" + uuid.New().String()
		req := testutil.AuthenticatedRequest(t, http.MethodPut, path, map[string]string{
			"role": "EDITOR",
		}, tc.Token)
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
