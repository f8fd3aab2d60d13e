package handlers_test

import (
	"net/http"
	"testing"

	"github.com/linkdeck/linkdeck/internal/api/dto"
	"github.com/linkdeck/linkdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthEndpoints_Register(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	t.Run("creates account with workspace", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":       "new@example.com",
			"password":    "supersecret1",
			"name":        "New User",
			"tenant_name": "New Workspace",
		})
		rr := doRequest(router, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "new@example.com", resp.User.Email)
		assert.Equal(t, "new-workspace", resp.User.TenantSlug)

		// Browser clients get the token as a cookie too
		cookies := rr.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "token", cookies[0].Name)
		assert.Equal(t, resp.Token, cookies[0].Value)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    tc.User.Email,
			"password": "supersecret1",
			"name":     "Dup",
		})
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "short@example.com",
			"password": "short",
			"name":     "Short",
		})
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "not-an-email",
			"password": "supersecret1",
			"name":     "Bad Email",
		})
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthEndpoints_Login(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	t.Run("valid credentials", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    tc.User.Email,
			"password": "testpassword123",
		})
		rr := doRequest(router, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, tc.User.ID.String(), resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    tc.User.Email,
			"password": "wrongpassword",
		})
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "testpassword123",
		})
		rr := doRequest(router, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthEndpoints_Logout(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	rr := doRequest(router, testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/auth/logout", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	rr := doRequest(router, testutil.UnauthenticatedRequest(t, http.MethodGet, "/api/v1/tenants/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doRequest(router, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/tenants/", nil, "garbage-token"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMe(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	rr := doRequest(router, testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/me", nil, tc.Token))
	require.Equal(t, http.StatusOK, rr.Code)

	var user map[string]interface{}
	testutil.ParseJSONResponse(t, rr, &user)
	assert.Equal(t, tc.User.Email, user["email"])
}
