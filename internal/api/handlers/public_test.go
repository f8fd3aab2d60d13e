package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linkdeck/linkdeck/internal/database/models"
	"github.com/linkdeck/linkdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicProfile(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := newTestRouter(tc)

	profile := testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "alice")
	later := testutil.CreateTestSection(t, tc.DB, profile, 2)
	earlier := testutil.CreateTestSection(t, tc.DB, profile, 1)
	testutil.CreateTestBlock(t, tc.DB, earlier, "https://example.com", "")

	t.Run("published profile is readable without auth", func(t *testing.T) {
		rr := doRequest(router, httptest.NewRequest(http.MethodGet, "/p/alice", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var got models.Profile
		testutil.ParseJSONResponse(t, rr, &got)
		assert.Equal(t, "alice", got.Handle)
		require.Len(t, got.Sections, 2)
		assert.Equal(t, earlier.ID, got.Sections[0].ID)
		assert.Equal(t, later.ID, got.Sections[1].ID)
		assert.Len(t, got.Sections[0].Blocks, 1)
	})

	t.Run("unpublished profile looks missing", func(t *testing.T) {
		hidden := testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "hidden")
		require.NoError(t, tc.DB.Model(hidden).Update("published", false).Error)

		rr := doRequest(router, httptest.NewRequest(http.MethodGet, "/p/hidden", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown handle", func(t *testing.T) {
		rr := doRequest(router, httptest.NewRequest(http.MethodGet, "/p/nobody", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
