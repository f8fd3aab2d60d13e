package tasks_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"github.com/linkdeck/linkdeck/internal/tasks"
	"github.com/linkdeck/linkdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleClickRecord(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := tasks.NewHandler(tc.DB, logger)

	profile := testutil.CreateTestProfile(t, tc.DB, tc.Tenant, "alice")
	section := testutil.CreateTestSection(t, tc.DB, profile, 0)
	block := testutil.CreateTestBlock(t, tc.DB, section, "https://example.com", "")

	referrer := "https://social.example/alice"
	task, err := tasks.NewClickRecordTask(tasks.ClickRecordPayload{
		TenantID:  tc.Tenant.ID,
		ProfileID: profile.ID,
		BlockID:   &block.ID,
		URL:       "https://example.com",
		Referrer:  &referrer,
		IPAddress: "203.0.113.7",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleClickRecord(context.Background(), task))

	var click models.Click
	require.NoError(t, tc.DB.First(&click).Error)
	assert.Equal(t, tc.Tenant.ID, click.TenantID)
	assert.Equal(t, profile.ID, click.ProfileID)
	require.NotNil(t, click.BlockID)
	assert.Equal(t, block.ID, *click.BlockID)
	assert.Equal(t, "https://example.com", click.URL)
	require.NotNil(t, click.Referrer)
	assert.Equal(t, referrer, *click.Referrer)
	assert.Equal(t, "203.0.113.7", click.IPAddress)
	assert.Equal(t, "test-agent", click.UserAgent)
}

func TestHandleClickRecord_BadPayload(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := tasks.NewHandler(tc.DB, logger)

	task := asynq.NewTask(tasks.TypeClickRecord, []byte("not json"))
	err := handler.HandleClickRecord(context.Background(), task)
	require.Error(t, err)

	var n int64
	require.NoError(t, tc.DB.Model(&models.Click{}).Count(&n).Error)
	assert.Zero(t, n)
}
