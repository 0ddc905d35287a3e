package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/models"
)

func TestListLogs(t *testing.T) {
	db := setupTestDB(t)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.OverrideLog{
		{Action: models.ActionManualAssign, PerformedBy: "a", Reason: "one", Timestamp: day.Add(9 * time.Hour)},
		{Action: models.ActionCancelToken, PerformedBy: "b", Reason: "two", Timestamp: day.Add(10 * time.Hour)},
		{Action: models.ActionManualAssign, PerformedBy: "c", Reason: "three", Timestamp: day.AddDate(0, 0, 1).Add(time.Hour)},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}
	ctx := context.Background()

	logs, total, err := ListLogs(ctx, db, LogFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "three", logs[0].Reason)

	logs, total, err = ListLogs(ctx, db, LogFilter{Action: models.ActionManualAssign})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	logs, total, err = ListLogs(ctx, db, LogFilter{Start: day, End: day})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "two", logs[0].Reason)

	logs, _, err = ListLogs(ctx, db, LogFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "one", logs[0].Reason)
}

func TestLogFieldsDereferencesIDs(t *testing.T) {
	fields := logFields(models.OverrideLog{
		Action:      models.ActionManualAssign,
		PerformedBy: "staff@restaurant.com",
		TokenID:     uintPtr(7),
		TableID:     uintPtr(3),
	})
	assert.Equal(t, uint(7), fields["token_id"])
	assert.Equal(t, uint(3), fields["table_id"])

	fields = logFields(models.OverrideLog{Action: models.ActionAutoTimeout, PerformedBy: models.PerformerSystem})
	assert.NotContains(t, fields, "token_id")
	assert.NotContains(t, fields, "table_id")
	assert.Equal(t, models.PerformerSystem, fields["performed_by"])
}
