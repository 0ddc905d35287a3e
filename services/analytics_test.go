package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/models"
	"gorm.io/gorm"
)

func insertToken(t *testing.T, db *gorm.DB, number string, created time.Time, status string, consent bool, waited time.Duration) {
	t.Helper()
	token := models.Token{
		TokenNumber:  number,
		CustomerName: "Guest",
		PhoneNumber:  "1",
		PartySize:    2,
		Type:         models.TokenTypeWalkIn,
		Status:       status,
		ArrivalTime:  created,
		ShareConsent: consent,
		CreatedAt:    created,
	}
	if status == models.TokenStatusCompleted {
		seated := created.Add(waited)
		token.SeatedTime = &seated
	}
	require.NoError(t, db.Create(&token).Error)
}

func TestUpdateAnalyticsCurrentHour(t *testing.T) {
	db := setupTestDB(t)
	hour := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	insertToken(t, db, "T001", hour.Add(5*time.Minute), models.TokenStatusCompleted, true, 10*time.Minute)
	insertToken(t, db, "T002", hour.Add(10*time.Minute), models.TokenStatusCompleted, false, 20*time.Minute)
	insertToken(t, db, "T003", hour.Add(15*time.Minute), models.TokenStatusWaiting, true, 0)
	// previous hour, not counted
	insertToken(t, db, "T004", hour.Add(-5*time.Minute), models.TokenStatusCompleted, true, time.Hour)

	s := NewAnalyticsService(db, time.UTC)
	s.Now = fixedClock(hour.Add(30 * time.Minute))
	require.NoError(t, s.UpdateAnalytics(context.Background()))

	var row models.Analytics
	require.NoError(t, db.Where("hour = ?", 12).Take(&row).Error)
	assert.Equal(t, 3, row.TokenCount)
	assert.Equal(t, 2, row.ShareConsentCount)
	assert.InDelta(t, 15.0, row.AvgWaitTime, 0.001)

	// second run upserts rather than inserting again
	require.NoError(t, s.UpdateAnalytics(context.Background()))
	var count int64
	require.NoError(t, db.Model(&models.Analytics{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateAnalyticsPeakHours(t *testing.T) {
	db := setupTestDB(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Analytics{Date: day, Hour: 9, TokenCount: 1}).Error)
	require.NoError(t, db.Create(&models.Analytics{Date: day, Hour: 10, TokenCount: 1}).Error)

	hour := day.Add(11 * time.Hour)
	for i, n := range []string{"T001", "T002", "T003", "T004"} {
		insertToken(t, db, n, hour.Add(time.Duration(i)*time.Minute), models.TokenStatusWaiting, false, 0)
	}

	s := NewAnalyticsService(db, time.UTC)
	s.Now = fixedClock(hour.Add(20 * time.Minute))
	require.NoError(t, s.UpdateAnalytics(context.Background()))

	rows, summary, err := s.List(context.Background(), day, day)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 11, rows[0].Hour)
	assert.True(t, rows[0].PeakHour)
	assert.False(t, rows[1].PeakHour)
	assert.Equal(t, 6, summary.TotalTokens)
	assert.Equal(t, 1, summary.PeakHoursCount)
}

func TestSummarize(t *testing.T) {
	rows := []models.Analytics{
		{TokenCount: 4, ShareConsentCount: 1, AvgWaitTime: 10, PeakHour: true},
		{TokenCount: 2, ShareConsentCount: 1, AvgWaitTime: 15},
	}
	sum := Summarize(rows)
	assert.Equal(t, 6, sum.TotalTokens)
	assert.Equal(t, 13, sum.AvgWaitTime)
	assert.Equal(t, 1, sum.PeakHoursCount)
	assert.Equal(t, 2, sum.ShareConsentTotal)
	assert.InDelta(t, 33.3, sum.ShareConsentRate, 0.001)

	assert.Equal(t, AnalyticsSummary{}, Summarize(nil))
}
