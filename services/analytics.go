package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/yeremiapane/queue-app/models"
	"gorm.io/gorm"
)

// AnalyticsService maintains the hourly aggregates.
// Hours are bucketed in Location, the restaurant's local zone.
type AnalyticsService struct {
	DB       *gorm.DB
	Now      func() time.Time
	Location *time.Location
}

func NewAnalyticsService(db *gorm.DB, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{DB: db, Now: time.Now, Location: loc}
}

// dayKey is the calendar day of t, stored as UTC midnight so the
// (date, hour) key compares equal regardless of the server zone.
func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UpdateAnalytics recomputes the current hour's row and the peak flag of
// every row recorded today. An hour is peak when its token count exceeds
// the mean over today's rows.
func (s *AnalyticsService) UpdateAnalytics(ctx context.Context) error {
	now := s.Now().In(s.Location)
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	hourEnd := hourStart.Add(time.Hour)
	day := dayKey(now)

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tokens []models.Token
		// The window is widened and then narrowed in Go so the bound does not
		// depend on how the driver renders timestamps.
		if err := tx.Where("created_at >= ?", hourStart.UTC().Add(-time.Hour)).Find(&tokens).Error; err != nil {
			return err
		}

		row := models.Analytics{Date: day, Hour: now.Hour()}
		var waitTotal float64
		var waitCount int
		for _, t := range tokens {
			if t.CreatedAt.Before(hourStart) || !t.CreatedAt.Before(hourEnd) {
				continue
			}
			row.TokenCount++
			if t.ShareConsent {
				row.ShareConsentCount++
			}
			if t.Status == models.TokenStatusCompleted && t.SeatedTime != nil {
				waitTotal += t.SeatedTime.Sub(t.ArrivalTime).Minutes()
				waitCount++
			}
		}
		if waitCount > 0 {
			row.AvgWaitTime = waitTotal / float64(waitCount)
		}

		var existing models.Analytics
		err := tx.Where("date = ? AND hour = ?", day, row.Hour).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"token_count":         row.TokenCount,
				"share_consent_count": row.ShareConsentCount,
				"avg_wait_time":       row.AvgWaitTime,
			}).Error; err != nil {
				return err
			}
		}

		return markPeakHours(tx, day)
	})
}

func markPeakHours(tx *gorm.DB, day time.Time) error {
	var rows []models.Analytics
	if err := tx.Where("date = ?", day).Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	total := 0
	for _, r := range rows {
		total += r.TokenCount
	}
	mean := float64(total) / float64(len(rows))

	for i := range rows {
		peak := float64(rows[i].TokenCount) > mean
		if rows[i].PeakHour == peak {
			continue
		}
		if err := tx.Model(&rows[i]).Update("peak_hour", peak).Error; err != nil {
			return err
		}
	}
	return nil
}

// AnalyticsSummary aggregates a set of hourly rows.
type AnalyticsSummary struct {
	TotalTokens       int     `json:"total_tokens"`
	AvgWaitTime       int     `json:"avg_wait_time"`
	PeakHoursCount    int     `json:"peak_hours_count"`
	ShareConsentTotal int     `json:"share_consent_total"`
	ShareConsentRate  float64 `json:"share_consent_rate"`
}

// List returns rows between from and to (inclusive, either may be zero),
// newest first, with their summary.
func (s *AnalyticsService) List(ctx context.Context, from, to time.Time) ([]models.Analytics, AnalyticsSummary, error) {
	q := s.DB.WithContext(ctx).Model(&models.Analytics{})
	if !from.IsZero() {
		q = q.Where("date >= ?", dayKey(from))
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", dayKey(to))
	}

	var rows []models.Analytics
	if err := q.Order("date DESC").Order("hour DESC").Find(&rows).Error; err != nil {
		return nil, AnalyticsSummary{}, err
	}
	return rows, Summarize(rows), nil
}

// Summarize computes totals over rows. The consent rate is a percentage
// rounded to one decimal.
func Summarize(rows []models.Analytics) AnalyticsSummary {
	var sum AnalyticsSummary
	var waitTotal float64
	for _, r := range rows {
		sum.TotalTokens += r.TokenCount
		sum.ShareConsentTotal += r.ShareConsentCount
		waitTotal += r.AvgWaitTime
		if r.PeakHour {
			sum.PeakHoursCount++
		}
	}
	if len(rows) > 0 {
		sum.AvgWaitTime = int(math.Round(waitTotal / float64(len(rows))))
	}
	if sum.TotalTokens > 0 {
		sum.ShareConsentRate = math.Round(float64(sum.ShareConsentTotal)/float64(sum.TotalTokens)*1000) / 10
	}
	return sum
}
