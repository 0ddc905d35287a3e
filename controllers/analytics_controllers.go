package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
)

type AnalyticsController struct {
	Analytics *services.AnalyticsService
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics}
}

// GetAnalytics -> hourly rows between start_date and end_date with a summary
func (ac *AnalyticsController) GetAnalytics(c *gin.Context) {
	from, err := queryDate(c, "start_date")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	to, err := queryDate(c, "end_date")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rows, summary, err := ac.Analytics.List(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Analytics", gin.H{
		"analytics": rows,
		"summary":   summary,
	})
}

// RefreshAnalytics -> recomputes the current hour on demand
func (ac *AnalyticsController) RefreshAnalytics(c *gin.Context) {
	if err := ac.Analytics.UpdateAnalytics(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Analytics refreshed", nil)
}
