package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
)

type SettingsController struct {
	Settings *services.SettingsService
	Queue    *services.QueueService
}

func NewSettingsController(settings *services.SettingsService, queue *services.QueueService) *SettingsController {
	return &SettingsController{Settings: settings, Queue: queue}
}

func (sc *SettingsController) GetSettings(c *gin.Context) {
	settings, err := sc.Settings.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings", settings)
}

// UpdateSettings -> a new average seat time re-estimates every waiting token
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var req struct {
		GracePeriodMinutes *int    `json:"grace_period_minutes"`
		AvgSeatTimeMinutes *int    `json:"avg_seat_time_minutes"`
		AutoRefresh        *bool   `json:"auto_refresh"`
		OpenTime           *string `json:"open_time"`
		CloseTime          *string `json:"close_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	settings, err := sc.Settings.Update(ctx, services.SettingsPatch{
		GracePeriodMinutes: req.GracePeriodMinutes,
		AvgSeatTimeMinutes: req.AvgSeatTimeMinutes,
		AutoRefresh:        req.AutoRefresh,
		OpenTime:           req.OpenTime,
		CloseTime:          req.CloseTime,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.AvgSeatTimeMinutes != nil && sc.Queue != nil {
		if err := sc.Queue.RecalculateQueuePositions(ctx); err != nil {
			utils.ErrorLogger.Printf("Recalculating waits after settings change: %v", err)
		} else {
			hub.BroadcastQueueChanged()
		}
	}

	utils.InfoLogger.Printf("Settings updated by %s", performer(c))
	hub.BroadcastMessage(hub.Message{Event: hub.EventSettingsUpdate, Data: settings})
	utils.RespondJSON(c, http.StatusOK, "Settings updated", settings)
}
