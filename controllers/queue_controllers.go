package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
)

type QueueController struct {
	Queue     *services.QueueService
	Analytics *services.AnalyticsService
}

func NewQueueController(queue *services.QueueService, analytics *services.AnalyticsService) *QueueController {
	return &QueueController{Queue: queue, Analytics: analytics}
}

// AutoAssign -> seats every waiting token that fits, in queue order
func (qc *QueueController) AutoAssign(c *gin.Context) {
	ctx := c.Request.Context()
	assigned, err := qc.Queue.AutoAssignTables(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if assigned > 0 {
		if qc.Analytics != nil {
			if err := qc.Analytics.UpdateAnalytics(ctx); err != nil {
				utils.ErrorLogger.Printf("Analytics refresh failed: %v", err)
			}
		}
		hub.BroadcastQueueChanged()
	}
	utils.RespondJSON(c, http.StatusOK, "Auto-assignment completed", gin.H{
		"assigned": assigned,
	})
}

// CheckTimeouts -> cancels reservations past their grace period
func (qc *QueueController) CheckTimeouts(c *gin.Context) {
	evicted, err := qc.Queue.CheckReservationTimeouts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if evicted > 0 {
		hub.BroadcastQueueChanged()
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation timeouts checked", gin.H{
		"cancelled": evicted,
	})
}

// Match -> previews the table choice for a party without seating anyone
func (qc *QueueController) Match(c *gin.Context) {
	size, err := strconv.Atoi(c.Query("party_size"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, services.NewValidationError("party_size must be a number"))
		return
	}
	consent, _ := strconv.ParseBool(c.DefaultQuery("share_consent", "false"))

	match, err := qc.Queue.FindBestTableMatch(c.Request.Context(), size, consent)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if match == nil {
		utils.RespondJSON(c, http.StatusOK, "No table available", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table match found", match)
}

// PublicQueue -> unauthenticated waiting board
func (qc *QueueController) PublicQueue(c *gin.Context) {
	board, err := qc.Queue.PublicBoard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current queue", board)
}
