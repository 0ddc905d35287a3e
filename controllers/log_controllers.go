package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

type LogController struct {
	DB *gorm.DB
}

func NewLogController(db *gorm.DB) *LogController {
	return &LogController{DB: db}
}

// GetLogs -> override log, newest first
func (lc *LogController) GetLogs(c *gin.Context) {
	start, err := queryDate(c, "start_date")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	end, err := queryDate(c, "end_date")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	f := services.LogFilter{
		Action: c.Query("action"),
		Start:  start,
		End:    end,
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", services.DefaultPageSize),
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = services.DefaultPageSize
	}

	logs, total, err := services.ListLogs(c.Request.Context(), lc.DB, f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Override logs", gin.H{
		"logs":       logs,
		"pagination": utils.NewPagination(f.Page, f.Limit, total),
	})
}
