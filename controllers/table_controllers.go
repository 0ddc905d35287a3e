package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
)

type TableController struct {
	Queue *services.QueueService
}

func NewTableController(queue *services.QueueService) *TableController {
	return &TableController{Queue: queue}
}

// TableView is a table with the token currently seated at it.
type TableView struct {
	models.Table
	CurrentToken *models.Token `json:"current_token,omitempty"`
}

func (tc *TableController) withOccupants(c *gin.Context, tables []models.Table) ([]TableView, error) {
	var ids []uint
	for _, t := range tables {
		if t.CurrentTokenID != nil {
			ids = append(ids, *t.CurrentTokenID)
		}
	}
	tokens, err := tc.Queue.TokensByID(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}

	views := make([]TableView, len(tables))
	for i, t := range tables {
		views[i].Table = t
		if t.CurrentTokenID != nil {
			if tok, ok := tokens[*t.CurrentTokenID]; ok {
				views[i].CurrentToken = &tok
			}
		}
	}
	return views, nil
}

// CreateTable -> adds a table to the roster
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber int   `json:"table_number"`
		Capacity    int   `json:"capacity"`
		IsJoinable  *bool `json:"is_joinable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Queue.CreateTable(c.Request.Context(), services.NewTable{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		IsJoinable:  req.IsJoinable,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastTableUpdate(table.ID, table)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> every table with its occupant
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Queue.ListTables(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	views, err := tc.withOccupants(c, tables)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", views)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	table, err := tc.Queue.GetTable(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	views, err := tc.withOccupants(c, []models.Table{*table})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", views[0])
}

// UpdateTable -> staff may change status; capacity and joinability are
// admin-only
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Capacity   *int    `json:"capacity"`
		Status     *string `json:"status"`
		IsJoinable *bool   `json:"is_joinable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if (req.Capacity != nil || req.IsJoinable != nil) && !isAdmin(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("admin access required to change capacity or joinability"))
		return
	}

	table, err := tc.Queue.UpdateTable(c.Request.Context(), id, services.TablePatch{
		Capacity:   req.Capacity,
		Status:     req.Status,
		IsJoinable: req.IsJoinable,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastTableUpdate(table.ID, table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> refused while the table is occupied or shared
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := tc.Queue.DeleteTable(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastTableUpdate(id, nil)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": id,
	})
}
