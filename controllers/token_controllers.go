package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queue-app/hub"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/services"
	"github.com/yeremiapane/queue-app/utils"
)

type TokenController struct {
	Queue     *services.QueueService
	Analytics *services.AnalyticsService
}

func NewTokenController(queue *services.QueueService, analytics *services.AnalyticsService) *TokenController {
	return &TokenController{Queue: queue, Analytics: analytics}
}

// refreshAnalytics is best effort; a failure never fails the request.
func (tc *TokenController) refreshAnalytics(c *gin.Context) {
	if tc.Analytics == nil {
		return
	}
	if err := tc.Analytics.UpdateAnalytics(c.Request.Context()); err != nil {
		utils.ErrorLogger.Printf("Analytics refresh failed: %v", err)
	}
}

// CreateToken -> issues a token at the back of the queue
func (tc *TokenController) CreateToken(c *gin.Context) {
	var req struct {
		CustomerName    string     `json:"customer_name"`
		PhoneNumber     string     `json:"phone_number"`
		PartySize       int        `json:"party_size"`
		Type            string     `json:"type"`
		ReservationTime *time.Time `json:"reservation_time"`
		ShareConsent    bool       `json:"share_consent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	token, err := tc.Queue.CreateToken(c.Request.Context(), services.NewToken{
		CustomerName:    req.CustomerName,
		PhoneNumber:     req.PhoneNumber,
		PartySize:       req.PartySize,
		Type:            req.Type,
		ReservationTime: req.ReservationTime,
		ShareConsent:    req.ShareConsent,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.refreshAnalytics(c)
	hub.BroadcastTokenUpdate(token.ID, token)
	hub.BroadcastQueueChanged()

	utils.RespondJSON(c, http.StatusCreated, "Token created successfully", token)
}

// GetTokens -> paged list with status and type filters
func (tc *TokenController) GetTokens(c *gin.Context) {
	f := services.TokenFilter{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", services.DefaultPageSize),
	}
	if !tokenStatusValid(f.Status) {
		utils.RespondError(c, http.StatusBadRequest, services.NewValidationError("unknown status %q", f.Status))
		return
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = services.DefaultPageSize
	}

	tokens, total, err := tc.Queue.ListTokens(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of tokens", gin.H{
		"tokens":     tokens,
		"pagination": utils.NewPagination(f.Page, f.Limit, total),
	})
}

func (tc *TokenController) GetTokenByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	token, err := tc.Queue.GetToken(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Token detail", token)
}

// UpdateToken -> edits customer details; a new queue_position is a manual
// reorder
func (tc *TokenController) UpdateToken(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		CustomerName  *string `json:"customer_name"`
		PhoneNumber   *string `json:"phone_number"`
		PartySize     *int    `json:"party_size"`
		ShareConsent  *bool   `json:"share_consent"`
		QueuePosition *int    `json:"queue_position"`
		Reason        string  `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	token, err := tc.Queue.UpdateToken(c.Request.Context(), id, services.TokenPatch{
		CustomerName:  req.CustomerName,
		PhoneNumber:   req.PhoneNumber,
		PartySize:     req.PartySize,
		ShareConsent:  req.ShareConsent,
		QueuePosition: req.QueuePosition,
		Reason:        req.Reason,
	}, performer(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastTokenUpdate(token.ID, token)
	if req.QueuePosition != nil {
		hub.BroadcastQueueChanged()
	}
	utils.RespondJSON(c, http.StatusOK, "Token updated", token)
}

// CancelToken -> DELETE cancels rather than removing the row
func (tc *TokenController) CancelToken(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := tc.Queue.CancelToken(c.Request.Context(), id, performer(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := tc.Queue.GetToken(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	hub.BroadcastTokenUpdate(token.ID, token)
	hub.BroadcastQueueChanged()
	utils.RespondJSON(c, http.StatusOK, "Token cancelled", token)
}

// AssignTable -> seats a token. Without table_ids the best match is used.
func (tc *TokenController) AssignTable(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		TableIDs       []uint `json:"table_ids"`
		AssignmentType string `json:"assignment_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if len(req.TableIDs) == 0 {
		token, err := tc.Queue.GetToken(ctx, id)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		match, err := tc.Queue.FindBestTableMatch(ctx, token.PartySize, token.ShareConsent)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		if match == nil {
			utils.RespondError(c, http.StatusConflict, services.ErrTableUnavailable)
			return
		}
		req.TableIDs = match.TableIDs()
		req.AssignmentType = match.Type
	}
	if req.AssignmentType == "" {
		req.AssignmentType = services.AssignmentSingle
		if len(req.TableIDs) > 1 {
			req.AssignmentType = services.AssignmentJoined
		}
	}

	if err := tc.Queue.AssignTable(ctx, id, req.TableIDs, req.AssignmentType, performer(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := tc.Queue.GetToken(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	tc.refreshAnalytics(c)
	broadcastTables(tc.Queue, c, req.TableIDs)
	hub.BroadcastTokenUpdate(token.ID, token)
	hub.BroadcastQueueChanged()

	utils.RespondJSON(c, http.StatusOK, "Table assigned", gin.H{
		"token":           token,
		"table_ids":       req.TableIDs,
		"assignment_type": req.AssignmentType,
	})
}

// CompleteToken -> the party has left; its tables are freed
func (tc *TokenController) CompleteToken(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	before, err := tc.Queue.GetToken(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := tc.Queue.CompleteToken(ctx, id, performer(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	token, err := tc.Queue.GetToken(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	tc.refreshAnalytics(c)
	if before.AssignedTableID != nil {
		broadcastTables(tc.Queue, c, []uint{*before.AssignedTableID})
	}
	hub.BroadcastTokenUpdate(token.ID, token)
	hub.BroadcastQueueChanged()
	utils.RespondJSON(c, http.StatusOK, "Token completed", token)
}

// broadcastTables pushes the current state of each table id.
func broadcastTables(queue *services.QueueService, c *gin.Context, ids []uint) {
	for _, id := range ids {
		table, err := queue.GetTable(c.Request.Context(), id)
		if err != nil {
			continue
		}
		hub.BroadcastTableUpdate(table.ID, table)
	}
}

func tokenStatusValid(s string) bool {
	switch s {
	case "", models.TokenStatusWaiting, models.TokenStatusSeated, models.TokenStatusCancelled, models.TokenStatusCompleted:
		return true
	}
	return false
}
