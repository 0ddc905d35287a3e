package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/models"
)

func TestAutoAssignEndpoint(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := login(t, r, staffEmail)

	for i := 0; i < 3; i++ {
		createToken(t, r, staff, 6)
	}
	big := createToken(t, r, staff, 6)

	w := doJSON(r, http.MethodPost, "/api/queue/auto-assign", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Assigned int `json:"assigned"`
	}
	decode(t, w, &result)
	// three tables of six, then pairs of joinable tables
	assert.Equal(t, 4, result.Assigned)

	var token models.Token
	require.NoError(t, db.First(&token, big.ID).Error)
	assert.Equal(t, models.TokenStatusSeated, token.Status)

	var rows int64
	require.NoError(t, db.Model(&models.Analytics{}).Count(&rows).Error)
	assert.NotZero(t, rows)
}

func TestCheckTimeoutsEndpoint(t *testing.T) {
	r, db := setupTestRouter(t)
	staff := login(t, r, staffEmail)

	w := doJSON(r, http.MethodPost, "/api/tokens", staff, map[string]interface{}{
		"customer_name": "Late", "phone_number": "1", "party_size": 2, "type": "reservation",
		"reservation_time": time.Now().Add(-30 * time.Minute).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/queue/check-timeouts", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Cancelled int `json:"cancelled"`
	}
	decode(t, w, &result)
	assert.Equal(t, 1, result.Cancelled)

	var entry models.OverrideLog
	require.NoError(t, db.Where("action = ?", models.ActionAutoTimeout).Take(&entry).Error)
	assert.Equal(t, models.PerformerSystem, entry.PerformedBy)
}

func TestMatchEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)
	staff := login(t, r, staffEmail)

	w := doJSON(r, http.MethodGet, "/api/queue/match?party_size=5", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var match struct {
		Type   string         `json:"type"`
		Tables []models.Table `json:"tables"`
	}
	decode(t, w, &match)
	assert.Equal(t, "single", match.Type)
	require.Len(t, match.Tables, 1)
	assert.Equal(t, 6, match.Tables[0].Capacity)

	w = doJSON(r, http.MethodGet, "/api/queue/match?party_size=20", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, "No table available", env.Message)

	w = doJSON(r, http.MethodGet, "/api/queue/match?party_size=x", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicQueueNeedsNoAuth(t *testing.T) {
	r, _ := setupTestRouter(t)
	staff := login(t, r, staffEmail)
	createToken(t, r, staff, 2)

	w := doJSON(r, http.MethodGet, "/api/public/queue", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "555-0100")

	var board struct {
		Waiting []struct {
			TokenNumber string `json:"token_number"`
		} `json:"waiting"`
		FreeTables int `json:"free_tables"`
	}
	decode(t, w, &board)
	require.Len(t, board.Waiting, 1)
	assert.Equal(t, "T001", board.Waiting[0].TokenNumber)
	assert.Equal(t, 10, board.FreeTables)
}

func TestPing(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := doJSON(r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
