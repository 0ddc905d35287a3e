package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/models"
)

func TestGetAllTablesWithOccupant(t *testing.T) {
	r, _ := setupTestRouter(t)
	staff := login(t, r, staffEmail)

	tok := createToken(t, r, staff, 6)
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/tokens/%d/assign", tok.ID), staff, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/tables", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tables []struct {
		TableNumber  int        `json:"table_number"`
		Status       string     `json:"status"`
		CurrentToken *tokenJSON `json:"current_token"`
	}
	env := decode(t, w, &tables)
	assert.Equal(t, "List of tables", env.Message)
	require.Len(t, tables, 10)
	assert.Equal(t, 1, tables[0].TableNumber)

	occupied := 0
	for _, tb := range tables {
		if tb.Status == models.TableStatusOccupied {
			occupied++
			require.NotNil(t, tb.CurrentToken)
			assert.Equal(t, tok.ID, tb.CurrentToken.ID)
		}
	}
	assert.Equal(t, 1, occupied)
}

func TestTableAdminRules(t *testing.T) {
	r, _ := setupTestRouter(t)
	staff := login(t, r, staffEmail)
	admin := login(t, r, adminEmail)

	w := doJSON(r, http.MethodPost, "/api/tables", staff, map[string]int{"table_number": 11, "capacity": 8})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/api/tables", admin, map[string]int{"table_number": 11, "capacity": 8})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Table
	decode(t, w, &created)
	assert.True(t, created.IsJoinable)

	w = doJSON(r, http.MethodPost, "/api/tables", admin, map[string]int{"table_number": 11, "capacity": 2})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/tables", admin, map[string]interface{}{
		"table_number": 12, "capacity": 2, "is_joinable": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var solo models.Table
	decode(t, w, &solo)
	assert.False(t, solo.IsJoinable)
	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/tables/%d", solo.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored models.Table
	decode(t, w, &stored)
	assert.False(t, stored.IsJoinable)

	path := fmt.Sprintf("/api/tables/%d", created.ID)
	w = doJSON(r, http.MethodPatch, path, staff, map[string]int{"capacity": 10})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPatch, path, staff, map[string]string{"status": "reserved"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Table
	decode(t, w, &updated)
	assert.Equal(t, models.TableStatusReserved, updated.Status)

	w = doJSON(r, http.MethodPatch, path, staff, map[string]string{"status": "occupied"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodDelete, path, staff, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(r, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOccupiedTableRefused(t *testing.T) {
	r, _ := setupTestRouter(t)
	admin := login(t, r, adminEmail)

	tok := createToken(t, r, admin, 2)
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/tokens/%d/assign", tok.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var assigned struct {
		Token tokenJSON `json:"token"`
	}
	decode(t, w, &assigned)

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/tables/%d", *assigned.Token.AssignedTableID), admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
