package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/models"
)

func TestCreateTable(t *testing.T) {
	db := setupTestDB(t)
	s := NewQueueService(db, nil)
	ctx := context.Background()

	table, err := s.CreateTable(ctx, NewTable{TableNumber: 7, Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, table.Status)
	assert.True(t, table.IsJoinable)

	no := false
	solo, err := s.CreateTable(ctx, NewTable{TableNumber: 8, Capacity: 2, IsJoinable: &no})
	require.NoError(t, err)
	assert.False(t, solo.IsJoinable)
	assert.False(t, reloadTable(t, db, solo.ID).IsJoinable)

	_, err = s.CreateTable(ctx, NewTable{TableNumber: 7, Capacity: 6})
	assert.True(t, errors.Is(err, ErrDuplicateTable))

	_, err = s.CreateTable(ctx, NewTable{TableNumber: 0, Capacity: 0})
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	assert.Len(t, v.Problems, 2)

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, 7, tables[0].TableNumber)
}

func TestUpdateTable(t *testing.T) {
	db := setupTestDB(t)
	tables := seedTables(t, db, 4, 4)
	s := NewQueueService(db, nil)
	ctx := context.Background()

	reserved := models.TableStatusReserved
	capacity := 6
	updated, err := s.UpdateTable(ctx, tables[0].ID, TablePatch{Status: &reserved, Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusReserved, updated.Status)
	assert.Equal(t, 6, updated.Capacity)

	occupied := models.TableStatusOccupied
	_, err = s.UpdateTable(ctx, tables[1].ID, TablePatch{Status: &occupied})
	assert.Equal(t, KindValidation, KindOf(err))

	token := mustCreateToken(t, s, walkIn("A", 4))
	require.NoError(t, s.AssignTable(ctx, token.ID, []uint{tables[1].ID}, AssignmentExact, ""))
	free := models.TableStatusFree
	_, err = s.UpdateTable(ctx, tables[1].ID, TablePatch{Status: &free})
	assert.True(t, errors.Is(err, ErrTableInUse))

	_, err = s.UpdateTable(ctx, 999, TablePatch{Capacity: &capacity})
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestReservedTableCanBeAssigned(t *testing.T) {
	db := setupTestDB(t)
	tables := seedTables(t, db, 4)
	s := NewQueueService(db, nil)
	ctx := context.Background()

	reserved := models.TableStatusReserved
	_, err := s.UpdateTable(ctx, tables[0].ID, TablePatch{Status: &reserved})
	require.NoError(t, err)

	token := mustCreateToken(t, s, walkIn("A", 4))
	require.NoError(t, s.AssignTable(ctx, token.ID, []uint{tables[0].ID}, AssignmentExact, "staff@restaurant.com"))
	assert.Equal(t, models.TableStatusOccupied, reloadTable(t, db, tables[0].ID).Status)
}

func TestDeleteTable(t *testing.T) {
	db := setupTestDB(t)
	tables := seedTables(t, db, 4, 2)
	s := NewQueueService(db, nil)
	ctx := context.Background()

	token := mustCreateToken(t, s, walkIn("A", 4))
	require.NoError(t, s.AssignTable(ctx, token.ID, []uint{tables[0].ID}, AssignmentExact, ""))

	assert.True(t, errors.Is(s.DeleteTable(ctx, tables[0].ID), ErrTableInUse))
	require.NoError(t, s.DeleteTable(ctx, tables[1].ID))
	assert.True(t, errors.Is(s.DeleteTable(ctx, tables[1].ID), ErrTableNotFound))
}

func TestTokensByID(t *testing.T) {
	db := setupTestDB(t)
	s := NewQueueService(db, nil)
	ctx := context.Background()

	a := mustCreateToken(t, s, walkIn("A", 2))
	byID, err := s.TokensByID(ctx, []uint{a.ID, 42})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Equal(t, "A", byID[a.ID].CustomerName)

	byID, err = s.TokensByID(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, byID)
}

func TestCreatedNonJoinableTablesAreNeverJoined(t *testing.T) {
	db := setupTestDB(t)
	s := NewQueueService(db, nil)
	ctx := context.Background()

	no := false
	for n := 1; n <= 2; n++ {
		_, err := s.CreateTable(ctx, NewTable{TableNumber: n, Capacity: 2, IsJoinable: &no})
		require.NoError(t, err)
	}

	match, err := s.FindBestTableMatch(ctx, 4, false)
	require.NoError(t, err)
	assert.Nil(t, match)

	yes := true
	_, err = s.UpdateTable(ctx, 1, TablePatch{IsJoinable: &yes})
	require.NoError(t, err)
	_, err = s.UpdateTable(ctx, 2, TablePatch{IsJoinable: &yes})
	require.NoError(t, err)

	match, err = s.FindBestTableMatch(ctx, 4, false)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, AssignmentJoined, match.Type)
}
