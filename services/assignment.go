package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

// AssignTable seats a token at the given tables. The first id is the
// primary table recorded on the token. performedBy is empty for
// system-driven assignment, in which case no override log is written.
//
// Terminal tokens are rejected. Re-assigning a seated token to the same
// primary table is a no-op; any other change for a seated token is rejected.
func (s *QueueService) AssignTable(ctx context.Context, tokenID uint, tableIDs []uint, assignmentType, performedBy string) error {
	if len(tableIDs) == 0 {
		return NewValidationError("table ids are required")
	}
	if !ValidAssignmentType(assignmentType) {
		return NewValidationError("unknown assignment type %q", assignmentType)
	}

	return s.withTx(ctx, func(tx *gorm.DB) error {
		return s.assign(tx, tokenID, tableIDs, assignmentType, performedBy)
	})
}

func (s *QueueService) assign(tx *gorm.DB, tokenID uint, tableIDs []uint, assignmentType, performedBy string) error {
	token, err := findToken(tx, tokenID)
	if err != nil {
		return err
	}

	switch {
	case token.IsTerminal():
		return fmt.Errorf("%w: token %s is %s", ErrInvalidState, token.TokenNumber, token.Status)
	case token.Status == models.TokenStatusSeated:
		if token.AssignedTableID != nil && *token.AssignedTableID == tableIDs[0] {
			return nil
		}
		return fmt.Errorf("%w: token %s is already seated", ErrInvalidState, token.TokenNumber)
	}

	tables, err := loadTables(tx, tableIDs)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if !tableAccepts(table, assignmentType) {
			return fmt.Errorf("%w: table %d is %s", ErrTableUnavailable, table.TableNumber, table.Status)
		}
	}

	now := s.Now()
	if err := tx.Model(&token).Updates(map[string]interface{}{
		"status":            models.TokenStatusSeated,
		"seated_time":       now,
		"assigned_table_id": tables[0].ID,
	}).Error; err != nil {
		return err
	}

	tableStatus := models.TableStatusOccupied
	if assignmentType == AssignmentShared {
		tableStatus = models.TableStatusShared
	}
	for i := range tables {
		if err := tx.Model(&tables[i]).Updates(map[string]interface{}{
			"status":           tableStatus,
			"current_token_id": token.ID,
		}).Error; err != nil {
			return err
		}
	}

	if err := recalculate(tx); err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"token":  token.TokenNumber,
		"tables": tableIDs,
		"type":   assignmentType,
	}).Info("token seated")

	if performedBy == "" {
		return nil
	}
	return writeLog(tx, models.OverrideLog{
		Action:      models.ActionManualAssign,
		PerformedBy: performedBy,
		TokenID:     uintPtr(token.ID),
		TableID:     uintPtr(tables[0].ID),
		Reason:      fmt.Sprintf("Manually assigned %s table(s)", assignmentType),
		Timestamp:   now,
	})
}

// loadTables resolves every id, keeping the caller's order.
func loadTables(tx *gorm.DB, ids []uint) ([]models.Table, error) {
	var found []models.Table
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Table, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	tables := make([]models.Table, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrTableNotFound, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		tables = append(tables, t)
	}
	return tables, nil
}

func tableAccepts(table models.Table, assignmentType string) bool {
	if assignmentType == AssignmentShared {
		return table.Status == models.TableStatusFree || table.Status == models.TableStatusShared
	}
	return table.Status == models.TableStatusFree || table.Status == models.TableStatusReserved
}

// AutoAssignTables walks the waiting list in queue order and seats every
// token a table can be found for. Each token is matched against the roster
// as left by the previous assignment, so no table is handed out twice.
func (s *QueueService) AutoAssignTables(ctx context.Context) (int, error) {
	unlock, err := s.Locker.Lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	db := s.DB.WithContext(ctx)
	tokens, err := waitingTokens(db)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, token := range tokens {
		matched := false
		err := db.Transaction(func(tx *gorm.DB) error {
			match, err := findBestTableMatch(tx, token.PartySize, token.ShareConsent)
			if err != nil || match == nil {
				return err
			}
			if err := s.assign(tx, token.ID, match.TableIDs(), match.Type, ""); err != nil {
				return err
			}
			matched = true
			return nil
		})
		if err != nil {
			return assigned, fmt.Errorf("auto-assign token %s: %w", token.TokenNumber, err)
		}
		if matched {
			assigned++
		}
	}

	if assigned > 0 {
		utils.InfoLogger.Printf("Auto-assigned %d token(s)", assigned)
	}
	return assigned, nil
}

// CompleteToken marks a token completed and frees the tables it holds.
// The primary table is freed unconditionally, even if another party
// shares it.
func (s *QueueService) CompleteToken(ctx context.Context, tokenID uint, performedBy string) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		token, err := findToken(tx, tokenID)
		if err != nil {
			return err
		}
		if token.IsTerminal() {
			return fmt.Errorf("%w: token %s is %s", ErrInvalidState, token.TokenNumber, token.Status)
		}
		wasWaiting := token.Status == models.TokenStatusWaiting

		if err := tx.Model(&token).Update("status", models.TokenStatusCompleted).Error; err != nil {
			return err
		}
		if err := releaseTables(tx, token); err != nil {
			return err
		}
		if wasWaiting {
			if err := recalculate(tx); err != nil {
				return err
			}
		}

		if performedBy == "" {
			return nil
		}
		return writeLog(tx, models.OverrideLog{
			Action:      models.ActionCompleteToken,
			PerformedBy: performedBy,
			TokenID:     uintPtr(token.ID),
			TableID:     token.AssignedTableID,
			Reason:      "Token completed",
			Timestamp:   s.Now(),
		})
	})
}

// CancelToken cancels a waiting or seated token. performedBy defaults to
// the system identity.
func (s *QueueService) CancelToken(ctx context.Context, tokenID uint, performedBy string) error {
	if performedBy == "" {
		performedBy = models.PerformerSystem
	}
	return s.withTx(ctx, func(tx *gorm.DB) error {
		token, err := findToken(tx, tokenID)
		if err != nil {
			return err
		}
		if token.IsTerminal() {
			return fmt.Errorf("%w: token %s is %s", ErrInvalidState, token.TokenNumber, token.Status)
		}

		if err := tx.Model(&token).Update("status", models.TokenStatusCancelled).Error; err != nil {
			return err
		}
		if err := releaseTables(tx, token); err != nil {
			return err
		}
		if err := recalculate(tx); err != nil {
			return err
		}

		return writeLog(tx, models.OverrideLog{
			Action:      models.ActionCancelToken,
			PerformedBy: performedBy,
			TokenID:     uintPtr(token.ID),
			TableID:     token.AssignedTableID,
			Reason:      "Token cancelled",
			Timestamp:   s.Now(),
		})
	})
}

// releaseTables frees the token's primary table and any joined table still
// pointing at the token.
func releaseTables(tx *gorm.DB, token models.Token) error {
	free := map[string]interface{}{
		"status":           models.TableStatusFree,
		"current_token_id": nil,
	}

	if token.AssignedTableID != nil {
		if err := tx.Model(&models.Table{}).
			Where("id = ?", *token.AssignedTableID).
			Updates(free).Error; err != nil {
			return err
		}
	}
	return tx.Model(&models.Table{}).
		Where("current_token_id = ?", token.ID).
		Updates(free).Error
}

// RepositionToken moves a waiting token to position (clamped to the queue
// length) and renumbers the rest around it.
func (s *QueueService) RepositionToken(ctx context.Context, tokenID uint, position int, performedBy, reason string) error {
	if position < 1 {
		return NewValidationError("queue position must be at least 1")
	}
	return s.withTx(ctx, func(tx *gorm.DB) error {
		token, err := findToken(tx, tokenID)
		if err != nil {
			return err
		}
		return s.reposition(tx, token, position, performedBy, reason)
	})
}

// reposition splices token into the waiting list at position and writes the
// manual_reorder log. It must run inside the caller's transaction.
func (s *QueueService) reposition(tx *gorm.DB, token models.Token, position int, performedBy, reason string) error {
	if performedBy == "" {
		performedBy = models.PerformerSystem
	}
	if reason == "" {
		reason = "Manual queue reorder"
	}
	if token.Status != models.TokenStatusWaiting {
		return fmt.Errorf("%w: only waiting tokens can be reordered", ErrInvalidState)
	}

	tokens, err := waitingTokens(tx)
	if err != nil {
		return err
	}
	ordered := make([]models.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.ID != token.ID {
			ordered = append(ordered, t)
		}
	}
	idx := position - 1
	if idx > len(ordered) {
		idx = len(ordered)
	}
	ordered = append(ordered[:idx], append([]models.Token{token}, ordered[idx:]...)...)

	if err := renumber(tx, ordered); err != nil {
		return err
	}

	return writeLog(tx, models.OverrideLog{
		Action:      models.ActionManualReorder,
		PerformedBy: performedBy,
		TokenID:     uintPtr(token.ID),
		Reason:      reason,
		Timestamp:   s.Now(),
	})
}
