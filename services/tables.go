package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

const DefaultPageSize = 50

// NewTable is the input for CreateTable. IsJoinable defaults to true.
type NewTable struct {
	TableNumber int
	Capacity    int
	IsJoinable  *bool
}

// CreateTable adds a free table to the roster.
func (s *QueueService) CreateTable(ctx context.Context, in NewTable) (*models.Table, error) {
	v := &ValidationError{}
	if in.TableNumber < 1 {
		v.add("table number is required")
	}
	if in.Capacity < 1 {
		v.add("capacity must be at least 1")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	table := models.Table{
		TableNumber: in.TableNumber,
		Capacity:    in.Capacity,
		Status:      models.TableStatusFree,
		IsJoinable:  true,
	}
	if in.IsJoinable != nil {
		table.IsJoinable = *in.IsJoinable
	}

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Table{}).Where("table_number = ?", in.TableNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %d", ErrDuplicateTable, in.TableNumber)
		}
		// Create skips a false IsJoinable and copies the column default back
		// into table, so the requested value is kept aside and written after.
		joinable := table.IsJoinable
		if err := tx.Create(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %d", ErrDuplicateTable, in.TableNumber)
			}
			return err
		}
		table.IsJoinable = joinable
		return tx.Model(&table).Update("is_joinable", joinable).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("New table created: %d (capacity=%d)", table.TableNumber, table.Capacity)
	return &table, nil
}

// ListTables returns the roster ordered by table number.
func (s *QueueService) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := s.DB.WithContext(ctx).Order("table_number ASC").Find(&tables).Error
	return tables, err
}

// GetTable loads one table.
func (s *QueueService) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	table, err := findTable(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// TablePatch carries editable table fields. Nil means unchanged.
type TablePatch struct {
	Capacity   *int
	Status     *string
	IsJoinable *bool
}

// UpdateTable edits a table. Manual status changes are limited to free and
// reserved on tables nobody holds; occupied and shared come only from
// assignment so the occupant reference stays consistent.
func (s *QueueService) UpdateTable(ctx context.Context, id uint, p TablePatch) (*models.Table, error) {
	v := &ValidationError{}
	updates := map[string]interface{}{}
	if p.Capacity != nil {
		if *p.Capacity < 1 {
			v.add("capacity must be at least 1")
		} else {
			updates["capacity"] = *p.Capacity
		}
	}
	if p.IsJoinable != nil {
		updates["is_joinable"] = *p.IsJoinable
	}
	if p.Status != nil {
		switch *p.Status {
		case models.TableStatusFree, models.TableStatusReserved:
			updates["status"] = *p.Status
		case models.TableStatusOccupied, models.TableStatusShared:
			v.add("status %q is set by seating a token", *p.Status)
		default:
			v.add("unknown table status %q", *p.Status)
		}
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	var table models.Table
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		if table, err = findTable(tx, id); err != nil {
			return err
		}
		if _, ok := updates["status"]; ok && table.CurrentTokenID != nil {
			return fmt.Errorf("%w: table %d is held by a token", ErrTableInUse, table.TableNumber)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&table).Updates(updates).Error; err != nil {
			return err
		}
		table, err = findTable(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %d updated", table.TableNumber)
	return &table, nil
}

// DeleteTable removes a table that nobody occupies.
func (s *QueueService) DeleteTable(ctx context.Context, id uint) error {
	return s.withTx(ctx, func(tx *gorm.DB) error {
		table, err := findTable(tx, id)
		if err != nil {
			return err
		}
		if table.Status == models.TableStatusOccupied || table.Status == models.TableStatusShared {
			return ErrTableInUse
		}
		if err := tx.Delete(&table).Error; err != nil {
			return err
		}
		utils.InfoLogger.Printf("Table %d deleted", table.TableNumber)
		return nil
	})
}

// TokensByID loads tokens keyed by id, for callers that attach occupants to
// tables.
func (s *QueueService) TokensByID(ctx context.Context, ids []uint) (map[uint]models.Token, error) {
	out := make(map[uint]models.Token, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var tokens []models.Token
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&tokens).Error; err != nil {
		return nil, err
	}
	for _, t := range tokens {
		out[t.ID] = t
	}
	return out, nil
}
