package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

// QueueService owns every read-then-write sequence over tokens and tables.
// Mutations run under Locker and inside one transaction each.
type QueueService struct {
	DB     *gorm.DB
	Locker Locker
	Now    func() time.Time
}

func NewQueueService(db *gorm.DB, locker Locker) *QueueService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &QueueService{
		DB:     db,
		Locker: locker,
		Now:    utcNow,
	}
}

// utcNow keeps every timestamp the engine persists in one zone.
func utcNow() time.Time {
	return time.Now().UTC()
}

// withTx runs fn in a transaction while holding the queue lock.
func (s *QueueService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	unlock, err := s.Locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return s.DB.WithContext(ctx).Transaction(fn)
}

// GenerateTokenNumber returns the number the next token would receive.
// CreateToken allocates it atomically; this is a preview.
func (s *QueueService) GenerateTokenNumber(ctx context.Context) (string, error) {
	return nextTokenNumber(s.DB.WithContext(ctx))
}

// NextQueuePosition returns the position a new waiting token would take.
func (s *QueueService) NextQueuePosition(ctx context.Context) (int, error) {
	return nextQueuePosition(s.DB.WithContext(ctx))
}

// EstimatedWaitTime returns position * average seat time in minutes.
func (s *QueueService) EstimatedWaitTime(ctx context.Context, position int) (int, error) {
	settings, err := loadSettings(s.DB.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return estimatedWait(settings, position), nil
}

// RecalculateQueuePositions renumbers waiting tokens 1..N and refreshes
// their estimated wait.
func (s *QueueService) RecalculateQueuePositions(ctx context.Context) error {
	return s.withTx(ctx, recalculate)
}

func nextTokenNumber(tx *gorm.DB) (string, error) {
	var last models.Token
	err := tx.Select("token_number").Order("created_at DESC").Order("id DESC").Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "T001", nil
	}
	if err != nil {
		return "", err
	}

	n, err := strconv.Atoi(strings.TrimPrefix(last.TokenNumber, "T"))
	if err != nil {
		return "", fmt.Errorf("parse token number %q: %w", last.TokenNumber, err)
	}
	return fmt.Sprintf("T%03d", n+1), nil
}

func nextQueuePosition(tx *gorm.DB) (int, error) {
	var max int
	err := tx.Model(&models.Token{}).
		Where("status = ?", models.TokenStatusWaiting).
		Select("COALESCE(MAX(queue_position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func estimatedWait(settings models.Settings, position int) int {
	avg := settings.AvgSeatTimeMinutes
	if avg < 1 {
		avg = models.DefaultAvgSeatTimeMinutes
	}
	return position * avg
}

// loadSettings reads the singleton without creating it.
func loadSettings(tx *gorm.DB) (models.Settings, error) {
	var settings models.Settings
	err := tx.Order("id ASC").Take(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func waitingTokens(tx *gorm.DB) ([]models.Token, error) {
	var tokens []models.Token
	err := tx.Where("status = ?", models.TokenStatusWaiting).
		Order("queue_position ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&tokens).Error
	return tokens, err
}

func recalculate(tx *gorm.DB) error {
	tokens, err := waitingTokens(tx)
	if err != nil {
		return err
	}
	return renumber(tx, tokens)
}

// renumber writes positions 1..N in slice order.
func renumber(tx *gorm.DB, tokens []models.Token) error {
	settings, err := loadSettings(tx)
	if err != nil {
		return err
	}

	for i := range tokens {
		position := i + 1
		wait := estimatedWait(settings, position)
		if tokens[i].QueuePosition == position && tokens[i].EstimatedWaitTime == wait {
			continue
		}
		if err := tx.Model(&tokens[i]).Updates(map[string]interface{}{
			"queue_position":      position,
			"estimated_wait_time": wait,
		}).Error; err != nil {
			return err
		}
		tokens[i].QueuePosition = position
		tokens[i].EstimatedWaitTime = wait
	}
	return nil
}

func findToken(tx *gorm.DB, id uint) (models.Token, error) {
	var token models.Token
	err := tx.First(&token, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return token, ErrTokenNotFound
	}
	return token, err
}

func findTable(tx *gorm.DB, id uint) (models.Table, error) {
	var table models.Table
	err := tx.First(&table, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return table, ErrTableNotFound
	}
	return table, err
}

func writeLog(tx *gorm.DB, entry models.OverrideLog) error {
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write override log: %w", err)
	}
	utils.InfoLogger.WithFields(logFields(entry)).Info(entry.Reason)
	return nil
}

// logFields renders an override log entry for logrus; absent ids are
// omitted rather than printed as pointers.
func logFields(entry models.OverrideLog) logrus.Fields {
	fields := logrus.Fields{
		"action":       entry.Action,
		"performed_by": entry.PerformedBy,
	}
	if entry.TokenID != nil {
		fields["token_id"] = *entry.TokenID
	}
	if entry.TableID != nil {
		fields["table_id"] = *entry.TableID
	}
	return fields
}

func uintPtr(v uint) *uint {
	return &v
}
