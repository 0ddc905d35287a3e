package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

// NewToken is the input for CreateToken.
type NewToken struct {
	CustomerName    string
	PhoneNumber     string
	PartySize       int
	Type            string
	ReservationTime *time.Time
	ShareConsent    bool
}

func (in *NewToken) normalize() error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if in.Type == "" {
		in.Type = models.TokenTypeWalkIn
	}

	v := &ValidationError{}
	if in.CustomerName == "" {
		v.add("customer name is required")
	}
	if in.PhoneNumber == "" {
		v.add("phone number is required")
	}
	if in.PartySize < 1 {
		v.add("party size must be at least 1")
	}
	switch in.Type {
	case models.TokenTypeWalkIn:
		in.ReservationTime = nil
	case models.TokenTypeReservation:
		if in.ReservationTime == nil {
			v.add("reservation time is required for reservations")
		}
	default:
		v.add("unknown token type %q", in.Type)
	}
	return v.orNil()
}

// CreateToken issues the next token number, places the party at the back
// of the queue and stores it as waiting. Number and position are allocated
// under the queue lock so concurrent callers never collide.
func (s *QueueService) CreateToken(ctx context.Context, in NewToken) (*models.Token, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var token models.Token
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		number, err := nextTokenNumber(tx)
		if err != nil {
			return err
		}
		position, err := nextQueuePosition(tx)
		if err != nil {
			return err
		}
		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}

		token = models.Token{
			TokenNumber:       number,
			CustomerName:      in.CustomerName,
			PhoneNumber:       in.PhoneNumber,
			PartySize:         in.PartySize,
			Type:              in.Type,
			Status:            models.TokenStatusWaiting,
			ReservationTime:   in.ReservationTime,
			ArrivalTime:       s.Now(),
			QueuePosition:     position,
			EstimatedWaitTime: estimatedWait(settings, position),
			ShareConsent:      in.ShareConsent,
		}
		if err := tx.Create(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrDuplicateToken, number)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Token %s created for party of %d (position %d)", token.TokenNumber, token.PartySize, token.QueuePosition)
	return &token, nil
}

// GetToken loads one token.
func (s *QueueService) GetToken(ctx context.Context, id uint) (*models.Token, error) {
	token, err := findToken(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// TokenFilter narrows ListTokens. Zero values mean no filter.
type TokenFilter struct {
	Status string
	Type   string
	Page   int
	Limit  int
}

// ListTokens returns a page of tokens ordered by queue position, newest
// first within a position, plus the total matching count.
func (s *QueueService) ListTokens(ctx context.Context, f TokenFilter) ([]models.Token, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	q := s.DB.WithContext(ctx).Model(&models.Token{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tokens []models.Token
	err := q.Order("queue_position ASC").
		Order("created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&tokens).Error
	return tokens, total, err
}

// TokenPatch carries the editable token fields. Nil means unchanged.
type TokenPatch struct {
	CustomerName  *string
	PhoneNumber   *string
	PartySize     *int
	ShareConsent  *bool
	QueuePosition *int
	Reason        string
}

// UpdateToken edits customer details. A changed queue position is applied
// as a manual reorder and logged.
func (s *QueueService) UpdateToken(ctx context.Context, id uint, p TokenPatch, performedBy string) (*models.Token, error) {
	v := &ValidationError{}
	updates := map[string]interface{}{}
	if p.CustomerName != nil {
		if name := strings.TrimSpace(*p.CustomerName); name == "" {
			v.add("customer name cannot be empty")
		} else {
			updates["customer_name"] = name
		}
	}
	if p.PhoneNumber != nil {
		if phone := strings.TrimSpace(*p.PhoneNumber); phone == "" {
			v.add("phone number cannot be empty")
		} else {
			updates["phone_number"] = phone
		}
	}
	if p.PartySize != nil {
		if *p.PartySize < 1 {
			v.add("party size must be at least 1")
		} else {
			updates["party_size"] = *p.PartySize
		}
	}
	if p.ShareConsent != nil {
		updates["share_consent"] = *p.ShareConsent
	}
	if p.QueuePosition != nil && *p.QueuePosition < 1 {
		v.add("queue position must be at least 1")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	var token models.Token
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		if token, err = findToken(tx, id); err != nil {
			return err
		}
		// The reorder is decided and applied under the same lock and
		// transaction as the field edits; a rejected reorder rolls both back.
		if p.QueuePosition != nil && *p.QueuePosition != token.QueuePosition {
			if err := s.reposition(tx, token, *p.QueuePosition, performedBy, p.Reason); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Token{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		token, err = findToken(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// CheckReservationTimeouts cancels waiting reservations whose scheduled
// time is more than the grace period in the past.
func (s *QueueService) CheckReservationTimeouts(ctx context.Context) (int, error) {
	evicted := 0
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		settings, err := loadSettings(tx)
		if err != nil {
			return err
		}
		now := s.Now()
		cutoff := now.Add(-time.Duration(settings.GracePeriodMinutes) * time.Minute)

		var reservations []models.Token
		if err := tx.Where("type = ? AND status = ?", models.TokenTypeReservation, models.TokenStatusWaiting).
			Find(&reservations).Error; err != nil {
			return err
		}

		for i := range reservations {
			token := &reservations[i]
			if token.ReservationTime == nil || !token.ReservationTime.Before(cutoff) {
				continue
			}
			if err := tx.Model(token).Update("status", models.TokenStatusCancelled).Error; err != nil {
				return err
			}
			if err := writeLog(tx, models.OverrideLog{
				Action:      models.ActionAutoTimeout,
				PerformedBy: models.PerformerSystem,
				TokenID:     uintPtr(token.ID),
				Reason:      fmt.Sprintf("Reservation timeout after %d minutes grace period", settings.GracePeriodMinutes),
				Timestamp:   now,
			}); err != nil {
				return err
			}
			evicted++
		}

		if evicted > 0 {
			return recalculate(tx)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return evicted, nil
}
