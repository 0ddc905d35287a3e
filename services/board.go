package services

import (
	"context"

	"github.com/yeremiapane/queue-app/models"
)

// BoardEntry is the public view of a waiting token. It carries no customer
// details.
type BoardEntry struct {
	TokenNumber       string `json:"token_number"`
	PartySize         int    `json:"party_size"`
	Type              string `json:"type"`
	QueuePosition     int    `json:"queue_position"`
	EstimatedWaitTime int    `json:"estimated_wait_time"`
}

type Board struct {
	Waiting    []BoardEntry `json:"waiting"`
	FreeTables int64        `json:"free_tables"`
}

// PublicBoard lists the waiting queue in order with the number of free
// tables.
func (s *QueueService) PublicBoard(ctx context.Context) (*Board, error) {
	db := s.DB.WithContext(ctx)
	tokens, err := waitingTokens(db)
	if err != nil {
		return nil, err
	}

	board := &Board{Waiting: make([]BoardEntry, 0, len(tokens))}
	for _, t := range tokens {
		board.Waiting = append(board.Waiting, BoardEntry{
			TokenNumber:       t.TokenNumber,
			PartySize:         t.PartySize,
			Type:              t.Type,
			QueuePosition:     t.QueuePosition,
			EstimatedWaitTime: t.EstimatedWaitTime,
		})
	}

	if err := db.Model(&models.Table{}).
		Where("status = ?", models.TableStatusFree).
		Count(&board.FreeTables).Error; err != nil {
		return nil, err
	}
	return board, nil
}
