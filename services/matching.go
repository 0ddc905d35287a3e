package services

import (
	"context"
	"errors"
	"sort"

	"github.com/yeremiapane/queue-app/models"
	"gorm.io/gorm"
)

const (
	AssignmentExact  = "exact"
	AssignmentSingle = "single"
	AssignmentJoined = "joined"
	AssignmentShared = "shared"
)

// ValidAssignmentType reports whether t names a known assignment type.
func ValidAssignmentType(t string) bool {
	switch t {
	case AssignmentExact, AssignmentSingle, AssignmentJoined, AssignmentShared:
		return true
	}
	return false
}

// TableMatch is the result of a successful table search.
type TableMatch struct {
	Tables []models.Table `json:"tables"`
	Type   string         `json:"type"`
}

// TableIDs returns the ids of the matched tables in match order.
func (m *TableMatch) TableIDs() []uint {
	ids := make([]uint, len(m.Tables))
	for i, t := range m.Tables {
		ids[i] = t.ID
	}
	return ids
}

// SharedCandidate is a table in shared status with the party size of the
// token it currently records.
type SharedCandidate struct {
	Table         models.Table
	OccupantParty int
}

// FindBestTableMatch looks for seating for a party against the current
// roster. A nil match with a nil error means nothing fits. The result is a
// snapshot: AssignTable re-checks availability before binding.
func (s *QueueService) FindBestTableMatch(ctx context.Context, partySize int, shareConsent bool) (*TableMatch, error) {
	if partySize < 1 {
		return nil, NewValidationError("party size must be at least 1")
	}
	return findBestTableMatch(s.DB.WithContext(ctx), partySize, shareConsent)
}

func findBestTableMatch(tx *gorm.DB, partySize int, shareConsent bool) (*TableMatch, error) {
	var free []models.Table
	if err := tx.Where("status = ?", models.TableStatusFree).
		Order("capacity ASC").
		Order("table_number ASC").
		Find(&free).Error; err != nil {
		return nil, err
	}

	var shared []SharedCandidate
	if shareConsent {
		var err error
		if shared, err = sharedCandidates(tx); err != nil {
			return nil, err
		}
	}

	return MatchTables(free, shared, partySize, shareConsent), nil
}

func sharedCandidates(tx *gorm.DB) ([]SharedCandidate, error) {
	var tables []models.Table
	if err := tx.Where("status = ?", models.TableStatusShared).
		Order("table_number ASC").
		Find(&tables).Error; err != nil {
		return nil, err
	}

	var candidates []SharedCandidate
	for _, table := range tables {
		if table.CurrentTokenID == nil {
			continue
		}
		var occupant models.Token
		err := tx.Select("id", "party_size").Take(&occupant, *table.CurrentTokenID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, SharedCandidate{Table: table, OccupantParty: occupant.PartySize})
	}
	return candidates, nil
}

// MatchTables applies the greedy search in priority order: exact capacity,
// smallest sufficient table, first joinable pair, then shared seating when
// the party consents. Joins never combine more than two tables.
func MatchTables(free []models.Table, shared []SharedCandidate, partySize int, shareConsent bool) *TableMatch {
	tables := make([]models.Table, len(free))
	copy(tables, free)
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].Capacity < tables[j].Capacity
	})

	for _, t := range tables {
		if t.Capacity == partySize {
			return &TableMatch{Tables: []models.Table{t}, Type: AssignmentExact}
		}
	}

	for _, t := range tables {
		if t.Capacity >= partySize {
			return &TableMatch{Tables: []models.Table{t}, Type: AssignmentSingle}
		}
	}

	var joinable []models.Table
	for _, t := range tables {
		if t.IsJoinable {
			joinable = append(joinable, t)
		}
	}
	for i := 0; i < len(joinable); i++ {
		for j := i + 1; j < len(joinable); j++ {
			if joinable[i].Capacity+joinable[j].Capacity >= partySize {
				return &TableMatch{Tables: []models.Table{joinable[i], joinable[j]}, Type: AssignmentJoined}
			}
		}
	}

	if shareConsent {
		for _, c := range shared {
			if c.Table.Capacity-c.OccupantParty >= partySize {
				return &TableMatch{Tables: []models.Table{c.Table}, Type: AssignmentShared}
			}
		}
	}

	return nil
}
