// Package store persists inspection history.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/inspect-cli/internal/model"
)

// ErrNotFound is returned when an inspection ID does not exist.
var ErrNotFound = eris.New("store: inspection not found")

// InspectionFilter specifies criteria for listing saved inspections.
type InspectionFilter struct {
	TrackID string              `json:"track_id,omitempty"`
	JumboID string              `json:"jumbo_id,omitempty"`
	Overall model.OverallStatus `json:"overall,omitempty"`
	Limit   int                 `json:"limit,omitempty"`
	Offset  int                 `json:"offset,omitempty"`
}

// DefaultListLimit caps ListInspections when no limit is given.
const DefaultListLimit = 100

// Store defines the persistence interface for inspection history.
type Store interface {
	// SaveInspection stores insp, assigning an ID and timestamp when unset.
	SaveInspection(ctx context.Context, insp *model.Inspection) error
	GetInspection(ctx context.Context, id string) (*model.Inspection, error)
	// ListInspections returns matching inspections, newest first.
	ListInspections(ctx context.Context, filter InspectionFilter) ([]model.Inspection, error)

	Migrate(ctx context.Context) error
	Close() error
}

// prepare fills in the ID and timestamp and encodes the inspection payload.
func prepare(insp *model.Inspection) ([]byte, error) {
	if insp == nil {
		return nil, eris.New("store: nil inspection")
	}
	if insp.ID == "" {
		insp.ID = uuid.New().String()
	}
	if insp.CreatedAt.IsZero() {
		insp.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(insp)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal inspection")
	}
	return payload, nil
}

func decode(payload []byte) (*model.Inspection, error) {
	var insp model.Inspection
	if err := json.Unmarshal(payload, &insp); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal inspection")
	}
	return &insp, nil
}

func limitOf(f InspectionFilter) int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}
