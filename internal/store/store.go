package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run records one completed analysis.
type Run struct {
	ID          uuid.UUID `json:"run_id"`
	InputFile   string    `json:"input_file"`
	ResultFile  string    `json:"result_file"`
	Email       string    `json:"email"`
	Weights     string    `json:"weights"`
	Impacts     string    `json:"impacts"`
	TotalRows   int       `json:"total_rows"`
	EmailStatus string    `json:"email_status"`
	CreatedAt   time.Time `json:"created_at"`
}

type RunFilter struct {
	Email string
	Limit int
}

// DefaultListLimit applies when RunFilter.Limit is zero.
const DefaultListLimit = 50

type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	// GetRun returns nil, nil when no run has the id.
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	Close() error
}
