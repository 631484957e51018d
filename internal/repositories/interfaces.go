package repositories

import (
	"context"

	"github.com/chrisdamba/expcheck/internal/models"
)

// RunRepository keeps the history of validation runs.
type RunRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, run *models.ValidationRun) error
	Count(ctx context.Context) (int, error)
}
