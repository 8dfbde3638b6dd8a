package patterns

import (
	"context"

	"github.com/portstack/surgeops/internal/models"
)

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, patterns []models.SurgePattern) error

// StorePatterns implements Store.
func (f StoreFunc) StorePatterns(ctx context.Context, patterns []models.SurgePattern) error {
	return f(ctx, patterns)
}
