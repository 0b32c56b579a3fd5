package services

import (
	"context"

	"github.com/desertthunder/mrx/internal/models"
)

// Genres calls GET /lookups/genres.
func (a *APIService) Genres(ctx context.Context) ([]models.Lookup, error) {
	return getList[models.Lookup](ctx, a, "/lookups/genres")
}

// Languages calls GET /lookups/languages.
func (a *APIService) Languages(ctx context.Context) ([]models.Lookup, error) {
	return getList[models.Lookup](ctx, a, "/lookups/languages")
}

// Countries calls GET /lookups/countries.
func (a *APIService) Countries(ctx context.Context) ([]models.Lookup, error) {
	return getList[models.Lookup](ctx, a, "/lookups/countries")
}
