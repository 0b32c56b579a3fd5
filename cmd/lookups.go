package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/tasks"
	"github.com/desertthunder/mrx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Lookups lists one kind of reference data, or summarizes all three when no kind is given.
func (r *Runner) Lookups(ctx context.Context, cmd *cli.Command) error {
	kind := strings.ToLower(strings.TrimSpace(cmd.StringArg("kind")))
	if kind == "" {
		return r.lookupSummary(ctx)
	}

	var fetch func(context.Context) ([]models.Lookup, error)
	switch kind {
	case tasks.SectionGenres, "genre":
		kind, fetch = tasks.SectionGenres, r.api.Genres
	case tasks.SectionLanguages, "language":
		kind, fetch = tasks.SectionLanguages, r.api.Languages
	case tasks.SectionCountries, "country":
		kind, fetch = tasks.SectionCountries, r.api.Countries
	default:
		return fmt.Errorf("%w: lookup kind must be genres, languages or countries, got %q", shared.ErrInvalidArgument, kind)
	}

	rows, err := fetch(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, strings.ToUpper(kind[:1])+kind[1:], kind, ui.LookupColumns(), rows)
}

func (r *Runner) lookupSummary(ctx context.Context) error {
	lookups := r.loader.Lookups(ctx, nil)

	r.writePlainHeader("Lookups")
	for _, s := range lookups.Sections {
		if s.Err != nil {
			r.writePlain("✗ %-10s %v\n", s.Name, s.Err)
			continue
		}
		r.writePlain("✓ %-10s %d\n", s.Name, s.Count)
	}
	return r.writePlainln("Run 'mrx lookups <kind>' to list one")
}
