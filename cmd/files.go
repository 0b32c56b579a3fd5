package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// FilesPlay opens a stored file's URL with the system handler.
func (r *Runner) FilesPlay(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: file path", shared.ErrMissingArgument)
	}

	url := r.api.URL(path)
	r.logger.Info("opening file", "url", url)
	return r.open(url)
}

// FilesDownload fetches every track file or invoice document visible to the signed-in role.
func (r *Runner) FilesDownload(ctx context.Context, cmd *cli.Command) error {
	kind := cmd.String("kind")
	if kind == "" {
		kind = tasks.SectionTracks
		if r.store.Role() == models.RoleLicensee {
			kind = tasks.SectionInvoices
		}
	}

	jobs, err := r.downloadJobs(ctx, kind)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return r.writePlain("No %s with files to download\n", kind)
	}

	opts := tasks.DownloadOpts{
		Dir:        r.config.Downloads.Dir,
		NumWorkers: r.config.Downloads.Workers,
		RateLimit:  r.config.Downloads.RateLimit,
	}
	if cmd.IsSet("dir") {
		opts.Dir = cmd.String("dir")
	}
	if cmd.IsSet("workers") {
		opts.NumWorkers = cmd.Int("workers")
	}
	if cmd.IsSet("rate-limit") {
		opts.RateLimit = cmd.Float("rate-limit")
	}

	progress := make(chan tasks.ProgressUpdate, len(jobs)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.writePlain("%s\n", u.Message)
		}
	}()

	result, err := r.loader.BulkDownload(ctx, jobs, opts, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("✓ %d of %d downloaded to %s", result.Succeeded, result.Total, result.Dir)
	if result.Failed > 0 {
		r.logger.Warn("some downloads failed", "failed", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("✗ %s: %v\n", res.Name, res.Error)
			}
		}
	}
	return nil
}

func (r *Runner) downloadJobs(ctx context.Context, kind string) ([]tasks.DownloadJob, error) {
	role := r.store.Role()
	jobs := []tasks.DownloadJob{}

	switch kind {
	case tasks.SectionTracks, "track":
		var tracks []models.Track
		var err error
		switch role {
		case models.RoleMember:
			tracks, err = r.api.MemberTracks(ctx)
		case models.RoleAdmin:
			tracks, err = r.api.Tracks(ctx)
		default:
			return nil, fmt.Errorf("%w: %s accounts cannot download tracks", shared.ErrForbidden, role)
		}
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			if t.FileURL != "" {
				jobs = append(jobs, tasks.DownloadJob{ID: t.ID, Name: t.Title, URL: t.FileURL})
			}
		}

	case tasks.SectionInvoices, "invoice":
		var invoices []models.Invoice
		var err error
		switch role {
		case models.RoleLicensee:
			invoices, err = r.api.Invoices(ctx)
		case models.RoleAdmin:
			invoices, err = r.api.AdminInvoices(ctx)
		default:
			return nil, fmt.Errorf("%w: %s accounts cannot download invoices", shared.ErrForbidden, role)
		}
		if err != nil {
			return nil, err
		}
		for _, i := range invoices {
			if i.DocumentURL != "" {
				jobs = append(jobs, tasks.DownloadJob{ID: i.ID, Name: "invoice-" + i.Number, URL: i.DocumentURL})
			}
		}

	default:
		return nil, fmt.Errorf("%w: --kind must be tracks or invoices, got %q", shared.ErrInvalidFlag, kind)
	}

	return jobs, nil
}
