package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/tasks"
	"github.com/desertthunder/mrx/internal/ui"
	"github.com/urfave/cli/v3"
)

type sectionSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// AdminDashboard loads every admin list concurrently and prints the counts. Failed sections are reported but do not
// fail the command.
func (r *Runner) AdminDashboard(ctx context.Context, cmd *cli.Command) error {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	dashboard, err := r.loader.Dashboard(ctx, r.store.Role(), progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	summary := make([]sectionSummary, 0, len(dashboard.Sections))
	for _, s := range dashboard.Sections {
		entry := sectionSummary{Name: s.Name, Count: s.Count}
		if s.Err != nil {
			entry.Error = services.MessageOf(s.Err, s.Err.Error())
		}
		summary = append(summary, entry)
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}

	r.writePlainHeader("Dashboard")
	for _, s := range summary {
		if s.Error != "" {
			r.writePlain("✗ %-10s %s\n", s.Name, s.Error)
			continue
		}
		r.writePlain("✓ %-10s %d\n", s.Name, s.Count)
	}
	if failed := dashboard.Failed(); len(failed) > 0 {
		r.logger.Warn("some sections failed to load", "count", len(failed))
	}
	return nil
}

// AdminMembers lists every member.
func (r *Runner) AdminMembers(ctx context.Context, cmd *cli.Command) error {
	members, err := r.api.Members(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "Members", "members", ui.MemberColumns(), members)
}

// AdminLicensees lists every licensee.
func (r *Runner) AdminLicensees(ctx context.Context, cmd *cli.Command) error {
	licensees, err := r.api.Licensees(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "Licensees", "licensees", ui.LicenseeColumns(), licensees)
}

// AdminTracks lists every track.
func (r *Runner) AdminTracks(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.api.Tracks(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "Tracks", "tracks", ui.TrackColumns(), tracks)
}

// AdminLicenses lists every license.
func (r *Runner) AdminLicenses(ctx context.Context, cmd *cli.Command) error {
	licenses, err := r.api.AdminLicenses(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "Licenses", "licenses", ui.LicenseColumns(), licenses)
}

// AdminInvoices lists every invoice.
func (r *Runner) AdminInvoices(ctx context.Context, cmd *cli.Command) error {
	invoices, err := r.api.AdminInvoices(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "Invoices", "invoices", ui.InvoiceColumns(), invoices)
}

// AdminPayments lists every payment.
func (r *Runner) AdminPayments(ctx context.Context, cmd *cli.Command) error {
	payments, err := r.api.AdminPayments(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "Payments", "payments", ui.PaymentColumns(), payments)
}

// AdminApprove approves the record named by the resource and id arguments.
func (r *Runner) AdminApprove(ctx context.Context, cmd *cli.Command) error {
	return r.setStatus(ctx, cmd, models.StatusApproved)
}

// AdminReject rejects the record named by the resource and id arguments.
func (r *Runner) AdminReject(ctx context.Context, cmd *cli.Command) error {
	return r.setStatus(ctx, cmd, models.StatusRejected)
}

func (r *Runner) setStatus(ctx context.Context, cmd *cli.Command, status models.Status) error {
	resource, err := services.ParseResource(cmd.StringArg("resource"))
	if err != nil {
		return err
	}
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: %s id", shared.ErrMissingArgument, resource)
	}

	if err := r.api.SetStatus(ctx, resource, id, status); err != nil {
		return err
	}
	r.logger.Info("status changed", "resource", resource, "id", id, "status", status)
	return r.writePlain("✓ %s %s %s\n", resource, id, status)
}

// AdminAssignISRC sets a track's ISRC.
func (r *Runner) AdminAssignISRC(ctx context.Context, cmd *cli.Command) error {
	id, isrc := cmd.StringArg("track-id"), cmd.StringArg("isrc")
	if err := r.api.AssignISRC(ctx, id, isrc); err != nil {
		return err
	}
	return r.writePlain("✓ Track %s assigned ISRC %s\n", id, isrc)
}

// AdminAssignIPI sets a member's IPI number.
func (r *Runner) AdminAssignIPI(ctx context.Context, cmd *cli.Command) error {
	id, ipi := cmd.StringArg("member-id"), cmd.StringArg("ipi")
	if err := r.api.AssignIPI(ctx, id, ipi); err != nil {
		return err
	}
	return r.writePlain("✓ Member %s assigned IPI %s\n", id, ipi)
}

// AdminInvoice issues an invoice against a license.
func (r *Runner) AdminInvoice(ctx context.Context, cmd *cli.Command) error {
	due, err := time.Parse(time.DateOnly, cmd.String("due"))
	if err != nil {
		return fmt.Errorf("%w: --due must be YYYY-MM-DD: %v", shared.ErrInvalidFlag, err)
	}

	invoice, err := r.api.CreateInvoice(ctx, services.InvoiceInput{
		LicenseID: cmd.String("license"),
		Amount:    cmd.Float("amount"),
		Currency:  cmd.String("currency"),
		DueDate:   due,
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ Invoice %s issued for %.2f %s, due %s\n",
		invoice.Number, invoice.Amount, invoice.Currency, invoice.DueDate.Format(time.DateOnly))
}
