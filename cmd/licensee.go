package main

import (
	"context"

	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/ui"
	"github.com/urfave/cli/v3"
)

// LicenseeLicenses lists the signed-in licensee's licenses.
func (r *Runner) LicenseeLicenses(ctx context.Context, cmd *cli.Command) error {
	licenses, err := r.api.Licenses(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "My licenses", "licenses", ui.LicenseColumns(), licenses)
}

// LicenseeRequest asks for a license on a track.
func (r *Runner) LicenseeRequest(ctx context.Context, cmd *cli.Command) error {
	license, err := r.api.RequestLicense(ctx, services.LicenseRequest{
		TrackID: cmd.String("track"),
		Usage:   cmd.String("usage"),
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ License %s requested, status %s\n", license.ID, license.Status)
}

// LicenseeInvoices lists the signed-in licensee's invoices.
func (r *Runner) LicenseeInvoices(ctx context.Context, cmd *cli.Command) error {
	invoices, err := r.api.Invoices(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "My invoices", "invoices", ui.InvoiceColumns(), invoices)
}

// LicenseePayments lists the signed-in licensee's payments.
func (r *Runner) LicenseePayments(ctx context.Context, cmd *cli.Command) error {
	payments, err := r.api.Payments(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "My payments", "payments", ui.PaymentColumns(), payments)
}
