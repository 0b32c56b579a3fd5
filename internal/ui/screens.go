package ui

import (
	"context"
	"fmt"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/table"
	"github.com/desertthunder/mrx/internal/tasks"
)

// PortalAPI is the backend surface the TUI drives.
type PortalAPI interface {
	tasks.PortalAPI
	URL(path string) string
	DeleteTrack(ctx context.Context, id string) error
	SetStatus(ctx context.Context, resource services.Resource, id string, status models.Status) error
}

var (
	memberOnly   = []models.Role{models.RoleMember}
	licenseeOnly = []models.Role{models.RoleLicensee}
	adminOnly    = []models.Role{models.RoleAdmin}
	anyRole      = []models.Role{models.RoleMember, models.RoleLicensee, models.RoleAdmin}
)

// actions builds the row actions bound to a backend and context.
type actions struct {
	ctx  context.Context
	api  PortalAPI
	open func(string) error
}

func (a actions) play(url func(models.Track) string) table.Action[models.Track] {
	return table.Action[models.Track]{
		Label:   "Play",
		Icon:    "▶",
		Visible: func(t models.Track) bool { return url(t) != "" },
		Handler: func(t models.Track) error { return a.open(a.api.URL(url(t))) },
	}
}

func (a actions) deleteTrack() table.Action[models.Track] {
	return table.Action[models.Track]{
		Label:    "Delete",
		Icon:     "✗",
		Variant:  table.VariantDanger,
		Disabled: func(t models.Track) bool { return t.Status == models.StatusApproved },
		Handler:  func(t models.Track) error { return a.api.DeleteTrack(a.ctx, t.ID) },
	}
}

// review returns the approve / reject pair for a status-bearing resource.
func review[T any](a actions, resource services.Resource, id func(T) string, status func(T) models.Status) []table.Action[T] {
	set := func(s models.Status) func(T) error {
		return func(row T) error { return a.api.SetStatus(a.ctx, resource, id(row), s) }
	}
	return []table.Action[T]{
		{
			Label:    "Approve",
			Icon:     "✓",
			Variant:  table.VariantPrimary,
			Disabled: func(row T) bool { return status(row) == models.StatusApproved },
			Handler:  set(models.StatusApproved),
		},
		{
			Label:    "Reject",
			Icon:     "✗",
			Variant:  table.VariantDanger,
			Disabled: func(row T) bool { return status(row) == models.StatusRejected },
			Handler:  set(models.StatusRejected),
		},
	}
}

func (a actions) openDocument() table.Action[models.Invoice] {
	return table.Action[models.Invoice]{
		Label:   "Open document",
		Icon:    "⬇",
		Visible: func(i models.Invoice) bool { return i.DocumentURL != "" },
		Handler: func(i models.Invoice) error { return a.open(a.api.URL(i.DocumentURL)) },
	}
}

// buildScreens returns the screens offered to role in menu order. Dashboard-backed screens share their name with
// the [tasks.Section] they are seeded from.
func buildScreens(ctx context.Context, role models.Role, api PortalAPI, open func(string) error, pageSize int) []screen {
	a := actions{ctx: ctx, api: api, open: open}
	trackURL := func(t models.Track) string { return t.FileURL }
	opts := func(title, noun string) table.Options {
		return ViewOptions(title, fmt.Sprintf("No %s yet", noun), pageSize)
	}
	var (
		tracks    = func(d *tasks.Dashboard) []models.Track { return d.Tracks }
		licenses  = func(d *tasks.Dashboard) []models.License { return d.Licenses }
		invoices  = func(d *tasks.Dashboard) []models.Invoice { return d.Invoices }
		payments  = func(d *tasks.Dashboard) []models.Payment { return d.Payments }
		members   = func(d *tasks.Dashboard) []models.Member { return d.Members }
		licensees = func(d *tasks.Dashboard) []models.Licensee { return d.Licensees }
	)

	var out []screen
	switch role {
	case models.RoleMember:
		out = append(out,
			newTableScreen(tasks.SectionTracks, memberOnly, TrackColumns(),
				[]table.Action[models.Track]{a.play(trackURL), a.deleteTrack()},
				opts("My tracks", "tracks"), api.MemberTracks, tracks),
		)
	case models.RoleLicensee:
		out = append(out,
			newTableScreen(tasks.SectionLicenses, licenseeOnly, LicenseColumns(), nil,
				opts("My licenses", "licenses"), api.Licenses, licenses),
			newTableScreen(tasks.SectionInvoices, licenseeOnly, InvoiceColumns(),
				[]table.Action[models.Invoice]{a.openDocument()},
				opts("My invoices", "invoices"), api.Invoices, invoices),
			newTableScreen(tasks.SectionPayments, licenseeOnly, PaymentColumns(), nil,
				opts("My payments", "payments"), api.Payments, payments),
		)
	case models.RoleAdmin:
		out = append(out,
			newTableScreen(tasks.SectionMembers, adminOnly, MemberColumns(),
				review(a, services.ResourceMember,
					func(m models.Member) string { return m.ID },
					func(m models.Member) models.Status { return m.Status }),
				opts("Members", "members"), api.Members, members),
			newTableScreen(tasks.SectionLicensees, adminOnly, LicenseeColumns(),
				review(a, services.ResourceLicensee,
					func(l models.Licensee) string { return l.ID },
					func(l models.Licensee) models.Status { return l.Status }),
				opts("Licensees", "licensees"), api.Licensees, licensees),
			newTableScreen(tasks.SectionTracks, adminOnly, TrackColumns(),
				append([]table.Action[models.Track]{a.play(trackURL)}, review(a, services.ResourceTrack,
					func(t models.Track) string { return t.ID },
					func(t models.Track) models.Status { return t.Status })...),
				opts("Tracks", "tracks"), api.Tracks, tracks),
			newTableScreen(tasks.SectionLicenses, adminOnly, LicenseColumns(),
				review(a, services.ResourceLicense,
					func(l models.License) string { return l.ID },
					func(l models.License) models.Status { return l.Status }),
				opts("Licenses", "licenses"), api.AdminLicenses, licenses),
			newTableScreen(tasks.SectionInvoices, adminOnly, InvoiceColumns(),
				[]table.Action[models.Invoice]{a.openDocument()},
				opts("Invoices", "invoices"), api.AdminInvoices, invoices),
			newTableScreen(tasks.SectionPayments, adminOnly, PaymentColumns(), nil,
				opts("Payments", "payments"), api.AdminPayments, payments),
		)
	}

	return append(out,
		newTableScreen(tasks.SectionGenres, anyRole, LookupColumns(), nil, opts("Genres", "genres"), api.Genres, nil),
		newTableScreen(tasks.SectionLanguages, anyRole, LookupColumns(), nil, opts("Languages", "languages"), api.Languages, nil),
		newTableScreen(tasks.SectionCountries, anyRole, LookupColumns(), nil, opts("Countries", "countries"), api.Countries, nil),
	)
}
