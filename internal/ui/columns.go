package ui

import (
	"fmt"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/table"
)

// ViewOptions returns the shared display options for a resource table.
func ViewOptions(title, empty string, pageSize int) table.Options {
	if pageSize <= 0 {
		pageSize = table.DefaultPageSize
	}
	return table.Options{
		Title:        title,
		EmptyMessage: empty,
		Searchable:   true,
		Paginated:    true,
		PageSize:     pageSize,
	}
}

func money(amount float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}

// TrackColumns describes a track list.
func TrackColumns() []table.Column[models.Track] {
	return []table.Column[models.Track]{
		{Key: "title", Label: "Title", Sortable: true, Width: 28, Value: func(t models.Track) any { return t.Title }},
		{Key: "artist", Label: "Artist", Sortable: true, Width: 20, Value: func(t models.Track) any { return t.Artist }},
		{Key: "genre", Label: "Genre", Sortable: true, Value: func(t models.Track) any { return t.Genre }},
		{Key: "language", Label: "Language", Value: func(t models.Track) any { return t.Language }},
		{Key: "isrc", Label: "ISRC", Sortable: true, Value: func(t models.Track) any { return t.ISRC }},
		{Key: "status", Label: "Status", Sortable: true, Kind: table.KindStatus, Value: func(t models.Track) any { return string(t.Status) }},
		{Key: "uploadedAt", Label: "Uploaded", Sortable: true, Kind: table.KindDate, Value: func(t models.Track) any { return t.UploadedAt }},
		{Key: "file", Label: "File", Kind: table.KindFile, Value: func(t models.Track) any { return t.FileURL }},
	}
}

// MemberColumns describes the admin member list.
func MemberColumns() []table.Column[models.Member] {
	return []table.Column[models.Member]{
		{Key: "fullName", Label: "Name", Sortable: true, Width: 24, Value: func(m models.Member) any { return m.FullName }},
		{Key: "email", Label: "Email", Sortable: true, Width: 28, Value: func(m models.Member) any { return m.Email }},
		{Key: "country", Label: "Country", Sortable: true, Value: func(m models.Member) any { return m.Country }},
		{Key: "ipi", Label: "IPI", Value: func(m models.Member) any { return m.IPI }},
		{Key: "status", Label: "Status", Sortable: true, Kind: table.KindStatus, Value: func(m models.Member) any { return string(m.Status) }},
		{Key: "createdAt", Label: "Joined", Sortable: true, Kind: table.KindDate, Value: func(m models.Member) any { return m.CreatedAt }},
	}
}

// LicenseeColumns describes the admin licensee list.
func LicenseeColumns() []table.Column[models.Licensee] {
	return []table.Column[models.Licensee]{
		{Key: "companyName", Label: "Company", Sortable: true, Width: 24, Value: func(l models.Licensee) any { return l.CompanyName }},
		{Key: "email", Label: "Email", Sortable: true, Width: 28, Value: func(l models.Licensee) any { return l.Email }},
		{Key: "country", Label: "Country", Sortable: true, Value: func(l models.Licensee) any { return l.Country }},
		{Key: "status", Label: "Status", Sortable: true, Kind: table.KindStatus, Value: func(l models.Licensee) any { return string(l.Status) }},
		{Key: "createdAt", Label: "Joined", Sortable: true, Kind: table.KindDate, Value: func(l models.Licensee) any { return l.CreatedAt }},
	}
}

// LicenseColumns describes a license list.
func LicenseColumns() []table.Column[models.License] {
	return []table.Column[models.License]{
		{Key: "trackTitle", Label: "Track", Sortable: true, Width: 28, Value: func(l models.License) any { return l.TrackTitle }},
		{Key: "licenseeName", Label: "Licensee", Sortable: true, Width: 20, Value: func(l models.License) any { return l.LicenseeName }},
		{Key: "usage", Label: "Usage", Width: 24, Value: func(l models.License) any { return l.Usage }},
		{Key: "status", Label: "Status", Sortable: true, Kind: table.KindStatus, Value: func(l models.License) any { return string(l.Status) }},
		{Key: "requestedAt", Label: "Requested", Sortable: true, Kind: table.KindDate, Value: func(l models.License) any { return l.RequestedAt }},
	}
}

// InvoiceColumns describes an invoice list.
func InvoiceColumns() []table.Column[models.Invoice] {
	return []table.Column[models.Invoice]{
		{Key: "number", Label: "Number", Sortable: true, Value: func(i models.Invoice) any { return i.Number }},
		{Key: "licenseeName", Label: "Licensee", Sortable: true, Width: 20, Value: func(i models.Invoice) any { return i.LicenseeName }},
		{
			Key: "amount", Label: "Amount", Sortable: true,
			Value:  func(i models.Invoice) any { return i.Amount },
			Render: func(i models.Invoice) string { return money(i.Amount, i.Currency) },
		},
		{Key: "status", Label: "Status", Sortable: true, Kind: table.KindStatus, Value: func(i models.Invoice) any { return string(i.Status) }},
		{Key: "dueDate", Label: "Due", Sortable: true, Kind: table.KindDate, Value: func(i models.Invoice) any { return i.DueDate }},
		{Key: "document", Label: "Document", Kind: table.KindFile, Value: func(i models.Invoice) any { return i.DocumentURL }},
	}
}

// PaymentColumns describes a payment list.
func PaymentColumns() []table.Column[models.Payment] {
	return []table.Column[models.Payment]{
		{Key: "invoiceId", Label: "Invoice", Sortable: true, Value: func(p models.Payment) any { return p.InvoiceID }},
		{
			Key: "amount", Label: "Amount", Sortable: true,
			Value:  func(p models.Payment) any { return p.Amount },
			Render: func(p models.Payment) string { return money(p.Amount, p.Currency) },
		},
		{Key: "method", Label: "Method", Sortable: true, Value: func(p models.Payment) any { return p.Method }},
		{Key: "status", Label: "Status", Sortable: true, Kind: table.KindStatus, Value: func(p models.Payment) any { return string(p.Status) }},
		{Key: "paidAt", Label: "Paid", Sortable: true, Kind: table.KindDate, Value: func(p models.Payment) any { return p.PaidAt }},
	}
}

// LookupColumns describes a reference-data list.
func LookupColumns() []table.Column[models.Lookup] {
	return []table.Column[models.Lookup]{
		{Key: "id", Label: "ID", Sortable: true, Value: func(l models.Lookup) any { return l.ID }},
		{Key: "name", Label: "Name", Sortable: true, Width: 32, Value: func(l models.Lookup) any { return l.Name }},
	}
}
