package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
)

// InvoiceInput is the body of an invoice creation.
type InvoiceInput struct {
	LicenseID string    `json:"licenseId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	DueDate   time.Time `json:"dueDate"`
}

// Validate checks the invoice form.
func (in InvoiceInput) Validate() error {
	switch {
	case strings.TrimSpace(in.LicenseID) == "":
		return fmt.Errorf("%w: license id is required", shared.ErrMissingArgument)
	case in.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", shared.ErrInvalidInput)
	case len(strings.TrimSpace(in.Currency)) != 3:
		return fmt.Errorf("%w: currency must be a 3-letter code", shared.ErrInvalidInput)
	case in.DueDate.IsZero():
		return fmt.Errorf("%w: due date is required", shared.ErrMissingArgument)
	}
	return nil
}

// Members calls GET /admin/members.
func (a *APIService) Members(ctx context.Context) ([]models.Member, error) {
	return getList[models.Member](ctx, a, "/admin/members")
}

// Licensees calls GET /admin/licensees.
func (a *APIService) Licensees(ctx context.Context) ([]models.Licensee, error) {
	return getList[models.Licensee](ctx, a, "/admin/licensees")
}

// Tracks calls GET /admin/tracks.
func (a *APIService) Tracks(ctx context.Context) ([]models.Track, error) {
	return getList[models.Track](ctx, a, "/admin/tracks")
}

// AdminLicenses calls GET /admin/licenses.
func (a *APIService) AdminLicenses(ctx context.Context) ([]models.License, error) {
	return getList[models.License](ctx, a, "/admin/licenses")
}

// AdminInvoices calls GET /admin/invoices.
func (a *APIService) AdminInvoices(ctx context.Context) ([]models.Invoice, error) {
	return getList[models.Invoice](ctx, a, "/admin/invoices")
}

// AdminPayments calls GET /admin/payments.
func (a *APIService) AdminPayments(ctx context.Context) ([]models.Payment, error) {
	return getList[models.Payment](ctx, a, "/admin/payments")
}

// Resource names a record kind whose approval status an admin can change.
type Resource string

const (
	ResourceMember   Resource = "members"
	ResourceLicensee Resource = "licensees"
	ResourceTrack    Resource = "tracks"
	ResourceLicense  Resource = "licenses"
)

// ParseResource parses a resource name, accepting singular forms.
func ParseResource(s string) (Resource, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasSuffix(s, "s") {
		s += "s"
	}
	switch r := Resource(s); r {
	case ResourceMember, ResourceLicensee, ResourceTrack, ResourceLicense:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown resource %q", shared.ErrInvalidArgument, s)
	}
}

// SetStatus calls PATCH /admin/{resource}/{id}/status.
func (a *APIService) SetStatus(ctx context.Context, resource Resource, id string, status models.Status) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", shared.ErrMissingArgument)
	}
	if status != models.StatusApproved && status != models.StatusRejected && status != models.StatusPending {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}
	path := fmt.Sprintf("/admin/%s/%s/status", resource, url.PathEscape(id))
	return a.Patch(ctx, path, map[string]models.Status{"status": status}, nil)
}

// SetMemberStatus approves or rejects a member.
func (a *APIService) SetMemberStatus(ctx context.Context, id string, status models.Status) error {
	return a.SetStatus(ctx, ResourceMember, id, status)
}

// SetLicenseeStatus approves or rejects a licensee.
func (a *APIService) SetLicenseeStatus(ctx context.Context, id string, status models.Status) error {
	return a.SetStatus(ctx, ResourceLicensee, id, status)
}

// SetTrackStatus approves or rejects a track.
func (a *APIService) SetTrackStatus(ctx context.Context, id string, status models.Status) error {
	return a.SetStatus(ctx, ResourceTrack, id, status)
}

// SetLicenseStatus approves or rejects a licence request.
func (a *APIService) SetLicenseStatus(ctx context.Context, id string, status models.Status) error {
	return a.SetStatus(ctx, ResourceLicense, id, status)
}

// AssignISRC calls PATCH /admin/tracks/{id}/isrc.
func (a *APIService) AssignISRC(ctx context.Context, trackID, isrc string) error {
	isrc = strings.ToUpper(strings.TrimSpace(isrc))
	if trackID == "" || isrc == "" {
		return fmt.Errorf("%w: track id and ISRC are required", shared.ErrMissingArgument)
	}
	return a.Patch(ctx, "/admin/tracks/"+url.PathEscape(trackID)+"/isrc", map[string]string{"isrc": isrc}, nil)
}

// AssignIPI calls PATCH /admin/members/{id}/ipi.
func (a *APIService) AssignIPI(ctx context.Context, memberID, ipi string) error {
	ipi = strings.TrimSpace(ipi)
	if memberID == "" || ipi == "" {
		return fmt.Errorf("%w: member id and IPI are required", shared.ErrMissingArgument)
	}
	return a.Patch(ctx, "/admin/members/"+url.PathEscape(memberID)+"/ipi", map[string]string{"ipi": ipi}, nil)
}

// CreateInvoice calls POST /admin/invoices.
func (a *APIService) CreateInvoice(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var out models.Invoice
	if err := a.Post(ctx, "/admin/invoices", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
