package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
)

// LicenseRequest is the body of a licence request.
type LicenseRequest struct {
	TrackID string `json:"trackId"`
	Usage   string `json:"usage"`
}

// Licenses calls GET /licensee/licenses.
func (a *APIService) Licenses(ctx context.Context) ([]models.License, error) {
	return getList[models.License](ctx, a, "/licensee/licenses")
}

// RequestLicense calls POST /licensee/licenses.
func (a *APIService) RequestLicense(ctx context.Context, in LicenseRequest) (*models.License, error) {
	in.TrackID, in.Usage = strings.TrimSpace(in.TrackID), strings.TrimSpace(in.Usage)
	if in.TrackID == "" {
		return nil, fmt.Errorf("%w: track id is required", shared.ErrMissingArgument)
	}
	if in.Usage == "" {
		return nil, fmt.Errorf("%w: usage is required", shared.ErrMissingArgument)
	}

	var out models.License
	if err := a.Post(ctx, "/licensee/licenses", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invoices calls GET /licensee/invoices.
func (a *APIService) Invoices(ctx context.Context) ([]models.Invoice, error) {
	return getList[models.Invoice](ctx, a, "/licensee/invoices")
}

// Payments calls GET /licensee/payments.
func (a *APIService) Payments(ctx context.Context) ([]models.Payment, error) {
	return getList[models.Payment](ctx, a, "/licensee/payments")
}
