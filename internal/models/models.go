// package models defines the data model for the music-rights portal client
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is the portal role carried by a signed-in identity.
type Role string

const (
	RoleMember   Role = "MEMBER"
	RoleLicensee Role = "LICENSEE"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleLicensee, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Identity is the signed-in user as returned by the login endpoint.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UnmarshalJSON accepts a numeric or string id and a role name in any case. An unknown role is kept as sent so
// [Identity.Validate] can reject it.
func (i *Identity) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Email string          `json:"email"`
		Role  string          `json:"role"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}

	role, err := ParseRole(raw.Role)
	if err != nil {
		role = Role(raw.Role)
	}

	*i = Identity{ID: id, Email: raw.Email, Role: role}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("identity id: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("identity id must be a string or number: %w", err)
	}
	return n.String(), nil
}

// Validate checks that the identity is complete enough to restore a session from.
func (i Identity) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("identity id is empty")
	}
	if i.Email == "" {
		return fmt.Errorf("identity email is empty")
	}
	if !i.Role.Valid() {
		return fmt.Errorf("identity role %q is invalid", i.Role)
	}
	return nil
}

// Status is the approval state of a workflow record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Member is an artist account.
type Member struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Country   string    `json:"country"`
	IPI       string    `json:"ipi"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Licensee is a music-licensing company account.
type Licensee struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	CompanyName string    `json:"companyName"`
	Country     string    `json:"country"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Track is a recording uploaded by a member.
type Track struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Genre      string    `json:"genre"`
	Language   string    `json:"language"`
	ISRC       string    `json:"isrc"`
	FileURL    string    `json:"fileUrl"`
	Status     Status    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// License grants a licensee the use of a track.
type License struct {
	ID           string    `json:"id"`
	TrackID      string    `json:"trackId"`
	TrackTitle   string    `json:"trackTitle"`
	LicenseeName string    `json:"licenseeName"`
	Usage        string    `json:"usage"`
	Status       Status    `json:"status"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// Invoice bills a licensee for a license.
type Invoice struct {
	ID           string    `json:"id"`
	Number       string    `json:"number"`
	LicenseID    string    `json:"licenseId"`
	LicenseeName string    `json:"licenseeName"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Status       Status    `json:"status"`
	DueDate      time.Time `json:"dueDate"`
	DocumentURL  string    `json:"documentUrl"`
}

// Payment records money received against an invoice.
type Payment struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoiceId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Method    string    `json:"method"`
	Status    Status    `json:"status"`
	PaidAt    time.Time `json:"paidAt"`
}

// Lookup is a reference-data entry used by forms.
type Lookup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Profile is the signed-in member's own account view.
type Profile struct {
	Member
	Documents []Document `json:"documents"`
}

// Document is an identity or bank document uploaded by a member.
type Document struct {
	Kind       string    `json:"kind"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// LoginResult is the body returned by a successful login.
type LoginResult struct {
	Token     string   `json:"token"`
	User      Identity `json:"user"`
	ExpiresIn int      `json:"expiresIn"`
}
