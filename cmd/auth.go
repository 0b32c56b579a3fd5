package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with email and password and persists the session.
//
// The store reports success and failure itself, so only the identity is printed here.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	identity, err := r.store.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}
	return r.writePlain("Signed in as %s (%s)\n", identity.Email, identity.Role)
}

// AuthLogout clears the session. Signing out while anonymous is not an error.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.store.IsAuthenticated() {
		r.logger.Info("no session to clear")
	}
	r.store.Logout()
	return nil
}

type authStatus struct {
	Authenticated bool       `json:"authenticated"`
	ID            string     `json:"id,omitempty"`
	Email         string     `json:"email,omitempty"`
	Role          string     `json:"role,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Expired       bool       `json:"expired,omitempty"`
}

// AuthStatus reports the persisted identity. The token is decoded locally; no request is made.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := authStatus{}
	if identity, ok := r.store.Identity(); ok {
		status = authStatus{
			Authenticated: true,
			ID:            identity.ID,
			Email:         identity.Email,
			Role:          string(identity.Role),
		}
		if exp, ok := r.store.Expiry(); ok {
			status.ExpiresAt = &exp
			status.Expired = time.Now().After(exp)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !status.Authenticated {
		return r.writePlain("✗ Not signed in\nRun 'mrx auth login --email you@example.com' to sign in\n")
	}

	r.writePlainHeader("Session")
	r.writePlain("Email: %s\n", status.Email)
	r.writePlain("Role:  %s\n", status.Role)
	switch {
	case status.ExpiresAt == nil:
		r.writePlain("Token: no expiry claim\n")
	case status.Expired:
		r.writePlain("Token: expired at %s\n", status.ExpiresAt.Local().Format(time.RFC1123))
	default:
		r.writePlain("Token: valid until %s\n", status.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// confirmPassword checks --confirm before any request is made. An omitted --confirm skips the check.
func confirmPassword(cmd *cli.Command) error {
	if cmd.IsSet("confirm") && cmd.String("confirm") != cmd.String("password") {
		return shared.ErrPasswordMismatch
	}
	return nil
}

// AuthRegisterMember registers an artist account.
func (r *Runner) AuthRegisterMember(ctx context.Context, cmd *cli.Command) error {
	if err := confirmPassword(cmd); err != nil {
		return err
	}
	if err := r.store.RegisterMember(ctx, cmd.String("email"), cmd.String("password")); err != nil {
		return fmt.Errorf("member registration: %w", err)
	}
	return nil
}

// AuthRegisterLicensee registers a licensing-company account.
func (r *Runner) AuthRegisterLicensee(ctx context.Context, cmd *cli.Command) error {
	if err := confirmPassword(cmd); err != nil {
		return err
	}
	if err := r.store.RegisterLicensee(ctx, cmd.String("email"), cmd.String("password")); err != nil {
		return fmt.Errorf("licensee registration: %w", err)
	}
	return nil
}
