package services

import (
	"context"

	"github.com/desertthunder/mrx/internal/models"
)

// Credentials is the body of the login and registration endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login calls POST /auth/login.
func (a *APIService) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	var out models.LoginResult
	if err := a.Post(ctx, "/auth/login", Credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterMember calls POST /auth/register/member.
func (a *APIService) RegisterMember(ctx context.Context, email, password string) error {
	return a.Post(ctx, "/auth/register/member", Credentials{Email: email, Password: password}, nil)
}

// RegisterLicensee calls POST /auth/register/licensee.
func (a *APIService) RegisterLicensee(ctx context.Context, email, password string) error {
	return a.Post(ctx, "/auth/register/licensee", Credentials{Email: email, Password: password}, nil)
}
