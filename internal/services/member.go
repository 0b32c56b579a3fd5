package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
)

// TrackInput is the form for creating or editing a track.
type TrackInput struct {
	Title    string
	Genre    string
	Language string
	// File is the local audio file. Required on create, optional on edit.
	File string
}

// Validate checks the form before any request is issued.
func (t TrackInput) Validate(requireFile bool) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", shared.ErrMissingArgument)
	}
	if strings.TrimSpace(t.Genre) == "" {
		return fmt.Errorf("%w: genre is required", shared.ErrMissingArgument)
	}
	if strings.TrimSpace(t.Language) == "" {
		return fmt.Errorf("%w: language is required", shared.ErrMissingArgument)
	}
	if requireFile && t.File == "" {
		return fmt.Errorf("%w: an audio file is required", shared.ErrFileNotSelected)
	}
	return nil
}

func (t TrackInput) form() *Form {
	f := &Form{}
	f.Field("title", strings.TrimSpace(t.Title)).
		Field("genre", strings.TrimSpace(t.Genre)).
		Field("language", strings.TrimSpace(t.Language)).
		File("file", t.File)
	return f
}

// DocumentsInput holds the member's identity and bank documents.
type DocumentsInput struct {
	IDDocument    string
	BankDocument  string
	PassportPhoto string
}

// Validate requires at least one document.
func (d DocumentsInput) Validate() error {
	if d.IDDocument == "" && d.BankDocument == "" && d.PassportPhoto == "" {
		return fmt.Errorf("%w: select at least one document", shared.ErrFileNotSelected)
	}
	return nil
}

// MemberTracks calls GET /member/tracks.
func (a *APIService) MemberTracks(ctx context.Context) ([]models.Track, error) {
	return getList[models.Track](ctx, a, "/member/tracks")
}

// UploadTrack calls POST /member/tracks with parts title, genre, language and file.
func (a *APIService) UploadTrack(ctx context.Context, in TrackInput) (*models.Track, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	var out models.Track
	if err := a.Upload(ctx, http.MethodPost, "/member/tracks", in.form(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTrack calls PUT /member/tracks/{id}. The file part is only sent when given.
func (a *APIService) UpdateTrack(ctx context.Context, id string, in TrackInput) (*models.Track, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: track id is required", shared.ErrMissingArgument)
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	var out models.Track
	if err := a.Upload(ctx, http.MethodPut, "/member/tracks/"+url.PathEscape(id), in.form(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTrack calls DELETE /member/tracks/{id}.
func (a *APIService) DeleteTrack(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: track id is required", shared.ErrMissingArgument)
	}
	return a.Delete(ctx, "/member/tracks/"+url.PathEscape(id))
}

// UploadDocuments calls POST /member/documents with parts idDocument, bankDocument and passportPhoto.
func (a *APIService) UploadDocuments(ctx context.Context, in DocumentsInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	f := &Form{}
	f.File("idDocument", in.IDDocument).
		File("bankDocument", in.BankDocument).
		File("passportPhoto", in.PassportPhoto)
	return a.Upload(ctx, http.MethodPost, "/member/documents", f, nil)
}

// MemberProfile calls GET /member/profile.
func (a *APIService) MemberProfile(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := a.Get(ctx, "/member/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
