package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/ui"
	"github.com/urfave/cli/v3"
)

func trackInput(cmd *cli.Command) services.TrackInput {
	return services.TrackInput{
		Title:    cmd.String("title"),
		Genre:    cmd.String("genre"),
		Language: cmd.String("language"),
		File:     cmd.String("file"),
	}
}

// MemberTracks lists the signed-in member's tracks.
func (r *Runner) MemberTracks(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.api.MemberTracks(ctx)
	if err != nil {
		return err
	}
	return writeList(r, cmd, "My tracks", "tracks", ui.TrackColumns(), tracks)
}

// MemberUpload creates a track. The file is required.
func (r *Runner) MemberUpload(ctx context.Context, cmd *cli.Command) error {
	in := trackInput(cmd)
	r.logger.Info("uploading track", "title", in.Title, "file", in.File)
	track, err := r.api.UploadTrack(ctx, in)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Uploaded %q (id %s, status %s)\n", track.Title, track.ID, track.Status)
}

// MemberEdit updates a track's metadata. The file part is sent only when --file is given.
func (r *Runner) MemberEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	in := trackInput(cmd)
	track, err := r.api.UpdateTrack(ctx, id, in)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated %q\n", track.Title)
}

// MemberDelete removes a track.
func (r *Runner) MemberDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	if err := r.api.DeleteTrack(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted track %s\n", id)
}

// MemberDocuments uploads any of the identity and bank documents.
func (r *Runner) MemberDocuments(ctx context.Context, cmd *cli.Command) error {
	in := services.DocumentsInput{
		IDDocument:    cmd.String("id-document"),
		BankDocument:  cmd.String("bank-document"),
		PassportPhoto: cmd.String("passport-photo"),
	}
	if err := r.api.UploadDocuments(ctx, in); err != nil {
		return err
	}
	return r.writePlain("✓ Documents uploaded\n")
}

// MemberProfile prints the member's account and uploaded documents.
func (r *Runner) MemberProfile(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.api.MemberProfile(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}

	r.writePlainHeader(profile.FullName)
	r.writePlain("Email:   %s\n", profile.Email)
	r.writePlain("Country: %s\n", profile.Country)
	r.writePlain("IPI:     %s\n", valueOr(profile.IPI, "not assigned"))
	r.writePlain("Status:  %s\n", profile.Status)

	if len(profile.Documents) == 0 {
		return r.writePlainln("No documents uploaded")
	}
	r.writePlainln("Documents:")
	for _, d := range profile.Documents {
		r.writePlain("  • %-16s %s\n", d.Kind, d.UploadedAt.Format("2006-01-02"))
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
