package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/transport"
	"github.com/urfave/cli/v3"
)

// rawAPI returns the client for passthrough calls: the session's, or one pinned to --token. A pinned client never
// touches the session, not even on a 401.
func (r *Runner) rawAPI(cmd *cli.Command) *services.APIService {
	token := cmd.String("token")
	if token == "" {
		return r.api
	}

	client := transport.NewClient(transport.ClientOpts{
		Base:    r.base,
		Source:  transport.StaticSource(token),
		Logger:  r.logger,
		Timeout: r.config.API.Timeout(),
	})
	return services.NewAPIService(r.api.BaseURL(), client)
}

// APIGet makes a direct authenticated GET request
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.rawAPI(cmd).Raw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct authenticated POST request. --data accepts inline JSON or @path to read it from a file.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: request path", shared.ErrMissingArgument)
	}

	data := []byte(cmd.String("data"))
	if name, ok := strings.CutPrefix(string(data), "@"); ok {
		var err error
		if data, err = shared.VerifyAndReadFile(name); err != nil {
			return err
		}
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.rawAPI(cmd).Raw(ctx, http.MethodPost, path, data)
	if err != nil {
		return err
	}
	return r.writeResponse(resp, true)
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	if _, err := r.output.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return r.writePlain("\n")
}
