package transport

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/shared"
	"golang.org/x/oauth2"
)

// Middleware wraps an [http.RoundTripper] and returns a new one with additional behavior.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to [http.RoundTripper].
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain wraps base with all middleware.
//
// Middleware is applied in reverse order (last given wraps first).
func Chain(base http.RoundTripper, middleware ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	wrapped := base
	for i := len(middleware) - 1; i >= 0; i-- {
		wrapped = middleware[i](wrapped)
	}
	return wrapped
}

// RequestIDHeader carries a per-request identifier.
const RequestIDHeader = "X-Request-ID"

// AuthPathPrefix marks endpoints that never carry a bearer token.
const AuthPathPrefix = "/auth/"

// IsAuthEndpoint reports whether req targets a login or registration endpoint.
func IsAuthEndpoint(req *http.Request) bool {
	return strings.Contains(req.URL.Path, AuthPathPrefix)
}

// Bearer injects Authorization: Bearer <token> from source. Auth endpoints are sent untouched, as is every
// request while source has no token.
func Bearer(source oauth2.TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		authed := &oauth2.Transport{Source: source, Base: next}

		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if source == nil || IsAuthEndpoint(req) || req.Header.Get("Authorization") != "" {
				return next.RoundTrip(req)
			}

			tok, err := source.Token()
			if err != nil || tok == nil || tok.AccessToken == "" {
				return next.RoundTrip(req)
			}
			return authed.RoundTrip(req)
		})
	}
}

// RequestID stamps each outbound request with a fresh X-Request-ID unless one is set.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set(RequestIDHeader, shared.GenerateID())
			return next.RoundTrip(r)
		})
	}
}

// Logging writes a debug line per request with method, path, status and elapsed time.
func Logging(logger *log.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start).Round(time.Millisecond)

			if logger == nil {
				return resp, err
			}
			if err != nil {
				logger.Debug("request failed", "method", req.Method, "path", req.URL.Path, "elapsed", elapsed, "err", err)
				return resp, err
			}
			logger.Debug("request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "elapsed", elapsed)
			return resp, err
		})
	}
}

// Unauthorized calls onReject for every 401 response, whichever endpoint produced it. The response is returned
// unchanged.
func Unauthorized(onReject func(*http.Request)) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err == nil && resp != nil && resp.StatusCode == http.StatusUnauthorized && onReject != nil {
				onReject(req)
			}
			return resp, err
		})
	}
}

// ClientOpts configures [NewClient].
type ClientOpts struct {
	Base     http.RoundTripper
	Source   oauth2.TokenSource
	OnReject func(*http.Request)
	Logger   *log.Logger
	Timeout  time.Duration
	// Extra middleware wraps the base transport, inside the default stack.
	Extra []Middleware
}

// ErrNoSource is returned by [StaticSource] when it holds no token.
var ErrNoSource = errors.New("no token")

// StaticSource is a fixed [oauth2.TokenSource], for raw passthrough requests.
type StaticSource string

func (s StaticSource) Token() (*oauth2.Token, error) {
	if s == "" {
		return nil, ErrNoSource
	}
	return &oauth2.Token{AccessToken: string(s), TokenType: "Bearer"}, nil
}

// NewClient builds the backend HTTP client with the default middleware stack.
func NewClient(opts ClientOpts) *http.Client {
	mw := []Middleware{
		Unauthorized(opts.OnReject),
		Logging(opts.Logger),
		RequestID(),
		Bearer(opts.Source),
	}
	mw = append(mw, opts.Extra...)

	return &http.Client{
		Transport: Chain(opts.Base, mw...),
		Timeout:   opts.Timeout,
	}
}
