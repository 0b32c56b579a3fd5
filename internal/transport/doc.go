// Package transport builds the HTTP client used for every backend call.
//
// # Middleware
//
// A [Middleware] wraps an [http.RoundTripper]. [Chain] applies middleware in reverse order, so the first one
// given is the outermost and sees the request first and the response last.
//
// The default stack built by [NewClient] is:
//   - [Unauthorized] : the only place that forces a logout. Any 401 calls the reject hook and the response is
//     still returned so the caller's error path runs.
//   - [Logging] : one debug line per request.
//   - [RequestID] : stamps X-Request-ID.
//   - [Bearer] : injects the session token, except on /auth/ endpoints and when no session exists.
package transport
