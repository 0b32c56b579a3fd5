// Package services implements the REST/JSON client for the music-rights portal backend.
//
// # APIService
//
// [APIService] wraps an [http.Client] built by the transport package, so bearer injection, request ids and the
// global 401 policy are applied below this layer. Each typed endpoint issues exactly one request.
//
// Non-2xx responses become [*APIError] carrying the status and the message extracted from the body (a JSON
// "message" or "error" string). [MessageOf] turns any error into the text shown to the user, falling back to a
// per-operation message.
//
// # Uploads
//
// Track and document uploads are multipart form submissions with fixed part names, built with [Form].
//
// # Lists
//
// List endpoints accept either a bare JSON array or an envelope with a "data" or "items" array.
package services
