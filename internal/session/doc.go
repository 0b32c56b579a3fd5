// Package session holds the signed-in identity and gates access to role-specific views.
//
// A [Store] is the single source of truth for "who is logged in, with what role". It is created once per process
// with [NewStore], restored from durable [Storage] by [Store.Init] and passed to every consumer that needs it.
//
// The store has two states. ANONYMOUS becomes AUTHENTICATED on a successful [Store.Login]. AUTHENTICATED returns to
// ANONYMOUS on [Store.Logout] or when the transport layer reports that the backend rejected the credential
// ([Store.Invalidate]). The token and the serialized identity are always written and cleared together.
//
// [Allow] and [Require] are the route guard: a synchronous check of the in-memory state with no server round trip.
package session
