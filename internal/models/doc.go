// Package models defines the portal's data transfer objects as returned by the backend.
//
// The client owns none of these records; their JSON shapes are dictated by the backend contract.
//
//   - [Identity] and [Role] : who is signed in
//   - [Member], [Licensee] : accounts managed by administrators
//   - [Track] : a member's uploaded recording with its ISRC once assigned
//   - [License], [Invoice], [Payment] : the licensing and billing records
//   - [Lookup] : reference data used by forms (genres, languages, countries)
//
// Records that go through an approval workflow carry a [Status].
package models
