// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [SignInView] : Email and password form under a go-figure banner
//  2. [HomeView] : The role home, listing every screen with its record count from the dashboard load
//  3. [TableView] : One resource table with search (/), sort (s, S), paging (←/→), a row cursor (↑/↓) and a
//     row action menu (a)
//
// [App] is the root model. It owns a per-identity [Model] and replaces it with a fresh one at the sign-in view
// whenever the session store redirects, so nothing tied to the previous identity survives a logout or a rejected
// session. Every view switch goes through [session.Allow].
//
// Dashboard progress flows through a channel from [tasks.Loader], and the session store's notifications are
// shown as a status line under the active view.
package ui
