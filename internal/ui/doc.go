// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a session-gated workflow over the shared tab repository:
//  1. [AuthView] : Log in or sign up against the identity provider
//  2. [ListView] : Browse the collection with a live search filter
//  3. [DetailView] : Expanded entry showing the full tab content
//  4. [AddView] : Submit a new tab (admins only)
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Session transitions flow from the tracker through a channel into typed
// messages, so externally observed changes (token refresh, remote logout)
// re-render the same way explicit actions do. Views are pure projections of
// model state; every frame is a full re-render.
//
// All user-supplied text passes through formatter.Escape before display so
// tab content cannot inject terminal control sequences.
package ui
