// Package session implements the authentication state machine at the root of
// the client's data flow.
//
// [Tracker] owns the nullable current session and reacts to four event
// sources: explicit login, explicit signup, explicit logout, and the
// provider's asynchronous session-change notifications (login elsewhere,
// token refresh, expiry). Every observed transition cascades downstream: the
// admin role is re-checked, the visibility flags are re-derived, and the tab
// collection is refreshed or cleared.
//
// [Authorizer] performs the role lookup and fails open to non-admin on any
// error; a lookup failure is never treated as admin.
//
// [DeriveVisibility] is a pure projection from (session, admin) to the UI
// visibility flags, so the UI can never disagree with the underlying state.
package session
