// Package services defines the narrow contracts to the two external
// collaborators of the client and their HTTP implementations.
//
//   - [AuthProvider] : the identity provider. Issues, refreshes and revokes
//     sessions; credential verification and password rules live server-side.
//   - [TabStore] : the remote data store. Owns persistence, sort order and
//     row-level authorization of the tabs and profiles records.
//
// [AuthAPI] and [StoreAPI] implement the contracts against a
// Supabase-compatible backend: a GoTrue-style auth REST surface under
// /auth/v1 and a PostgREST-style data surface under /rest/v1. Both are pure
// consumers; no server-side logic lives in this module.
package services
