// Package models defines domain entities for the tabstash client.
//
// The package contains three categories of types:
//
// 1. Remote records fetched from the tab store:
//   - [Tab] : A guitar tablature entry (title, artist, optional tuning, free-form content)
//   - [Profile] : A user's role record, consulted for the admin capability
//
// 2. Identity state issued by the auth provider:
//   - [Session] : Proof of an authenticated identity, wrapping an [oauth2.Token]
//
// 3. Submission input:
//   - [NewTab] : A tab record as submitted by an admin, validated locally before insert
//
// Tabs are owned by the remote store; the client never mutates them, only
// replaces its cached collection wholesale on refresh.
package models
