// Package repositories provides the local persistence layer.
//
// The only locally persisted state is the current session, so login survives
// across CLI invocations; the tab collection itself is never persisted (the
// remote store is ground truth and every load is a fresh fetch).
package repositories
