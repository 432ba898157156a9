// Package tabs implements the client-side cache of the shared tab
// repository and the operations over it.
//
//   - [Collection] : in-memory cache of the full tab list, kept in the
//     store's (artist, title) ascending order. Single-writer; every refresh
//     replaces the snapshot atomically, never merges.
//   - [Filter] : pure, order-preserving case-insensitive substring filter
//     over title and artist.
//   - [Submitter] : validates and sends a new tab, then triggers a refresh;
//     the new tab only appears once the round trip re-sorts it into place.
package tabs
