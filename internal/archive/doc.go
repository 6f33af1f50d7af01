// Package archive resolves request paths to members of an ordered set of zip
// archives. The Set carries an optional per-archive ordering key (the first
// member path packed into that archive) so most lookups open a single archive;
// the Reader falls back to scanning every archive in order when the index has
// no answer or points at the wrong archive. Archive handles are opened lazily
// and memoised in an explicit Registry owned by the caller.
package archive
