// Package keyspec parses and resolves key specs, the path language used by
// recs operations to address fields of nested records.
//
// # Syntax
//
//	foo           top level field "foo"
//	foo/bar       field "bar" of the object at "foo"
//	list/#2       element 2 of the array at "list"
//	a\/b          a single field named "a/b"
//	@ho/@lat      fuzzy: each segment is resolved against the keys present
//
// A spec with none of '/', '\' or '#' and no leading '@' is a simple key and
// is looked up directly without being parsed.
//
// # Fuzzy resolution
//
// With a leading '@', every object segment is resolved to an actual key:
// an exact key wins, otherwise the last key (in sorted order) having the
// segment as a case-insensitive prefix, otherwise the last key matching the
// segment as a case-insensitive regular expression, otherwise the segment
// itself. Results are memoized per (resolved ancestors, segment) in a
// [Cache].
//
// # Policies
//
// Resolution takes a [Policy]. [Strict] reports absent paths as
// [ErrNoSuchKey], [Lenient] reports them as not found, and [Vivify] creates
// missing intermediate objects and arrays in the record. Structural misuse
// (descending into a scalar, a non-numeric segment against an array) always
// fails with [ErrBadPath].
//
// # Caches
//
// Parsed specs and fuzzy resolutions live in a [Cache]. [DefaultCache] is
// used by the package level functions; tests and embedders can create their
// own with [NewCache] or disable memoization with [NoCache]. Caches are not
// safe for concurrent use.
package keyspec
