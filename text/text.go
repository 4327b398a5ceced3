// Package text cleans outgoing chat text and tags the script it is written in.
//
// Everything here is a pure function over strings. Sanitize is idempotent:
// Sanitize(Sanitize(s)) == Sanitize(s) for every s.
package text

// Ellipsis replaces the tail of a truncated reply.
const Ellipsis = "..."

// minVisible is the number of non-space characters a reply must keep after
// sanitization to be worth sending.
const minVisible = 2
