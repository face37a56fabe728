// Package sanitize rewrites an untrusted document tree against a tier
// policy.
//
// The engine is a single generic walk driven entirely by policy data:
// rejected elements are either dropped with their subtree or unwrapped,
// attributes are filtered by name and URL-bearing values are vetted by
// parsed scheme, never by string prefix. Form controls and nested frames
// are locked down in the same pass. Nothing here returns an error; unsafe
// content is a policy decision, not a failure.
package sanitize
