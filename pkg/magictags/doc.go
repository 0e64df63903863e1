// Package magictags replaces {token} placeholders in layout bodies with
// values from the request context.
//
// Which tokens are available depends on the categories of the first
// matching rule group of the layout: each (root, end) pair exposes the tags
// registered for it in the vocabulary registry plus the root's general tags.
// Tokens that are unknown or have no value for the request are left as
// literal text. Replacement is a single pass over the original body, so a
// substituted value is never substituted again.
package magictags
