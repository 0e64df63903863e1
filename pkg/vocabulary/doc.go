// Package vocabulary provides the Category Vocabulary Registry.
//
// The registry is the single source of truth for which rule categories
// exist, which end values each category offers to the admin surface, how the
// actual value of a category is read from a request context, and which magic
// tags a matched (root, end) pair exposes.
//
// Registries are constructed explicitly and passed to the targeting engine and
// the magic tag substitutor. Optional collaborators (commerce, course
// platforms, multilingual plugins) contribute categories and tags through the
// Contributor interface before the registry is frozen:
//
//	reg, err := vocabulary.NewDefaultRegistry(commerce.New(commerce.Options{}), lms.New())
//	if err != nil {
//	    return err
//	}
//	matcher := targeting.NewMatcher(reg, logger)
//
// Once frozen, a registry is read-only and safe for concurrent use.
package vocabulary
