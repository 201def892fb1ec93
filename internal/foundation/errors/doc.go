// Package errors provides the classified error primitives used across blogbuild.
//
// A ClassifiedError carries a category (what part of the build failed), a
// severity (whether the run can continue) and free-form context. Errors are
// built through a fluent builder:
//
//	err := errors.WrapError(cause, errors.CategoryCache, "write build cache").
//		Fatal().
//		WithContext("path", cachePath).
//		Build()
//
// The CLI adapter turns any error into a user-facing message and an exit status.
package errors
