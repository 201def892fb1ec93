// Package build runs the incremental blog build: load posts, resolve them
// against the build cache, reconcile the output tree and persist the cache.
//
// Service is the single entry point used by the CLI and by watch mode.
// Reconciler owns every filesystem mutation of the output tree; the cache
// state it receives is updated only for outputs it has confirmed.
package build
