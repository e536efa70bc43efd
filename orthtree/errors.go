package orthtree

import "errors"

// Error kinds surfaced by the codec and the tree.
var (
	// ErrInvalidKey indicates an operation that requires a non-root,
	// in-range, or present key and received otherwise.
	ErrInvalidKey = errors.New("invalid key")

	// ErrLevelExceeded indicates a level argument above the codec's
	// maximum level.
	ErrLevelExceeded = errors.New("level exceeds maximum")

	// ErrNotInternal indicates a prune requested on a leaf, or a leaf
	// that owns children.
	ErrNotInternal = errors.New("node is not internal")

	// ErrNotLeaf indicates a refine requested on an internal node.
	ErrNotLeaf = errors.New("node is not a leaf")

	// ErrMissingChild indicates a structural invariant violation: an
	// internal node lacks one of its children.
	ErrMissingChild = errors.New("internal node is missing a child")
)
