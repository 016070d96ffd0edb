package types

import "errors"

// Sentinel errors for CrateKeeper operations.
var (
	// ErrNodeNotFound indicates a repository path does not resolve to a node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeExists indicates a node with the same path already exists.
	ErrNodeExists = errors.New("node already exists")

	// ErrNoParent indicates the parent path of a new node does not resolve.
	ErrNoParent = errors.New("parent node not found")

	// ErrInvalidPath indicates a repository path is empty or not absolute.
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrNodeNotEmpty indicates a node cannot be deleted while children remain.
	ErrNodeNotEmpty = errors.New("node still has children")

	// ErrValueTooDeep indicates a value graph exceeds the encoder's recursion
	// limit. Cyclic structures surface as this error instead of unbounded
	// recursion.
	ErrValueTooDeep = errors.New("value nesting exceeds maximum depth")
)
