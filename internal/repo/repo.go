// Package repo models the hierarchical content repository backing the
// administration console. Nodes are addressed by absolute slash-separated
// paths; resolution always yields a Resource handle, never a nil value.
package repo

import (
	"context"
	"encoding/json"
	"strings"
)

// Node is a single addressable entry in the repository.
// Properties holds a JSON object as stored; timestamps are RFC3339 strings
// so the same column type (TEXT) works for SQLite and PostgreSQL.
type Node struct {
	ID         string `db:"id"`
	Path       string `db:"path"`
	ParentPath string `db:"parent_path"`
	Name       string `db:"name"`
	Type       string `db:"node_type"`
	Properties string `db:"properties"`
	CreatedAt  string `db:"created_at"`
}

// Resource is a handle to a possibly-unresolvable repository node.
//
// A Resource is always usable: resolution of a missing or malformed path
// yields a handle whose Valid method reports false. Callers test validity
// explicitly instead of nil-checking.
type Resource struct {
	path string
	node *Node
}

// Use wraps a resolved node in a handle.
func Use(node *Node) Resource {
	if node == nil {
		return Resource{}
	}
	return Resource{path: node.Path, node: node}
}

// NonExisting returns an invalid handle that still remembers the requested path.
func NonExisting(path string) Resource {
	return Resource{path: path}
}

// Valid reports whether the handle refers to an existing node.
func (r Resource) Valid() bool {
	return r.node != nil
}

// Path returns the repository path the handle was resolved for.
func (r Resource) Path() string {
	return r.path
}

// Name returns the node name, derived from the path for invalid handles.
func (r Resource) Name() string {
	if r.node != nil {
		return r.node.Name
	}
	if i := strings.LastIndex(r.path, "/"); i >= 0 {
		return r.path[i+1:]
	}
	return r.path
}

// Type returns the node type, empty for invalid handles.
func (r Resource) Type() string {
	if r.node == nil {
		return ""
	}
	return r.node.Type
}

// ID returns the node identifier, empty for invalid handles.
func (r Resource) ID() string {
	if r.node == nil {
		return ""
	}
	return r.node.ID
}

// PropertyMap decodes the node's stored properties.
// Invalid handles and malformed property documents yield an empty map.
func (r Resource) PropertyMap() map[string]any {
	if r.node == nil || r.node.Properties == "" {
		return map[string]any{}
	}
	props := map[string]any{}
	if err := json.Unmarshal([]byte(r.node.Properties), &props); err != nil {
		return map[string]any{}
	}
	return props
}

// Resolver resolves repository paths to Resource handles.
//
// Resolve never returns an absent value: unresolvable paths (including blank
// or relative ones) come back as invalid handles. Implementations must be
// safe for concurrent use by many request-handling goroutines.
type Resolver interface {
	Resolve(ctx context.Context, path string) Resource
}

// NormalizePath trims a candidate path and strips a trailing slash.
// Returns "" for paths that cannot address a node (blank or relative).
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "/") {
		return ""
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// ParentOf returns the parent path of an absolute node path ("/" for
// top-level nodes, "" for the root itself).
func ParentOf(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return "/"
	}
	return path[:i]
}
