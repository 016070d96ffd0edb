package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/solatis/cratekeeper/internal/core/db"
	"github.com/solatis/cratekeeper/internal/types"
)

// Store is the sqlx-backed repository. It implements Resolver for the
// console's read path and exposes the mutation API console operations use.
//
// Store is safe for concurrent use; all state lives in the database.
type Store struct {
	db      *sqlx.DB
	queries *db.Queries
	log     *slog.Logger
}

// NewStore creates a store over an open database handle.
func NewStore(database *sqlx.DB, logger *slog.Logger) (*Store, error) {
	if database == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}

	return &Store{db: database, queries: queries, log: logger}, nil
}

// Resolve looks up a node by path and wraps it in a Resource handle.
//
// Resolve never fails: blank paths, missing nodes, and query errors all come
// back as invalid handles. Query errors are logged so operators can tell a
// broken database from a missing node.
func (s *Store) Resolve(ctx context.Context, path string) Resource {
	normalized := NormalizePath(path)
	if normalized == "" {
		return NonExisting(path)
	}

	var node Node
	err := s.queries.Get(ctx, "get-node-by-path", &node, normalized)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Error("node lookup failed", "path", normalized, "error", err)
		}
		return NonExisting(normalized)
	}

	return Use(&node)
}

// Create inserts a new node under parentPath.
// Returns types.ErrNodeExists when the target path is already taken and
// types.ErrNoParent when the parent does not resolve (the root "/" is
// created implicitly).
func (s *Store) Create(ctx context.Context, parentPath, name, nodeType string, props map[string]any) (Resource, error) {
	parentPath = NormalizePath(parentPath)
	if parentPath == "" || name == "" {
		return Resource{}, types.ErrInvalidPath
	}
	if nodeType == "" {
		nodeType = "crate:unstructured"
	}

	nodePath := parentPath + "/" + name
	if parentPath == "/" {
		nodePath = "/" + name
	}

	if existing := s.Resolve(ctx, nodePath); existing.Valid() {
		return existing, types.ErrNodeExists
	}
	if parentPath != "/" {
		if parent := s.Resolve(ctx, parentPath); !parent.Valid() {
			return NonExisting(nodePath), types.ErrNoParent
		}
	}

	propsJSON := "{}"
	if len(props) > 0 {
		raw, err := json.Marshal(props)
		if err != nil {
			return NonExisting(nodePath), fmt.Errorf("failed to encode properties: %w", err)
		}
		propsJSON = string(raw)
	}

	node := Node{
		ID:         string(types.NewNodeID()),
		Path:       nodePath,
		ParentPath: parentPath,
		Name:       name,
		Type:       nodeType,
		Properties: propsJSON,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	_, err := s.queries.Exec(ctx, "insert-node",
		node.ID, node.Path, node.ParentPath, node.Name, node.Type, node.Properties, node.CreatedAt)
	if err != nil {
		// The existence check above races with concurrent creates; the loser
		// hits the UNIQUE constraint on path and reports the same conflict.
		if isUniqueViolation(err) {
			return s.Resolve(ctx, nodePath), types.ErrNodeExists
		}
		return NonExisting(nodePath), fmt.Errorf("failed to insert node %s: %w", nodePath, err)
	}

	return Use(&node), nil
}

// Delete removes the node at path.
// Returns types.ErrNodeNotFound when nothing was deleted and
// types.ErrNodeNotEmpty when children would be orphaned.
func (s *Store) Delete(ctx context.Context, path string) error {
	normalized := NormalizePath(path)
	if normalized == "" {
		return types.ErrInvalidPath
	}

	var childCount int
	if err := s.queries.Get(ctx, "count-children", &childCount, normalized); err != nil {
		return fmt.Errorf("failed to count children of %s: %w", normalized, err)
	}
	if childCount > 0 {
		return types.ErrNodeNotEmpty
	}

	res, err := s.queries.Exec(ctx, "delete-node-by-path", normalized)
	if err != nil {
		return fmt.Errorf("failed to delete node %s: %w", normalized, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return types.ErrNodeNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	return false
}

// Children lists the direct children of the node at path, ordered by path.
func (s *Store) Children(ctx context.Context, path string) ([]Node, error) {
	normalized := NormalizePath(path)
	if normalized == "" {
		return nil, types.ErrInvalidPath
	}

	var children []Node
	if err := s.queries.Select(ctx, "list-children", &children, normalized); err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", normalized, err)
	}
	return children, nil
}
