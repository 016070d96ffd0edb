// Package usermgmt provides the user management console feature: operations
// on the nodes below /home/users, served at /bin/users.
package usermgmt

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/solatis/cratekeeper/internal/console"
	"github.com/solatis/cratekeeper/internal/repo"
	"github.com/solatis/cratekeeper/internal/types"
)

// ServiceName is the route segment the feature is mounted under (/bin/users).
const ServiceName = "users"

// UsersRoot is the repository subtree holding user nodes.
const UsersRoot = "/home/users"

// userNodeType marks nodes created by this feature.
const userNodeType = "crate:user"

// namePattern accepts the account names the repository tolerates as node names.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Service is the user management console hook. It registers its operations
// with a console dispatcher and serves them through a console endpoint.
type Service struct {
	store    *repo.Store
	endpoint *console.Endpoint
}

// New wires the feature's operations and returns the service.
// enabled gates every request; see console.WithEnabled.
func New(store *repo.Store, enabled func() bool, translate console.Translator, logger *slog.Logger) *Service {
	s := &Service{store: store}

	ops := console.NewOperations(store, console.WithLogger(logger))
	ops.Register(http.MethodGet, "", console.OperationFunc(s.getUser))
	ops.Register(http.MethodGet, "list", console.OperationFunc(s.listUsers))
	ops.Register(http.MethodPost, "", console.OperationFunc(s.createUser))
	ops.Register(http.MethodDelete, "", console.OperationFunc(s.deleteUser))

	s.endpoint = console.NewEndpoint(ops,
		console.WithEnabled(enabled),
		console.WithTranslator(translate))
	return s
}

// Endpoint returns the http.Handler to mount under /bin/users.
func (s *Service) Endpoint() *console.Endpoint {
	return s.endpoint
}

// getUser answers GET /bin/users/<path> with the resolved node.
// The locator never reports "absent", so missing users are answered here.
func (s *Service) getUser(w http.ResponseWriter, r *http.Request, resource repo.Resource) error {
	if !resource.Valid() {
		http.Error(w, "no such user: "+resource.Path(), http.StatusNotFound)
		return nil
	}

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	return console.EncodeValue(w, userView(resource))
}

// listUsers answers GET /bin/users/<path>?cmd=list with the node's children.
// A blank suffix and missing path parameter list the users root.
func (s *Service) listUsers(w http.ResponseWriter, r *http.Request, resource repo.Resource) error {
	path := resource.Path()
	if !resource.Valid() {
		if repo.NormalizePath(path) != "" {
			http.Error(w, "no such user folder: "+path, http.StatusNotFound)
			return nil
		}
		path = UsersRoot
	}

	children, err := s.store.Children(r.Context(), path)
	if err != nil {
		http.Error(w, "user listing failed", http.StatusInternalServerError)
		return err
	}

	views := make([]any, 0, len(children))
	for i := range children {
		views = append(views, userView(repo.Use(&children[i])))
	}

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	return console.EncodeValue(w, views)
}

// createUser answers POST /bin/users/<parent> by creating a user node named
// by the validated "name" parameter. An existing node answers the canned
// conflict envelope.
func (s *Service) createUser(w http.ResponseWriter, r *http.Request, resource repo.Resource) error {
	validation := s.endpoint.Validation()
	name, _ := validation.RequiredParameter(r, console.ParamName, namePattern,
		"Invalid or missing user name '{}'")
	title, _ := validation.RequiredParameter(r, console.ParamTitle, nil,
		"A display title is required ({})")
	if validation.SendError(w) {
		return nil
	}

	parent := resource.Path()
	if repo.NormalizePath(parent) == "" {
		parent = UsersRoot
	}

	created, err := s.store.Create(r.Context(), parent, name, userNodeType,
		map[string]any{"title": title})
	switch {
	case errors.Is(err, types.ErrNodeExists):
		return s.endpoint.AnswerItemExists(w, r)
	case errors.Is(err, types.ErrNoParent):
		http.Error(w, "no such user folder: "+parent, http.StatusNotFound)
		return nil
	case err != nil:
		http.Error(w, "user creation failed", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	return console.EncodeValue(w, userView(created))
}

// deleteUser answers DELETE /bin/users/<path>.
func (s *Service) deleteUser(w http.ResponseWriter, r *http.Request, resource repo.Resource) error {
	if !resource.Valid() {
		http.Error(w, "no such user: "+resource.Path(), http.StatusNotFound)
		return nil
	}

	if err := s.store.Delete(r.Context(), resource.Path()); err != nil {
		switch {
		case errors.Is(err, types.ErrNodeNotFound):
			http.Error(w, "no such user: "+resource.Path(), http.StatusNotFound)
			return nil
		case errors.Is(err, types.ErrNodeNotEmpty):
			http.Error(w, "user folder is not empty: "+resource.Path(), http.StatusConflict)
			return nil
		}
		http.Error(w, "user deletion failed", http.StatusInternalServerError)
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// userView renders a resource as the console's ordered user document.
func userView(resource repo.Resource) *console.Object {
	return console.NewObject().
		Put("path", resource.Path()).
		Put("name", resource.Name()).
		Put("type", resource.Type()).
		Put("properties", resource.PropertyMap())
}
