package console

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/solatis/cratekeeper/internal/repo"
)

// PathOf derives the target repository path from the request.
//
// The route suffix (the mux "suffix" variable of a /bin/{service}/{suffix}
// route) takes priority; when it is blank, the "path" request parameter is
// the only fallback. The returned path may still be unresolvable; that is
// GetResource's concern.
func PathOf(r *http.Request) string {
	path := mux.Vars(r)["suffix"]
	if strings.TrimSpace(path) == "" {
		path = r.FormValue(ParamPath)
	} else if !strings.HasPrefix(path, "/") {
		// mux captures the suffix without the separating slash.
		path = "/" + path
	}
	return path
}

// GetResource resolves the request's target path against resolver.
//
// The returned handle is never absent; an unresolvable path yields an invalid
// handle that callers test with Valid. The core never turns an invalid handle
// into a 404 by itself; that is the operation's decision.
func GetResource(r *http.Request, resolver repo.Resolver) repo.Resource {
	return resolver.Resolve(r.Context(), PathOf(r))
}
