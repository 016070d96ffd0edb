package console

import (
	"log/slog"
	"net/http"

	"github.com/solatis/cratekeeper/internal/repo"
)

// Operation is a named handler bound to an HTTP verb. The dispatcher resolves
// the request's target resource before invocation; the handle may be invalid
// and the operation decides how to answer that (typically 404).
//
// A returned error is logged by the dispatcher; by that point the operation
// may already have written to the response, so no status mapping is applied.
type Operation interface {
	ServeOperation(w http.ResponseWriter, r *http.Request, resource repo.Resource) error
}

// OperationFunc adapts a function to the Operation interface.
type OperationFunc func(w http.ResponseWriter, r *http.Request, resource repo.Resource) error

// ServeOperation calls f.
func (f OperationFunc) ServeOperation(w http.ResponseWriter, r *http.Request, resource repo.Resource) error {
	return f(w, r, resource)
}

// OperationSet routes a request, keyed by HTTP verb plus an operation
// selector, to a registered handler. An Endpoint delegates every enabled
// request to exactly one of these four entry points.
type OperationSet interface {
	DoGet(w http.ResponseWriter, r *http.Request)
	DoPost(w http.ResponseWriter, r *http.Request)
	DoPut(w http.ResponseWriter, r *http.Request)
	DoDelete(w http.ResponseWriter, r *http.Request)
}

// operationKey identifies one registered handler. Immutable once registered.
type operationKey struct {
	method   string
	selector string
}

// Operations is the registry-backed OperationSet implementation.
//
// The selector defaults to the "cmd" query parameter; the empty selector
// addresses the default operation of a verb. Register all operations during
// startup; the table is read concurrently by request workers and must not
// change afterwards.
type Operations struct {
	resolver repo.Resolver
	selector func(r *http.Request) string
	handlers map[operationKey]Operation
	log      *slog.Logger
}

// OperationsOption configures an Operations registry.
type OperationsOption func(*Operations)

// WithSelector overrides how the operation selector is extracted from a request.
func WithSelector(fn func(r *http.Request) string) OperationsOption {
	return func(o *Operations) {
		if fn != nil {
			o.selector = fn
		}
	}
}

// WithLogger sets the logger used for operation errors.
func WithLogger(logger *slog.Logger) OperationsOption {
	return func(o *Operations) {
		if logger != nil {
			o.log = logger
		}
	}
}

// NewOperations creates an empty registry resolving resources via resolver.
func NewOperations(resolver repo.Resolver, opts ...OperationsOption) *Operations {
	o := &Operations{
		resolver: resolver,
		// FormValue covers both the query string and a form-encoded body, so
		// POSTed cmd parameters select an operation too.
		selector: func(r *http.Request) string { return r.FormValue(ParamCmd) },
		handlers: make(map[operationKey]Operation),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register binds an operation to method and selector.
// An empty selector registers the method's default operation.
// Duplicate registration is a startup error and panics.
func (o *Operations) Register(method, selector string, op Operation) {
	if op == nil {
		panic("console: nil operation for " + method + " '" + selector + "'")
	}
	key := operationKey{method: method, selector: selector}
	if _, exists := o.handlers[key]; exists {
		panic("console: duplicate operation for " + method + " '" + selector + "'")
	}
	o.handlers[key] = op
}

// DoGet dispatches a GET request.
func (o *Operations) DoGet(w http.ResponseWriter, r *http.Request) {
	o.dispatch(http.MethodGet, w, r)
}

// DoPost dispatches a POST request.
func (o *Operations) DoPost(w http.ResponseWriter, r *http.Request) {
	o.dispatch(http.MethodPost, w, r)
}

// DoPut dispatches a PUT request.
func (o *Operations) DoPut(w http.ResponseWriter, r *http.Request) {
	o.dispatch(http.MethodPut, w, r)
}

// DoDelete dispatches a DELETE request.
func (o *Operations) DoDelete(w http.ResponseWriter, r *http.Request) {
	o.dispatch(http.MethodDelete, w, r)
}

func (o *Operations) dispatch(method string, w http.ResponseWriter, r *http.Request) {
	selector := o.selector(r)
	op, found := o.handlers[operationKey{method: method, selector: selector}]
	if !found {
		if !o.hasMethod(method) {
			http.Error(w, "operation not allowed for "+method, http.StatusMethodNotAllowed)
			return
		}
		http.Error(w, "no operation '"+selector+"' for "+method, http.StatusNotFound)
		return
	}

	resource := GetResource(r, o.resolver)
	if err := op.ServeOperation(w, r, resource); err != nil {
		o.log.Error("operation failed",
			"method", method,
			"selector", selector,
			"path", resource.Path(),
			"error", err)
	}
}

func (o *Operations) hasMethod(method string) bool {
	for key := range o.handlers {
		if key.method == method {
			return true
		}
	}
	return false
}
