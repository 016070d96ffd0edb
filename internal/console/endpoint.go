package console

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// itemExistsTemplate is the canned conflict message, localized per request.
const itemExistsTemplate = "An element with the same name exists already - use a different name!"

// StatusMessage is one entry of a Status envelope.
type StatusMessage struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Status is the JSON envelope console operations answer with.
type Status struct {
	Success  bool            `json:"success"`
	Messages []StatusMessage `json:"messages"`
}

// Endpoint ties the console base layer together for one service route.
//
// Per request: gate on the enablement flag (disabled answers 503 with an
// empty body and never reaches the operation set), harden caching headers,
// then delegate to the operation set by verb. Endpoint itself owns no
// mutable per-request state and is safe for concurrent use.
type Endpoint struct {
	enabled    func() bool
	operations OperationSet
	translate  Translator
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*Endpoint)

// WithEnabled installs the enablement gate. The function is consulted once
// per request; wiring it to configuration lets operators disable a console
// service without a restart.
func WithEnabled(enabled func() bool) EndpointOption {
	return func(e *Endpoint) {
		if enabled != nil {
			e.enabled = enabled
		}
	}
}

// WithTranslator installs the localization function used for canned
// responses and handed to Validation scopes.
func WithTranslator(translate Translator) EndpointOption {
	return func(e *Endpoint) {
		if translate != nil {
			e.translate = translate
		}
	}
}

// NewEndpoint creates an endpoint delegating to operations.
// Endpoints are enabled by default and do not localize unless configured.
func NewEndpoint(operations OperationSet, opts ...EndpointOption) *Endpoint {
	if operations == nil {
		panic("console: nil operation set")
	}
	e := &Endpoint{
		enabled:    func() bool { return true },
		operations: operations,
		translate:  NoTranslation,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validation creates a request-scoped validation using the endpoint's translator.
func (e *Endpoint) Validation() *Validation {
	return NewValidation(e.translate)
}

// ServeHTTP implements http.Handler.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !e.enabled() {
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	SetNoCacheHeaders(w)

	switch r.Method {
	case http.MethodGet:
		e.operations.DoGet(w, r)
	case http.MethodPost:
		e.operations.DoPost(w, r)
	case http.MethodPut:
		e.operations.DoPut(w, r)
	case http.MethodDelete:
		e.operations.DoDelete(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// SetNoCacheHeaders marks the response as uncacheable for every downstream
// cache and proxy; the epoch Expires forces revalidation on HTTP/1.0 caches
// that ignore Cache-Control.
func SetNoCacheHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Cache-Control", "no-cache")
	h.Add("Cache-Control", "no-store")
	h.Add("Cache-Control", "must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", time.Unix(0, 0).UTC().Format(http.TimeFormat))
}

// AnswerItemExists emits the reusable conflict response: HTTP 409 with a
// Status envelope carrying one localized warning message.
func (e *Endpoint) AnswerItemExists(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(http.StatusConflict)
	return json.NewEncoder(w).Encode(Status{
		Success: false,
		Messages: []StatusMessage{
			{Level: "warn", Text: e.translate(r, itemExistsTemplate)},
		},
	})
}

// newDecoder is the centrally configured JSON decoder all body parsing
// shares. UseNumber keeps numeric parameters intact until an operation
// decides on a concrete type.
func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// ReadJSON decodes the request body (a single UTF-8 JSON document) into target.
// Decode failures propagate unchanged; the calling operation picks the
// resulting status code.
func ReadJSON(r *http.Request, target any) error {
	return newDecoder(r.Body).Decode(target)
}

// ReadJSONWith decodes the request body into a value produced by construct,
// for target types that cannot be default-constructed (unexported invariants,
// required backreferences). The constructed value must be a pointer.
func ReadJSONWith(r *http.Request, construct func() any) (any, error) {
	target := construct()
	if err := newDecoder(r.Body).Decode(target); err != nil {
		return nil, err
	}
	return target, nil
}

// DecodeJSONString decodes an in-memory JSON document into target using the
// same decoder configuration as the request-body helpers.
func DecodeJSONString(input string, target any) error {
	return newDecoder(strings.NewReader(input)).Decode(target)
}
