// Package console is the base layer for the administration console's HTTP
// endpoints: verb-keyed operation dispatch, request parameter validation with
// accumulated messages, path-to-resource resolution with a never-absent
// handle, and streaming JSON encoding of arbitrary in-memory values.
//
// The package deliberately knows nothing about individual console features;
// feature packages (for example usermgmt) register Operations against an
// Endpoint and use the helpers here to produce their responses.
package console
