package console

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Translator localizes a message template for the requesting client before
// any value interpolation happens. The request carries whatever locale
// information the implementation cares about (Accept-Language, a cookie, ...).
//
// NoTranslation is used wherever no localization layer is configured.
type Translator func(r *http.Request, text string) string

// NoTranslation returns the template unchanged.
func NoTranslation(_ *http.Request, text string) string {
	return text
}

// Validation accumulates parameter validation failures for one request.
//
// A Validation is request-scoped and not safe for concurrent use. Handlers
// extract parameters through RequiredParameter/RequiredParameters and must
// call SendError exactly once before acting on the extracted values; a true
// result means the request was answered with HTTP 400 and must not proceed.
type Validation struct {
	translate Translator
	messages  []string
}

// NewValidation creates a validation scope using the given translator.
// A nil translator falls back to NoTranslation.
func NewValidation(translate Translator) *Validation {
	if translate == nil {
		translate = NoTranslation
	}
	return &Validation{translate: translate}
}

// AddMessage records one failure message. The template is localized first,
// then the offending value is interpolated into its '{}' placeholder;
// localization must run first so locale-specific templates can reposition
// the placeholder.
func (v *Validation) AddMessage(r *http.Request, template string, value any) {
	message := v.translate(r, template)
	v.messages = append(v.messages, interpolate(message, value))
}

// Messages returns the accumulated failure messages in order.
func (v *Validation) Messages() []string {
	return v.messages
}

// RequiredParameter reads the single named request parameter.
//
// A missing parameter, or one that does not match pattern (when non-nil,
// whole-string semantics), accumulates one message built from errorTemplate
// and reports ok=false. The raw value is returned only on success.
func (v *Validation) RequiredParameter(r *http.Request, name string, pattern *regexp.Regexp, errorTemplate string) (value string, ok bool) {
	values, exists := requestParameters(r, name)
	if exists && len(values) > 0 {
		value = values[0]
		if pattern == nil || matchesWhole(pattern, value) {
			return value, true
		}
		v.AddMessage(r, errorTemplate, value)
		return "", false
	}
	v.AddMessage(r, errorTemplate, nil)
	return "", false
}

// RequiredParameters reads all occurrences of the named request parameter.
//
// Zero occurrences accumulate one message and report ok=false. Otherwise
// every occurrence is checked against pattern (when non-nil), accumulating
// one message per mismatch, but the full value list is still returned, so
// callers can log or echo the input; SendError blocks the request anyway.
func (v *Validation) RequiredParameters(r *http.Request, name string, pattern *regexp.Regexp, errorTemplate string) (values []string, ok bool) {
	values, exists := requestParameters(r, name)
	if !exists || len(values) == 0 {
		v.AddMessage(r, errorTemplate, nil)
		return nil, false
	}
	for _, value := range values {
		if pattern != nil && !matchesWhole(pattern, value) {
			v.AddMessage(r, errorTemplate, value)
		}
	}
	return values, true
}

// SendError answers the request with HTTP 400 and the first accumulated
// message if any validation failed. Returns true when the request was
// rejected; the handler must stop. With no messages the response is left
// untouched.
func (v *Validation) SendError(w http.ResponseWriter) bool {
	if len(v.messages) > 0 {
		http.Error(w, v.messages[0], http.StatusBadRequest)
		return true
	}
	return false
}

// requestParameters returns all values of a query or form parameter.
func requestParameters(r *http.Request, name string) ([]string, bool) {
	if err := r.ParseForm(); err != nil {
		return nil, false
	}
	values, exists := r.Form[name]
	return values, exists
}

// matchesWhole reports whether pattern covers the entire value, whether or
// not the pattern carries its own anchors. The pattern is re-anchored rather
// than inspected through its leftmost match: with an alternation like a|abc
// the leftmost match stops at "a" even though the full value is acceptable.
func matchesWhole(pattern *regexp.Regexp, value string) bool {
	whole, err := regexp.Compile(`\A(?:` + pattern.String() + `)\z`)
	if err != nil {
		// pattern compiled, so its anchored wrapping compiles too.
		return false
	}
	return whole.MatchString(value)
}

// interpolate binds value into the template's first '{}' placeholder.
// Templates without a placeholder get the value appended in parentheses when
// it is non-nil; an absent value renders as "null" to match what console
// clients historically displayed.
func interpolate(template string, value any) string {
	rendered := "null"
	if value != nil {
		rendered = fmt.Sprint(value)
	}
	if strings.Contains(template, "{}") {
		return strings.Replace(template, "{}", rendered, 1)
	}
	if value == nil {
		return template
	}
	return template + " (" + rendered + ")"
}
