package console

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// spyOperationSet counts how often the endpoint delegates, per verb.
type spyOperationSet struct {
	gets, posts, puts, deletes int
}

func (s *spyOperationSet) DoGet(_ http.ResponseWriter, _ *http.Request) { s.gets++ }

func (s *spyOperationSet) DoPost(_ http.ResponseWriter, _ *http.Request) { s.posts++ }

func (s *spyOperationSet) DoPut(_ http.ResponseWriter, _ *http.Request) { s.puts++ }

func (s *spyOperationSet) DoDelete(_ http.ResponseWriter, _ *http.Request) { s.deletes++ }

func TestEndpointDisabled(t *testing.T) {
	spy := &spyOperationSet{}
	endpoint := NewEndpoint(spy, WithEnabled(func() bool { return false }))

	w := httptest.NewRecorder()
	endpoint.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bin/test", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, expected 503", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, expected empty", w.Body.String())
	}
	if got := w.Header().Get("Content-Length"); got != "0" {
		t.Errorf("Content-Length = %q, expected 0", got)
	}
	if spy.gets != 0 || spy.posts != 0 || spy.puts != 0 || spy.deletes != 0 {
		t.Error("disabled endpoint must never reach the operation set")
	}
}

func TestEndpointEnablementIsPerRequest(t *testing.T) {
	enabled := false
	spy := &spyOperationSet{}
	endpoint := NewEndpoint(spy, WithEnabled(func() bool { return enabled }))

	endpoint.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bin/test", nil))
	enabled = true
	endpoint.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bin/test", nil))

	if spy.gets != 1 {
		t.Errorf("gets = %d, expected exactly the request after enabling", spy.gets)
	}
}

func TestEndpointVerbDelegation(t *testing.T) {
	tests := []struct {
		method string
		count  func(s *spyOperationSet) int
	}{
		{http.MethodGet, func(s *spyOperationSet) int { return s.gets }},
		{http.MethodPost, func(s *spyOperationSet) int { return s.posts }},
		{http.MethodPut, func(s *spyOperationSet) int { return s.puts }},
		{http.MethodDelete, func(s *spyOperationSet) int { return s.deletes }},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			spy := &spyOperationSet{}
			endpoint := NewEndpoint(spy)
			endpoint.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, "/bin/test", nil))
			if tt.count(spy) != 1 {
				t.Errorf("%s delegations = %d, expected 1", tt.method, tt.count(spy))
			}
		})
	}

	t.Run("unsupported verb", func(t *testing.T) {
		spy := &spyOperationSet{}
		endpoint := NewEndpoint(spy)
		w := httptest.NewRecorder()
		endpoint.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/bin/test", nil))

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, expected 405", w.Code)
		}
		if allow := w.Header().Get("Allow"); allow != "GET, POST, PUT, DELETE" {
			t.Errorf("Allow = %q", allow)
		}
	})
}

func TestSetNoCacheHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	endpoint := NewEndpoint(&spyOperationSet{})
	endpoint.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bin/test", nil))

	cc := w.Header().Values("Cache-Control")
	expected := []string{"no-cache", "no-store", "must-revalidate"}
	if len(cc) != len(expected) {
		t.Fatalf("Cache-Control = %v", cc)
	}
	for i, value := range expected {
		if cc[i] != value {
			t.Errorf("Cache-Control[%d] = %q, expected %q", i, cc[i], value)
		}
	}
	if got := w.Header().Get("Pragma"); got != "no-cache" {
		t.Errorf("Pragma = %q", got)
	}
	if got := w.Header().Get("Expires"); got != "Thu, 01 Jan 1970 00:00:00 GMT" {
		t.Errorf("Expires = %q", got)
	}
}

func TestAnswerItemExists(t *testing.T) {
	t.Run("default text", func(t *testing.T) {
		endpoint := NewEndpoint(&spyOperationSet{})
		w := httptest.NewRecorder()
		if err := endpoint.AnswerItemExists(w, httptest.NewRequest(http.MethodPost, "/bin/test", nil)); err != nil {
			t.Fatal(err)
		}

		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, expected 409", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json;charset=UTF-8" {
			t.Errorf("Content-Type = %q", ct)
		}

		var status Status
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			t.Fatal(err)
		}
		if status.Success {
			t.Error("success = true, expected false")
		}
		if len(status.Messages) != 1 {
			t.Fatalf("messages = %v", status.Messages)
		}
		if status.Messages[0].Level != "warn" {
			t.Errorf("level = %q", status.Messages[0].Level)
		}
		if status.Messages[0].Text != "An element with the same name exists already - use a different name!" {
			t.Errorf("text = %q", status.Messages[0].Text)
		}
	})

	t.Run("localized text", func(t *testing.T) {
		endpoint := NewEndpoint(&spyOperationSet{}, WithTranslator(func(_ *http.Request, key string) string {
			if key == itemExistsTemplate {
				return "Der Name ist schon vergeben!"
			}
			return key
		}))
		w := httptest.NewRecorder()
		if err := endpoint.AnswerItemExists(w, httptest.NewRequest(http.MethodPost, "/bin/test", nil)); err != nil {
			t.Fatal(err)
		}

		var status Status
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			t.Fatal(err)
		}
		if status.Messages[0].Text != "Der Name ist schon vergeben!" {
			t.Errorf("text = %q", status.Messages[0].Text)
		}
	})
}

func TestReadJSON(t *testing.T) {
	t.Run("numbers stay intact", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/bin/test", strings.NewReader(`{"index": 9007199254740993}`))
		var body map[string]any
		if err := ReadJSON(r, &body); err != nil {
			t.Fatal(err)
		}
		number, ok := body["index"].(json.Number)
		if !ok {
			t.Fatalf("index decoded as %T, expected json.Number", body["index"])
		}
		if number.String() != "9007199254740993" {
			t.Errorf("index = %s, lost precision", number)
		}
	})

	t.Run("malformed body propagates the decode error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/bin/test", strings.NewReader(`{"name":`))
		var body map[string]any
		if err := ReadJSON(r, &body); err == nil {
			t.Fatal("expected decode error")
		}
	})
}

func TestReadJSONWith(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/bin/test", strings.NewReader(`{"name":"jane"}`))
	value, err := ReadJSONWith(r, func() any { return &payload{} })
	if err != nil {
		t.Fatal(err)
	}
	if got := value.(*payload).Name; got != "jane" {
		t.Errorf("name = %q", got)
	}
}

func TestDecodeJSONString(t *testing.T) {
	var body map[string]any
	if err := DecodeJSONString(`{"value": 1.5}`, &body); err != nil {
		t.Fatal(err)
	}
	if number, ok := body["value"].(json.Number); !ok || number.String() != "1.5" {
		t.Errorf("value = %#v, expected json.Number 1.5", body["value"])
	}
}

func TestNewEndpointPanicsOnNilOperations(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewEndpoint(nil)
}
