package console

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
)

func formRequest(t *testing.T, params url.Values) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/bin/users", strings.NewReader(params.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestValidation_RequiredParameter(t *testing.T) {
	letter := regexp.MustCompile(`[a-z]`)

	t.Run("present and matching", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{"name": {"a"}})

		value, ok := v.RequiredParameter(r, "name", letter, "missing {}")
		if !ok || value != "a" {
			t.Fatalf("RequiredParameter() = %q, %v, expected \"a\", true", value, ok)
		}
		if len(v.Messages()) != 0 {
			t.Errorf("expected no messages, got %v", v.Messages())
		}
	})

	t.Run("absent accumulates one message", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{})

		_, ok := v.RequiredParameter(r, "name", nil, "missing {}")
		if ok {
			t.Fatal("RequiredParameter() expected ok=false for absent parameter")
		}
		if len(v.Messages()) != 1 {
			t.Fatalf("expected 1 message, got %d", len(v.Messages()))
		}
		if v.Messages()[0] != "missing null" {
			t.Errorf("message = %q, expected %q", v.Messages()[0], "missing null")
		}
	})

	t.Run("pattern mismatch binds the offending value", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{"name": {"42"}})

		_, ok := v.RequiredParameter(r, "name", letter, "bad name '{}'")
		if ok {
			t.Fatal("RequiredParameter() expected ok=false for mismatching value")
		}
		if v.Messages()[0] != "bad name '42'" {
			t.Errorf("message = %q, expected %q", v.Messages()[0], "bad name '42'")
		}
	})

	t.Run("pattern must cover the whole value", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{"name": {"abc"}})

		// 'abc' contains a letter but is not a single letter.
		_, ok := v.RequiredParameter(r, "name", letter, "bad name '{}'")
		if ok {
			t.Fatal("RequiredParameter() expected whole-string matching")
		}
	})

	t.Run("alternation picks the branch covering the whole value", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{"name": {"abc"}})

		// The leftmost match of a|abc is just "a"; the value is still valid
		// because the second branch covers it entirely.
		value, ok := v.RequiredParameter(r, "name", regexp.MustCompile(`a|abc`), "bad name '{}'")
		if !ok || value != "abc" {
			t.Fatalf("RequiredParameter() = %q, %v, expected \"abc\", true", value, ok)
		}
	})
}

func TestValidation_RequiredParameters(t *testing.T) {
	letter := regexp.MustCompile(`[a-z]`)

	t.Run("all matching", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{"name": {"a", "b"}})

		values, ok := v.RequiredParameters(r, "name", letter, "bad {}")
		if !ok {
			t.Fatal("RequiredParameters() expected ok=true")
		}
		if len(values) != 2 || values[0] != "a" || values[1] != "b" {
			t.Errorf("values = %v, expected [a b]", values)
		}
		if len(v.Messages()) != 0 {
			t.Errorf("expected no messages, got %v", v.Messages())
		}
	})

	t.Run("zero occurrences", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{})

		values, ok := v.RequiredParameters(r, "name", nil, "missing {}")
		if ok || values != nil {
			t.Fatalf("RequiredParameters() = %v, %v, expected nil, false", values, ok)
		}
		if len(v.Messages()) != 1 {
			t.Errorf("expected 1 message, got %d", len(v.Messages()))
		}
	})

	t.Run("partial failure still returns all values", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{"name": {"a", "42", "b"}})

		values, ok := v.RequiredParameters(r, "name", letter, "bad {}")
		if !ok {
			t.Fatal("RequiredParameters() expected ok=true with occurrences present")
		}
		if len(values) != 3 {
			t.Errorf("values = %v, expected all 3 raw values", values)
		}
		if len(v.Messages()) != 1 || v.Messages()[0] != "bad 42" {
			t.Errorf("messages = %v, expected one message for '42'", v.Messages())
		}
	})
}

func TestValidation_SendError(t *testing.T) {
	t.Run("rejects with first message", func(t *testing.T) {
		v := NewValidation(nil)
		r := formRequest(t, url.Values{})
		v.AddMessage(r, "first problem", nil)
		v.AddMessage(r, "second problem", nil)

		w := httptest.NewRecorder()
		if !v.SendError(w) {
			t.Fatal("SendError() expected true with accumulated messages")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, expected 400", w.Code)
		}
		if got := strings.TrimSpace(w.Body.String()); got != "first problem" {
			t.Errorf("body = %q, expected first message", got)
		}
	})

	t.Run("leaves the response untouched without messages", func(t *testing.T) {
		v := NewValidation(nil)
		w := httptest.NewRecorder()
		if v.SendError(w) {
			t.Fatal("SendError() expected false without messages")
		}
		if w.Code != http.StatusOK || w.Body.Len() != 0 {
			t.Errorf("response was touched: status=%d body=%q", w.Code, w.Body.String())
		}
	})
}

func TestValidation_LocalizationBeforeInterpolation(t *testing.T) {
	// The translator sees the raw template, placeholder included; the value
	// lands in the localized template's placeholder position.
	translate := func(_ *http.Request, text string) string {
		if text == "missing {}" {
			return "es fehlt: {}!"
		}
		return text
	}
	v := NewValidation(translate)
	r := formRequest(t, url.Values{})

	v.AddMessage(r, "missing {}", "name")
	if v.Messages()[0] != "es fehlt: name!" {
		t.Errorf("message = %q, expected localized template with interpolated value", v.Messages()[0])
	}
}
