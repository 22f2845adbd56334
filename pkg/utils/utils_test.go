package utils

import "testing"

func TestHTTPHelper_BuildHeaders(t *testing.T) {
	h := NewHTTPHelper()
	headers := h.BuildHeaders(map[string]string{"X-Test": "1"})

	if got := headers.Get("Referer"); got != DefaultReferer {
		t.Errorf("Referer = %q, want %q", got, DefaultReferer)
	}

	if got := headers.Get("User-Agent"); got != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", got, DefaultUserAgent)
	}

	if got := headers.Get("X-Test"); got != "1" {
		t.Errorf("X-Test = %q, want 1", got)
	}
}

func TestHTTPHelper_Identity(t *testing.T) {
	h := NewHTTPHelperWithIdentity("", "harvester/1.0")
	m := h.HeaderMap(nil)

	if m["Referer"] != DefaultReferer {
		t.Errorf("empty referer should keep default, got %q", m["Referer"])
	}

	if m["User-Agent"] != "harvester/1.0" {
		t.Errorf("User-Agent = %q", m["User-Agent"])
	}
}

func TestStringHelper(t *testing.T) {
	s := NewStringHelper()

	if got := s.TruncateString("abcdef", 3); got != "abc..." {
		t.Errorf("TruncateString = %q", got)
	}

	if got := s.TruncateString("abc", 3); got != "abc" {
		t.Errorf("TruncateString = %q", got)
	}

	if got := s.Mask("supersecrettoken"); got != "***oken" {
		t.Errorf("Mask = %q", got)
	}

	if got := s.Mask("abc"); got != "***" {
		t.Errorf("Mask short = %q", got)
	}

	if got := s.Mask(""); got != "" {
		t.Errorf("Mask empty = %q", got)
	}

	if got := s.SplitBefore("A1B2&x=1#frag", "&", "#"); got != "A1B2" {
		t.Errorf("SplitBefore = %q", got)
	}

	if got := s.SplitBefore("A1B2", "&"); got != "A1B2" {
		t.Errorf("SplitBefore without sep = %q", got)
	}
}
