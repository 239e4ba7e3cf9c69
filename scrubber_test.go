package logrich

import "testing"

func TestScrubberRedactsMatchingFields(t *testing.T) {
	s, err := NewScrubber(map[string]string{"password": "", "token": ""})
	if err != nil {
		t.Fatalf("NewScrubber: %v", err)
	}

	ev := LogEvent{
		Extra: map[string]string{
			"password": "hunter2",
			"user":     "alice",
		},
		Context: LogContext{
			Extra: map[string]string{"auth_token": "abc123"},
		},
	}

	scrubbed := s.Scrub(ev)
	if scrubbed.Extra["password"] != redactedPlaceholder {
		t.Errorf("password = %q, want redacted", scrubbed.Extra["password"])
	}
	if scrubbed.Extra["user"] != "alice" {
		t.Errorf("user must be untouched, got %q", scrubbed.Extra["user"])
	}
	if scrubbed.Context.Extra["auth_token"] != redactedPlaceholder {
		t.Errorf("auth_token = %q, want redacted", scrubbed.Context.Extra["auth_token"])
	}
}

func TestScrubberNoPatternsIsNoOp(t *testing.T) {
	s, err := NewScrubber(nil)
	if err != nil {
		t.Fatalf("NewScrubber: %v", err)
	}
	ev := LogEvent{Extra: map[string]string{"password": "hunter2"}}
	scrubbed := s.Scrub(ev)
	if scrubbed.Extra["password"] != "hunter2" {
		t.Error("scrubber with no patterns must not modify fields")
	}
}

func TestScrubberInvalidPattern(t *testing.T) {
	if _, err := NewScrubber(map[string]string{"(": ""}); err == nil {
		t.Fatal("expected compile error for invalid regexp")
	}
}

func TestScrubberRedactsOnlyValueRegexMatch(t *testing.T) {
	s, err := NewScrubber(map[string]string{"authorization": `(?i)bearer\s+\S+`})
	if err != nil {
		t.Fatalf("NewScrubber: %v", err)
	}
	ev := LogEvent{Extra: map[string]string{"authorization": "Bearer abc123 extra-context"}}
	scrubbed := s.Scrub(ev)
	want := "*** extra-context"
	if scrubbed.Extra["authorization"] != want {
		t.Errorf("authorization = %q, want %q", scrubbed.Extra["authorization"], want)
	}
}
