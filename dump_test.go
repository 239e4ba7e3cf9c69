package logrich

import (
	"strings"
	"testing"
	"time"
)

func sampleEvent() LogEvent {
	return LogEvent{
		EventID:    "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		LoggerName: "worker",
		Level:      InfoLevel,
		Message:    "hello world",
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Context: LogContext{
			Service:     "svc",
			Environment: "dev",
			JobID:       "j1",
			UserName:    "alice",
			Hostname:    "host-1",
			Extra:       map[string]string{"region": "eu"},
		},
	}
}

func TestRenderTextPreset(t *testing.T) {
	adapter := NewDumpAdapter()
	out, err := adapter.Render([]LogEvent{sampleEvent()}, DumpOptions{Format: DumpText, Preset: "short"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "hello world") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "03:04:05") {
		t.Errorf("output missing formatted time: %q", out)
	}
}

func TestRenderTextCustomTemplateWithAlignment(t *testing.T) {
	adapter := NewDumpAdapter()
	out, err := adapter.Render([]LogEvent{sampleEvent()}, DumpOptions{
		Format:   DumpText,
		Template: "{level:<8}|{message}",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "INFO    |hello world\n"
	if out != want {
		t.Errorf("Render() = %q, want %q", out, want)
	}
}

func TestRenderTextUnknownPlaceholder(t *testing.T) {
	adapter := NewDumpAdapter()
	_, err := adapter.Render([]LogEvent{sampleEvent()}, DumpOptions{
		Format:   DumpText,
		Template: "{bogus}",
	})
	if err == nil {
		t.Fatal("expected error for unknown placeholder")
	}
}

func TestRenderTextUnknownPreset(t *testing.T) {
	adapter := NewDumpAdapter()
	_, err := adapter.Render([]LogEvent{sampleEvent()}, DumpOptions{Format: DumpText, Preset: "nonexistent"})
	if err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestRenderJSON(t *testing.T) {
	adapter := NewDumpAdapter()
	out, err := adapter.Render([]LogEvent{sampleEvent()}, DumpOptions{Format: DumpJSON})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `"logger_name": "worker"`) {
		t.Errorf("json output missing logger_name: %s", out)
	}
	if !strings.Contains(out, `"region": "eu"`) {
		t.Errorf("json output missing extra field: %s", out)
	}
	if !strings.Contains(out, `"service": "svc"`) {
		t.Errorf("json output missing context.service: %s", out)
	}
	if !strings.Contains(out, `"job_id": "j1"`) {
		t.Errorf("json output missing context.job_id: %s", out)
	}
}

func TestRenderHTML(t *testing.T) {
	adapter := NewDumpAdapter()
	out, err := adapter.Render([]LogEvent{sampleEvent()}, DumpOptions{Format: DumpHTMLTable, Theme: "light", Color: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<table") {
		t.Errorf("html output missing table: %s", out)
	}
	if !strings.Contains(out, "hello world") {
		t.Errorf("html output missing message: %s", out)
	}
}

func TestRenderTextEscapesNothingButHTMLEscapes(t *testing.T) {
	ev := sampleEvent()
	ev.Message = "<script>"
	adapter := NewDumpAdapter()

	html, err := adapter.Render([]LogEvent{ev}, DumpOptions{Format: DumpHTMLTable})
	if err != nil {
		t.Fatalf("Render html: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("HTML dump must escape event message content")
	}

	text, err := adapter.Render([]LogEvent{ev}, DumpOptions{Format: DumpText, Template: "{message}"})
	if err != nil {
		t.Fatalf("Render text: %v", err)
	}
	if text != "<script>\n" {
		t.Errorf("text dump = %q, want the message unescaped", text)
	}
}

func TestRenderHTMLText(t *testing.T) {
	adapter := NewDumpAdapter()
	out, err := adapter.Render([]LogEvent{sampleEvent()}, DumpOptions{Format: DumpHTMLText, Preset: "short"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<pre") {
		t.Errorf("html_txt output missing <pre>: %s", out)
	}
	if !strings.Contains(out, "hello world") {
		t.Errorf("html_txt output missing message: %s", out)
	}
}

func TestRenderFiltersByMinLevel(t *testing.T) {
	debug := sampleEvent()
	debug.Level = DebugLevel
	info := sampleEvent()
	info.Level = InfoLevel

	adapter := NewDumpAdapter()
	out, err := adapter.Render([]LogEvent{debug, info}, DumpOptions{Format: DumpJSON, MinLevel: InfoLevel})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Count(out, `"logger_name"`) != 1 {
		t.Errorf("expected exactly one event to survive the MinLevel filter, got: %s", out)
	}
}

func TestRenderJSONIncludesException(t *testing.T) {
	ev := sampleEvent()
	ev.Exception = &ExceptionInfo{Type: "*errors.errorString", Message: "boom", Trace: "goroutine 1"}
	adapter := NewDumpAdapter()
	out, err := adapter.Render([]LogEvent{ev}, DumpOptions{Format: DumpJSON})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `"message": "boom"`) {
		t.Errorf("json output missing exception message: %s", out)
	}
}

func TestParseDumpFormat(t *testing.T) {
	cases := map[string]DumpFormat{"text": DumpText, "json": DumpJSON, "html": DumpHTMLTable, "html_txt": DumpHTMLText}
	for name, want := range cases {
		got, err := ParseDumpFormat(name)
		if err != nil {
			t.Fatalf("ParseDumpFormat(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseDumpFormat(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseDumpFormat("bogus"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
