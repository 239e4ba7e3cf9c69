package logrich

import (
	"fmt"
	"html"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DumpFormat selects how CaptureDump renders retained events.
type DumpFormat int

const (
	// DumpText renders events through the placeholder template engine.
	DumpText DumpFormat = iota
	// DumpJSON renders events as a JSON array, one object per event.
	DumpJSON
	// DumpHTMLTable renders events as a styled HTML table, one row per
	// event.
	DumpHTMLTable
	// DumpHTMLText renders events through the placeholder template engine
	// like DumpText, but wraps the result in a preformatted HTML block.
	DumpHTMLText
)

// ParseDumpFormat resolves a DumpFormat from its name.
func ParseDumpFormat(name string) (DumpFormat, error) {
	switch strings.ToLower(name) {
	case "text", "txt":
		return DumpText, nil
	case "json":
		return DumpJSON, nil
	case "html", "html_table":
		return DumpHTMLTable, nil
	case "html_txt", "html_text":
		return DumpHTMLText, nil
	default:
		return 0, fmt.Errorf("%w: unknown dump format %q", ErrTemplateInvalid, name)
	}
}

// dumpPresets are named templates in the same {placeholder} syntax a
// caller may pass directly via DumpOptions.Template.
var dumpPresets = map[string]string{
	"full":      "{timestamp} {level:<8} {logger_name} {message} {context_fields}",
	"short":     "{hh}:{mm}:{ss} {level_icon} {message}",
	"full_loc":  "{timestamp_loc} {level:<8} {logger_name}[{process_id_chain}] {message} {context_fields}",
	"short_loc": "{hh_loc}:{mm_loc}:{ss_loc} {level_icon} {logger_name}: {message}",
}

// themePalette maps a level to a foreground color name understood by the
// HTML renderer's inline style output.
type themePalette map[LogLevel]string

var dumpThemes = map[string]themePalette{
	"dark": {
		DebugLevel: "#8899aa", InfoLevel: "#4fd1c5", WarningLevel: "#f6e05e",
		ErrorLevel: "#fc8181", CriticalLevel: "#f56565",
	},
	"light": {
		DebugLevel: "#666666", InfoLevel: "#2b6cb0", WarningLevel: "#b7791f",
		ErrorLevel: "#c53030", CriticalLevel: "#822727",
	},
	"mono": {
		DebugLevel: "#000000", InfoLevel: "#000000", WarningLevel: "#000000",
		ErrorLevel: "#000000", CriticalLevel: "#000000",
	},
}

// DumpOptions controls CaptureDump/DumpAdapter rendering.
type DumpOptions struct {
	Format   DumpFormat
	Preset   string // resolved before Template when non-empty
	Template string
	Theme    string // "dark" (default), "light", "mono"
	Path     string // when non-empty, output is also written atomically to this file

	// MinLevel filters out events below it before rendering. The zero
	// value renders every retained event.
	MinLevel LogLevel

	// Color enables theme coloring for the HTML formats. Both HTML
	// formats render colorless by default so a dump embedded in a plain
	// document or piped to a colorless viewer isn't cluttered with
	// unused inline styles.
	Color bool
}

// DumpAdapter renders retained LogEvents in the format and template
// requested by DumpOptions.
type DumpAdapter struct{}

// NewDumpAdapter returns a ready-to-use DumpAdapter.
func NewDumpAdapter() *DumpAdapter { return &DumpAdapter{} }

// Render implements DumpPort.
func (d *DumpAdapter) Render(events []LogEvent, opts DumpOptions) (string, error) {
	events = filterByLevel(events, opts.MinLevel)

	var out string
	var err error
	switch opts.Format {
	case DumpJSON:
		out, err = renderJSON(events)
	case DumpHTMLTable:
		out, err = renderHTML(events, opts)
	case DumpHTMLText:
		out, err = renderHTMLText(events, opts)
	default:
		out, err = renderText(events, opts)
	}
	if err != nil {
		return "", err
	}
	if opts.Path != "" {
		if err := writeDumpFile(opts.Path, out); err != nil {
			return "", err
		}
	}
	return out, nil
}

func filterByLevel(events []LogEvent, min LogLevel) []LogEvent {
	if min == 0 {
		return events
	}
	out := make([]LogEvent, 0, len(events))
	for _, ev := range events {
		if ev.Level >= min {
			out = append(out, ev)
		}
	}
	return out
}

// writeDumpFile writes content to path atomically, truncating any
// previous contents. This is a single deliberate write per Dump call, not
// a rotating or appending log sink.
func writeDumpFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("logrich: open dump file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("logrich: write dump file: %w", err)
	}
	return nil
}

func resolveTemplate(opts DumpOptions) (string, error) {
	if opts.Preset != "" {
		tpl, ok := dumpPresets[strings.ToLower(opts.Preset)]
		if !ok {
			return "", fmt.Errorf("%w: unknown preset %q", ErrTemplateInvalid, opts.Preset)
		}
		return tpl, nil
	}
	if opts.Template != "" {
		return opts.Template, nil
	}
	return dumpPresets["full"], nil
}

func renderText(events []LogEvent, opts DumpOptions) (string, error) {
	tpl, err := resolveTemplate(opts)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		line, err := renderPlaceholders(tpl, buildFormatPayload(ev))
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// buildFormatPayload flattens a LogEvent into the named placeholders the
// text/HTML template engines substitute. "_loc" variants render the local
// (not UTC) rendering of the same field.
func buildFormatPayload(ev LogEvent) map[string]string {
	ts := ev.Timestamp.UTC()
	loc := ev.Timestamp.Local()
	return map[string]string{
		"timestamp":        ts.Format(time.RFC3339),
		"timestamp_loc":    loc.Format(time.RFC3339),
		"YYYY":             fmt.Sprintf("%04d", ts.Year()),
		"YYYY_loc":         fmt.Sprintf("%04d", loc.Year()),
		"MM":               fmt.Sprintf("%02d", int(ts.Month())),
		"MM_loc":           fmt.Sprintf("%02d", int(loc.Month())),
		"DD":               fmt.Sprintf("%02d", ts.Day()),
		"DD_loc":           fmt.Sprintf("%02d", loc.Day()),
		"hh":               fmt.Sprintf("%02d", ts.Hour()),
		"hh_loc":           fmt.Sprintf("%02d", loc.Hour()),
		"mm":               fmt.Sprintf("%02d", ts.Minute()),
		"mm_loc":           fmt.Sprintf("%02d", loc.Minute()),
		"ss":               fmt.Sprintf("%02d", ts.Second()),
		"ss_loc":           fmt.Sprintf("%02d", loc.Second()),
		"level":            strings.ToUpper(ev.Level.String()),
		"level_name":       ev.Level.String(),
		"level_code":       ev.Level.Code(),
		"level_icon":       ev.Level.Icon(),
		"logger_name":      ev.LoggerName,
		"event_id":         ev.EventID,
		"message":          ev.Message,
		"context":          flattenKV(ev.Context.Dict()),
		"extra":            flattenExtraMap(ev.Extra),
		"context_fields":   mergedFields(ev),
		"user_name":        ev.Context.UserName,
		"hostname":         ev.Context.Hostname,
		"process_id":       strconv.Itoa(ev.Context.ProcessID),
		"process_id_chain": processIDChainString(ev.Context),
	}
}

func processIDChainString(lc LogContext) string {
	parts := make([]string, 0, len(lc.ProcessIDChain)+1)
	for _, pid := range lc.ProcessIDChain {
		parts = append(parts, strconv.Itoa(pid))
	}
	parts = append(parts, strconv.Itoa(lc.ProcessID))
	return strings.Join(parts, ">")
}

func flattenExtraMap(m map[string]string) string {
	return flattenKV(m)
}

func mergedFields(ev LogEvent) string {
	return flattenKV(mergeExtra(ev))
}

// placeholderPattern matches {name} or {name:<width} / {name:>width}
// alignment specifiers, the Python str.format subset the source templates
// use. It intentionally does not support the full str.format grammar.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)(?::([<>])(\d+))?\}`)

func renderPlaceholders(tpl string, fields map[string]string) (string, error) {
	var rendErr error
	out := placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		name, align, widthStr := groups[1], groups[2], groups[3]
		val, ok := fields[name]
		if !ok {
			rendErr = fmt.Errorf("%w: unknown placeholder %q", ErrTemplateInvalid, name)
			return match
		}
		if widthStr == "" {
			return val
		}
		width, _ := strconv.Atoi(widthStr)
		if len(val) >= width {
			return val
		}
		pad := strings.Repeat(" ", width-len(val))
		if align == ">" {
			return pad + val
		}
		return val + pad
	})
	if rendErr != nil {
		return "", rendErr
	}
	return out, nil
}

type exceptionPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

type jsonContext struct {
	Service        string            `json:"service,omitempty"`
	Environment    string            `json:"environment,omitempty"`
	JobID          string            `json:"job_id,omitempty"`
	RequestID      string            `json:"request_id,omitempty"`
	UserID         string            `json:"user_id,omitempty"`
	UserName       string            `json:"user_name,omitempty"`
	Hostname       string            `json:"hostname,omitempty"`
	TraceID        string            `json:"trace_id,omitempty"`
	SpanID         string            `json:"span_id,omitempty"`
	ProcessID      int               `json:"process_id,omitempty"`
	ProcessIDChain []int             `json:"process_id_chain,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

type jsonEvent struct {
	EventID    string            `json:"event_id"`
	LoggerName string            `json:"logger_name"`
	Level      string            `json:"level"`
	Message    string            `json:"message"`
	Timestamp  string            `json:"timestamp"`
	Context    jsonContext       `json:"context"`
	Extra      map[string]string `json:"extra,omitempty"`
	Exception  *exceptionPayload `json:"exception,omitempty"`
}

func toJSONContext(lc LogContext) jsonContext {
	return jsonContext{
		Service:        lc.Service,
		Environment:    lc.Environment,
		JobID:          lc.JobID,
		RequestID:      lc.RequestID,
		UserID:         lc.UserID,
		UserName:       lc.UserName,
		Hostname:       lc.Hostname,
		TraceID:        lc.TraceID,
		SpanID:         lc.SpanID,
		ProcessID:      lc.ProcessID,
		ProcessIDChain: lc.ProcessIDChain,
		Extra:          lc.Extra,
	}
}

func renderJSON(events []LogEvent) (string, error) {
	out := make([]jsonEvent, 0, len(events))
	for _, ev := range events {
		je := jsonEvent{
			EventID:    ev.EventID,
			LoggerName: ev.LoggerName,
			Level:      ev.Level.String(),
			Message:    ev.Message,
			Timestamp:  ev.Timestamp.UTC().Format(time.RFC3339Nano),
			Context:    toJSONContext(ev.Context),
			Extra:      ev.Extra,
		}
		if ev.Exception != nil {
			je.Exception = &exceptionPayload{
				Type:    ev.Exception.Type,
				Message: ev.Exception.Message,
				Trace:   ev.Exception.Trace,
			}
		}
		out = append(out, je)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("logrich: render json dump: %w", err)
	}
	return string(data), nil
}

func resolveTheme(name string) themePalette {
	if t, ok := dumpThemes[strings.ToLower(name)]; ok {
		return t
	}
	return dumpThemes["dark"]
}

func renderHTML(events []LogEvent, opts DumpOptions) (string, error) {
	theme := resolveTheme(opts.Theme)
	var b strings.Builder
	b.WriteString("<table class=\"logrich-dump\">\n")
	b.WriteString("<thead><tr><th>timestamp</th><th>level</th><th>logger_name</th><th>event_id</th><th>message</th><th>context</th></tr></thead>\n<tbody>\n")
	for _, ev := range events {
		style := ""
		if opts.Color {
			style = fmt.Sprintf(" style=\"color:%s\"", theme[ev.Level])
		}
		fmt.Fprintf(&b, "<tr%s><td>%s</td><td>%s %s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			style,
			html.EscapeString(ev.Timestamp.UTC().Format(time.RFC3339)),
			ev.Level.Icon(), html.EscapeString(ev.Level.String()),
			html.EscapeString(ev.LoggerName),
			html.EscapeString(ev.EventID),
			html.EscapeString(ev.Message),
			html.EscapeString(mergedFields(ev)),
		)
	}
	b.WriteString("</tbody>\n</table>\n")
	return b.String(), nil
}

// renderHTMLText renders events through the same placeholder template
// engine as DumpText, wrapping the result in a <pre> block. Lines are
// colorized per-level only when opts.Color is set.
func renderHTMLText(events []LogEvent, opts DumpOptions) (string, error) {
	tpl, err := resolveTemplate(opts)
	if err != nil {
		return "", err
	}
	theme := resolveTheme(opts.Theme)

	var b strings.Builder
	b.WriteString("<pre class=\"logrich-dump\">\n")
	for _, ev := range events {
		line, err := renderPlaceholders(tpl, buildFormatPayload(ev))
		if err != nil {
			return "", err
		}
		escaped := html.EscapeString(line)
		if opts.Color {
			fmt.Fprintf(&b, "<span style=\"color:%s\">%s</span>\n", theme[ev.Level], escaped)
			continue
		}
		b.WriteString(escaped)
		b.WriteString("\n")
	}
	b.WriteString("</pre>\n")
	return b.String(), nil
}
