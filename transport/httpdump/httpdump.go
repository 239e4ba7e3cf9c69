// Package httpdump exposes a read-only HTTP endpoint over a logrich
// Runtime's dump capability, for operators who want to pull recent log
// history without shelling into a host.
package httpdump

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	logrich "github.com/bitranox/lib-log-rich"
)

// Dumper is the subset of *logrich.Runtime this handler depends on.
type Dumper interface {
	Dump(opts logrich.DumpOptions) (string, error)
}

// Router builds a chi.Router exposing GET /dump against rt.
//
//	r := httpdump.Router(rt)
//	http.ListenAndServe(":8080", r)
//
// Query parameters: format (text|json|html|html_txt, default text), preset
// (full|short|full_loc|short_loc), theme (dark|light|mono), color
// (true|false), min_level (debug|info|warning|error|critical).
func Router(rt Dumper) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/dump", handleDump(rt))
	return r
}

func handleDump(rt Dumper) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		format, err := logrich.ParseDumpFormat(defaultString(req.URL.Query().Get("format"), "text"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts := logrich.DumpOptions{
			Format: format,
			Preset: req.URL.Query().Get("preset"),
			Theme:  req.URL.Query().Get("theme"),
		}
		if v := req.URL.Query().Get("color"); v != "" {
			opts.Color, _ = strconv.ParseBool(v)
		}
		if v := req.URL.Query().Get("min_level"); v != "" {
			level, err := logrich.ParseLevel(v)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			opts.MinLevel = level
		}
		body, err := rt.Dump(opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType(format))
		w.Write([]byte(body))
	}
}

func contentType(format logrich.DumpFormat) string {
	switch format {
	case logrich.DumpJSON:
		return "application/json; charset=utf-8"
	case logrich.DumpHTMLTable, logrich.DumpHTMLText:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
