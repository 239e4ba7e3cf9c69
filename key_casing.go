package logrich

import (
	"sort"
	"strings"
)

// mergeExtra combines ev.Context.Extra and ev.Extra into a single map,
// event-level fields winning over context-level ones on key collision.
func mergeExtra(ev LogEvent) map[string]string {
	out := make(map[string]string, len(ev.Context.Extra)+len(ev.Extra))
	for k, v := range ev.Context.Extra {
		out[k] = v
	}
	for k, v := range ev.Extra {
		out[k] = v
	}
	return out
}

// contextAndExtraFields combines the full LogContext (service, environment,
// job_id, request_id, user_id, user_name, hostname, trace_id, span_id,
// process_id, process_id_chain, and context-level extra) with the event's
// own Extra, the latter winning on collision. Sinks that forward structured
// fields to a remote system (GELF's Additional fields) use this instead of
// mergeExtra so identity fields aren't silently dropped.
func contextAndExtraFields(ev LogEvent) map[string]string {
	out := ev.Context.Dict()
	for k, v := range ev.Extra {
		out[k] = v
	}
	return out
}

// flattenKV renders m as a sorted "key=value" space-joined string.
func flattenKV(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, " ")
}

// upperASCIIKeys returns a copy of m with every key rendered in upper ASCII,
// the field-naming convention journald-style structured fields expect
// (e.g. "MESSAGE_ID", "CODE_LINE").
func upperASCIIKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// camelCaseKeys returns a copy of m with every key rendered in camelCase,
// the field-naming convention Windows Event Log structured data expects.
func camelCaseKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[toCamelCase(k)] = v
	}
	return out
}

// underscorePrefixKeys returns a copy of m with every key prefixed with an
// underscore (skipping keys already so prefixed), the "Additional field"
// naming convention GELF/Graylog requires for anything outside its fixed
// message fields. "_id" is server-reserved by the GELF spec, so a caller
// supplying it is renamed to "_id_" rather than silently dropped.
func underscorePrefixKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		key := k
		if !strings.HasPrefix(key, "_") {
			key = "_" + key
		}
		if key == "_id" {
			key = "_id_"
		}
		out[key] = v
	}
	return out
}

func toCamelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(parts) == 0 {
		return s
	}
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		lower := strings.ToLower(p)
		if i == 0 {
			b.WriteString(lower)
			continue
		}
		b.WriteString(strings.ToUpper(lower[:1]))
		b.WriteString(lower[1:])
	}
	return b.String()
}
