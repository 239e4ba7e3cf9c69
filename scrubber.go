package logrich

import "regexp"

const redactedPlaceholder = "***"

// scrubRule pairs a compiled field-name matcher with the value-matcher
// whose hits within a matching field's value get redacted.
type scrubRule struct {
	field *regexp.Regexp
	value *regexp.Regexp
}

// Scrubber redacts sensitive fields from a LogEvent's Context.Extra and
// Extra maps before they reach the ring buffer or any sink. Configuration
// is a mapping of field-name regex to value regex: a field whose name
// matches is scanned with the paired value regex, and only the matched
// portion of the value is replaced, never the field wholesale, so partial
// values (e.g. everything after "Bearer ") can be preserved.
type Scrubber struct {
	rules []scrubRule
}

// NewScrubber compiles patterns (field-name regex, matched case
// insensitively, mapped to a value regex) into a Scrubber. An empty value
// regex defaults to matching the entire value. A nil or empty map yields a
// Scrubber that never redacts anything.
func NewScrubber(patterns map[string]string) (*Scrubber, error) {
	s := &Scrubber{rules: make([]scrubRule, 0, len(patterns))}
	for fieldPattern, valuePattern := range patterns {
		fieldRe, err := regexp.Compile("(?i)" + fieldPattern)
		if err != nil {
			return nil, err
		}
		if valuePattern == "" {
			valuePattern = ".*"
		}
		valueRe, err := regexp.Compile(valuePattern)
		if err != nil {
			return nil, err
		}
		s.rules = append(s.rules, scrubRule{field: fieldRe, value: valueRe})
	}
	return s, nil
}

// Scrub returns a copy of ev with any matching Context.Extra/Extra field
// values redacted per the configured field/value regex pairs.
func (s *Scrubber) Scrub(ev LogEvent) LogEvent {
	if len(s.rules) == 0 {
		return ev
	}
	out := ev
	out.Context = ev.Context.clone()
	out.Extra = cloneStringMap(ev.Extra)
	s.redactMap(out.Context.Extra)
	s.redactMap(out.Extra)
	return out
}

func (s *Scrubber) redactMap(m map[string]string) {
	for k, v := range m {
		if rule, ok := s.matchingRule(k); ok {
			m[k] = rule.value.ReplaceAllString(v, redactedPlaceholder)
		}
	}
}

func (s *Scrubber) matchingRule(field string) (scrubRule, bool) {
	for _, rule := range s.rules {
		if rule.field.MatchString(field) {
			return rule, true
		}
	}
	return scrubRule{}, false
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
