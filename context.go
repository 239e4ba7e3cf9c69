package logrich

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// LogContext is the immutable set of ambient fields attached to every event
// emitted while it is bound. Service, Environment and JobID are the
// required identity fields; the rest are optional and default to the
// zero value when never supplied. Values are copied on Merge; callers
// never observe partial mutation.
type LogContext struct {
	Service        string
	Environment    string
	JobID          string
	RequestID      string
	UserID         string
	UserName       string
	Hostname       string
	TraceID        string
	SpanID         string
	ProcessID      int
	ProcessIDChain []int
	Extra          map[string]string
}

const maxProcessIDChain = 8

// validateRequired checks that Service, Environment and JobID are each
// non-empty after trimming whitespace, the invariant a root Bind call must
// satisfy.
func validateRequired(lc LogContext) error {
	var missing []string
	if strings.TrimSpace(lc.Service) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(lc.Environment) == "" {
		missing = append(missing, "environment")
	}
	if strings.TrimSpace(lc.JobID) == "" {
		missing = append(missing, "job_id")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing required field(s): %s", ErrContextIncomplete, strings.Join(missing, ", "))
}

// newRootContext builds the base context for a fresh top-level Bind call,
// filling identity fields from ident and the binder's configured
// service/environment when the caller left them empty.
func newRootContext(ident SystemIdentityPort, defaultService, defaultEnvironment string, overrides LogContext) LogContext {
	ctx := overrides.clone()
	if ctx.Service == "" {
		ctx.Service = defaultService
	}
	if ctx.Environment == "" {
		ctx.Environment = defaultEnvironment
	}
	if ctx.RequestID == "" {
		ctx.RequestID = uuid.NewString()
	}
	if ctx.Hostname == "" {
		ctx.Hostname = ident.Hostname()
	}
	if ctx.UserName == "" {
		ctx.UserName = ident.UserName()
	}
	ctx.ProcessID = ident.ProcessID()
	ctx.ProcessIDChain = append([]int{}, ctx.ProcessIDChain...)
	return ctx
}

// merge layers overrides on top of the receiver, returning a new value.
// Empty fields in overrides do not clear values from the receiver; Extra
// maps are merged key by key.
func (c LogContext) merge(overrides LogContext) LogContext {
	out := c.clone()
	if overrides.Service != "" {
		out.Service = overrides.Service
	}
	if overrides.Environment != "" {
		out.Environment = overrides.Environment
	}
	if overrides.JobID != "" {
		out.JobID = overrides.JobID
	}
	if overrides.RequestID != "" {
		out.RequestID = overrides.RequestID
	}
	if overrides.UserID != "" {
		out.UserID = overrides.UserID
	}
	if overrides.UserName != "" {
		out.UserName = overrides.UserName
	}
	if overrides.Hostname != "" {
		out.Hostname = overrides.Hostname
	}
	if overrides.TraceID != "" {
		out.TraceID = overrides.TraceID
	}
	if overrides.SpanID != "" {
		out.SpanID = overrides.SpanID
	}
	if overrides.ProcessID != 0 {
		out.ProcessID = overrides.ProcessID
	}
	if len(overrides.ProcessIDChain) > 0 {
		out.ProcessIDChain = append([]int{}, overrides.ProcessIDChain...)
	}
	for k, v := range overrides.Extra {
		out.Extra[k] = v
	}
	return out
}

// withProcessBoundary records a process boundary when pid differs from the
// context's current ProcessID: the previous ProcessID is appended to the
// chain, which is capped at maxProcessIDChain by dropping the oldest entry,
// and ProcessID becomes pid. The chain holds ancestor pids only;
// processIDChainString adds ProcessID at the end when rendering.
func (c LogContext) withProcessBoundary(pid int) LogContext {
	if c.ProcessID == pid {
		return c
	}
	out := c.clone()
	chain := append(out.ProcessIDChain, out.ProcessID)
	if len(chain) > maxProcessIDChain {
		chain = chain[len(chain)-maxProcessIDChain:]
	}
	out.ProcessIDChain = chain
	out.ProcessID = pid
	return out
}

func (c LogContext) clone() LogContext {
	out := c
	out.ProcessIDChain = append([]int{}, c.ProcessIDChain...)
	out.Extra = make(map[string]string, len(c.Extra))
	for k, v := range c.Extra {
		out.Extra[k] = v
	}
	return out
}

// Dict returns the full context as a flat string map, service/environment/
// job_id down through extra, the source of the dump adapter's "context"
// placeholder (as opposed to "context_fields", which only carries merged
// Extra data). Empty fields are omitted.
func (c LogContext) Dict() map[string]string {
	m := make(map[string]string, len(c.Extra)+11)
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("service", c.Service)
	set("environment", c.Environment)
	set("job_id", c.JobID)
	set("request_id", c.RequestID)
	set("user_id", c.UserID)
	set("user_name", c.UserName)
	set("hostname", c.Hostname)
	set("trace_id", c.TraceID)
	set("span_id", c.SpanID)
	set("process_id", strconv.Itoa(c.ProcessID))
	set("process_id_chain", processIDChainString(c))
	for k, v := range c.Extra {
		set(k, v)
	}
	return m
}
