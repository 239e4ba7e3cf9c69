package logrich

import (
	"os"
	"os/user"
)

// SystemIdentityPort resolves ambient identity fields used to fill in a
// LogContext when the caller does not supply them explicitly.
type SystemIdentityPort interface {
	Hostname() string
	UserName() string
	ProcessID() int
}

// osIdentity is the default SystemIdentityPort, backed by the standard
// library. It caches lookups once since they cannot change within a
// process lifetime.
type osIdentity struct {
	hostname string
	userName string
}

// NewSystemIdentity returns the default os/user backed SystemIdentityPort.
func NewSystemIdentity() SystemIdentityPort {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown-host"
	}
	name := "unknown-user"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	return &osIdentity{hostname: host, userName: name}
}

func (i *osIdentity) Hostname() string { return i.hostname }
func (i *osIdentity) UserName() string { return i.userName }
func (i *osIdentity) ProcessID() int   { return os.Getpid() }
