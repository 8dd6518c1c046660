// Package environment prepares the process environment Composer expects and
// scopes working-directory changes.
//
// # Environment Plan
//
// [Plan] is a pure function from a [Snapshot] of the environment to the
// variables that need setting:
//
//   - COMPOSER_HOME falls back to a default when neither HOME nor
//     COMPOSER_HOME is set, since Composer refuses to start without one.
//   - SS_OUTBOUND_PROXY and SS_OUTBOUND_PROXY_PORT are translated into
//     CGI_HTTP_PROXY=tcp://host:port for Composer's HTTP layer.
//
// [Apply] executes a plan once, at bootstrap. Variables it sets are left in
// place for the rest of the process.
//
// # Working Directory
//
// [InDir] runs a function with the working directory switched and restores
// the original directory on every exit path.
package environment

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

// Variable names read or written by the plan.
const (
	Home         = "HOME"
	ComposerHome = "COMPOSER_HOME"
	ProxyHost    = "SS_OUTBOUND_PROXY"
	ProxyPort    = "SS_OUTBOUND_PROXY_PORT"
	CGIProxy     = "CGI_HTTP_PROXY"

	// ComposerManifest and ComposerVendorDir select the manifest file and
	// vendor directory, as they do for Composer itself.
	ComposerManifest  = "COMPOSER"
	ComposerVendorDir = "COMPOSER_VENDOR_DIR"
)

// DefaultComposerHome is the COMPOSER_HOME used when no home is configured.
const DefaultComposerHome = "/tmp"

// Snapshot is a point-in-time copy of environment variables.
type Snapshot map[string]string

// FromOS snapshots the current process environment.
func FromOS() Snapshot {
	return Parse(os.Environ())
}

// Parse builds a snapshot from KEY=VALUE pairs. Later duplicates win.
func Parse(environ []string) Snapshot {
	s := make(Snapshot, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		s[k] = v
	}
	return s
}

// Get returns the value of key, or "" when unset.
func (s Snapshot) Get(key string) string { return s[key] }

// Set reports whether key holds a value other than "" or "0". Hosts treat
// both as unset when deciding what Composer needs.
func (s Snapshot) Set(key string) bool {
	v := s[key]
	return v != "" && v != "0"
}

// With returns a copy of s with key set to value when key is unset or empty.
func (s Snapshot) With(key, value string) Snapshot {
	out := maps.Clone(s)
	if out == nil {
		out = Snapshot{}
	}
	if out[key] == "" && value != "" {
		out[key] = value
	}
	return out
}

// Defaults are the values a plan injects when the environment lacks them.
type Defaults struct {
	ComposerHome string // Default DefaultComposerHome
}

// Plan returns the variables that must be set for Composer to run in an
// environment like s. It does not modify anything.
func Plan(s Snapshot, d Defaults) map[string]string {
	changes := make(map[string]string)

	if !s.Set(Home) && !s.Set(ComposerHome) {
		home := d.ComposerHome
		if home == "" {
			home = DefaultComposerHome
		}
		changes[ComposerHome] = home
	}

	if s.Set(ProxyHost) && s.Set(ProxyPort) {
		changes[CGIProxy] = fmt.Sprintf("tcp://%s:%d", s.Get(ProxyHost), leadingInt(s.Get(ProxyPort)))
	}

	return changes
}

// Apply sets every variable in changes through setenv, in key order.
// A nil setenv means os.Setenv.
func Apply(changes map[string]string, setenv func(key, value string) error) error {
	if setenv == nil {
		setenv = os.Setenv
	}
	for _, k := range slices.Sorted(maps.Keys(changes)) {
		if err := setenv(k, changes[k]); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// leadingInt parses the optionally signed integer prefix of s and returns 0
// when there is none, so "8080" is 8080, "3128/tcp" is 3128 and "http" is 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<31 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}
