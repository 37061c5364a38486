// Package trust implements the service-to-service credential plane.
//
// Every internal surface is guarded by a per-service shared key carried in
// the X-Service-Key header. Keys are provisioned via environment variables
// (<NAME>_SERVICE_API_KEY) and compared in constant time. A Keyring can be
// narrowed to an allowlist of caller services per guarded surface.
package trust

import (
	"crypto/subtle"
	"net/http"
	"sort"
	"strings"

	"cardduel/internal/platform/config"
	perr "cardduel/internal/platform/errors"
)

// Header carries the caller's service credential
const Header = "X-Service-Key"

// Keyring holds the provisioned per-service keys
type Keyring struct {
	keys map[string]string // service name -> key
}

// New builds a Keyring from an explicit service->key map
// Empty keys are dropped
func New(keys map[string]string) *Keyring {
	kr := &Keyring{keys: make(map[string]string, len(keys))}
	for name, key := range keys {
		if name == "" || key == "" {
			continue
		}
		kr.keys[strings.ToLower(name)] = key
	}
	return kr
}

// FromConfig reads <NAME>_SERVICE_API_KEY for each named service
// Missing keys panic: a service booting without its peers' credentials
// cannot authenticate anything and must not come up half-trusted
func FromConfig(cfg config.Conf, services ...string) *Keyring {
	keys := make(map[string]string, len(services))
	for _, name := range services {
		envKey := strings.ToUpper(name) + "_SERVICE_API_KEY"
		keys[name] = cfg.MustString(envKey)
	}
	return New(keys)
}

// Services lists the provisioned service names, sorted
func (k *Keyring) Services() []string {
	out := make([]string, 0, len(k.keys))
	for name := range k.keys {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Key returns the provisioned key for a service, for outbound calls
func (k *Keyring) Key(service string) (string, bool) {
	key, ok := k.keys[strings.ToLower(service)]
	return key, ok
}

// Identify matches a presented key against every provisioned service
// All entries are compared so timing does not reveal which name matched
func (k *Keyring) Identify(presented string) (string, bool) {
	if presented == "" {
		return "", false
	}
	matched := ""
	for name, key := range k.keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(presented)) == 1 {
			matched = name
		}
	}
	return matched, matched != ""
}

// Verify implements the middleware ServicePort over the whole ring
func (k *Keyring) Verify(r *http.Request) (string, error) {
	return k.verify(r, nil)
}

// Allow narrows the ring to an allowlist of caller services
func (k *Keyring) Allow(services ...string) *Guard {
	allowed := make(map[string]bool, len(services))
	for _, s := range services {
		allowed[strings.ToLower(s)] = true
	}
	return &Guard{ring: k, allowed: allowed}
}

func (k *Keyring) verify(r *http.Request, allowed map[string]bool) (string, error) {
	presented := r.Header.Get(Header)
	if presented == "" {
		return "", perr.Unauthorizedf("missing service credential")
	}
	name, ok := k.Identify(presented)
	if !ok {
		return "", perr.Unauthorizedf("unrecognized service credential")
	}
	if allowed != nil && !allowed[name] {
		return "", perr.Forbiddenf("service %q is not allowed on this surface", name)
	}
	return name, nil
}

// Guard is a Keyring restricted to specific caller services
type Guard struct {
	ring    *Keyring
	allowed map[string]bool
}

// Verify implements the middleware ServicePort for the allowlisted surface
func (g *Guard) Verify(r *http.Request) (string, error) {
	return g.ring.verify(r, g.allowed)
}
