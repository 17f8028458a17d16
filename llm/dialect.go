package llm

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kbukum/voxscribe/httpclient"
)

// Dialect maps the universal types to one provider's HTTP API.
type Dialect interface {
	// Name returns the dialect identifier, e.g. "anthropic".
	Name() string
	// DefaultBaseURL is used when the config has none.
	DefaultBaseURL() string
	// ChatPath is the completion endpoint, e.g. "/v1/messages".
	ChatPath() string
	// HealthPath is a cheap endpoint to probe. Empty means none.
	HealthPath() string
	// Auth returns how apiKey is presented.
	Auth(apiKey string) *httpclient.AuthConfig
	// Headers are fixed headers the provider requires.
	Headers() map[string]string
	// BuildRequest returns the JSON request body.
	BuildRequest(req CompletionRequest) (any, error)
	// ParseResponse decodes the provider's JSON response.
	ParseResponse(body []byte) (*CompletionResponse, error)
}

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect makes d available to New under name. Dialect packages
// call it from init.
func RegisterDialect(name string, d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[name] = d
}

// GetDialect returns the dialect registered under name.
func GetDialect(name string) (Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown dialect %q (forgot to import driver?)", name)
	}
	return d, nil
}

// Dialects returns the registered dialect names, sorted.
func Dialects() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
