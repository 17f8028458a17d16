package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/voxscribe/component"
)

// Setting is one line of the configuration block. Values must already be
// masked by the caller.
type Setting struct {
	Key   string
	Value string
}

// Summary tracks and prints the startup summary.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	settings        []Setting
}

// NewSummary creates a summary for the service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// AddSetting appends a configuration line.
func (s *Summary) AddSetting(key, value string) {
	s.settings = append(s.settings, Setting{Key: key, Value: value})
}

// Settings returns the recorded configuration lines.
func (s *Summary) Settings() []Setting {
	return s.settings
}

type backendInfo struct {
	name    string
	kind    string
	details string
	port    int
}

// collect reads descriptions and routes from the registered components.
func collect(registry *component.Registry) ([]backendInfo, []component.Route) {
	var (
		backends []backendInfo
		routes   []component.Route
	)
	if registry == nil {
		return nil, nil
	}
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			name := desc.Name
			if name == "" {
				name = c.Name()
			}
			backends = append(backends, backendInfo{name: name, kind: desc.Type, details: desc.Details, port: desc.Port})
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}
	return backends, routes
}

// Display writes the summary to w, including live health from registry.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	backends, routes := collect(registry)

	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.settings) > 0 {
		fmt.Fprintf(w, "\n⚙️  Configuration\n")
		for i, st := range s.settings {
			fmt.Fprintf(w, "   %s %s: %s\n", treePrefix(i, len(s.settings)), st.Key, st.Value)
		}
	}

	if len(backends) > 0 {
		fmt.Fprintf(w, "\n📊 Components\n")
		for i, b := range backends {
			details := b.details
			if b.port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, b.port)
			}
			fmt.Fprintf(w, "   %s %s [%s] %s\n", treePrefix(i, len(backends)), b.name, b.kind, details)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		results := registry.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			healthy := 0
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				if h.Status == component.StatusHealthy {
					healthy++
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
			if healthy == len(results) {
				fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(results))
			} else {
				fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(results))
			}
		}
	}

	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
