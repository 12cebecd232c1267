package detection

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds the detectors known to this process, keyed by platform.
type Registry struct {
	detectors map[string]Detector
}

// NewRegistry creates a registry. A later detector replaces an earlier one
// with the same platform name.
func NewRegistry(detectors ...Detector) *Registry {
	r := &Registry{detectors: make(map[string]Detector, len(detectors))}
	for _, d := range detectors {
		r.detectors[strings.ToLower(d.PlatformName())] = d
	}
	return r
}

// Get returns the detector for a platform, case-insensitively.
func (r *Registry) Get(platform string) (Detector, error) {
	d, ok := r.detectors[strings.ToLower(platform)]
	if !ok {
		return nil, fmt.Errorf("no detector registered for platform %q", platform)
	}
	return d, nil
}

// Platforms returns the registered platform names in sorted order.
func (r *Registry) Platforms() []string {
	names := make([]string, 0, len(r.detectors))
	for _, d := range r.detectors {
		names = append(names, d.PlatformName())
	}
	sort.Strings(names)
	return names
}

// Installed returns the detectors whose platform client is present.
func (r *Registry) Installed() []Detector {
	var installed []Detector
	for _, name := range r.Platforms() {
		d := r.detectors[strings.ToLower(name)]
		if d.IsInstalled() {
			installed = append(installed, d)
		}
	}
	return installed
}
