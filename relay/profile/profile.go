package profile

import (
	"sort"

	"github.com/gamenight/planner-api/common/config"
)

// ModelProfile describes one upstream model the gateway is willing to serve.
type ModelProfile struct {
	// APIPath is the upstream model identifier used in request URLs and when
	// creating cached content.
	APIPath string
	// InputTokenLimit is the model's context window in tokens.
	InputTokenLimit int
	// SupportsCaching reports whether upstream cached content may be used.
	SupportsCaching bool
}

// Registry is an immutable map of client-visible model names to profiles,
// built once at startup and injected wherever model resolution is needed.
type Registry struct {
	profiles     map[string]ModelProfile
	defaultLimit int
}

// NewRegistry returns the default model registry.
func NewRegistry() *Registry {
	return &Registry{
		defaultLimit: config.DefaultInputTokenLimit,
		profiles: map[string]ModelProfile{
			"gemini-1.5-pro": {
				APIPath:         "models/gemini-1.5-pro-latest",
				InputTokenLimit: 1_000_000,
				SupportsCaching: false,
			},
			"gemini-1.5-flash": {
				APIPath:         "models/gemini-1.5-flash-latest",
				InputTokenLimit: 1_000_000,
				SupportsCaching: true,
			},
			"gemini-2.0-flash": {
				APIPath:         "models/gemini-2.0-flash",
				InputTokenLimit: 1_000_000,
				SupportsCaching: true,
			},
		},
	}
}

// NewRegistryWithProfiles builds a registry from an explicit profile map,
// mainly for tests.
func NewRegistryWithProfiles(profiles map[string]ModelProfile) *Registry {
	return &Registry{profiles: profiles, defaultLimit: config.DefaultInputTokenLimit}
}

// Get resolves a client-visible model name.
func (r *Registry) Get(name string) (ModelProfile, bool) {
	p, ok := r.profiles[name]
	if !ok {
		return ModelProfile{}, false
	}
	if p.InputTokenLimit <= 0 {
		p.InputTokenLimit = r.defaultLimit
	}
	return p, true
}

// Names returns the sorted list of valid model names, used in error messages.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
