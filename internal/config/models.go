package config

// AllModels is the full catalog of generation models this service knows how
// to drive.
var AllModels = []string{
	"gpt-4o-mini-2024-07-18",
	"gpt-4.1-mini-2025-04-14",
	"gpt-3.5-turbo-0125",
	"o4-mini-2025-04-16",
	"o3-2025-04-16",
	"gpt-4.1-2025-04-14",
	"gpt-4o-2024-08-06",
}

// modelPriority orders the catalog from most to least capable; the default
// model is the highest-priority one that is available in this deployment.
var modelPriority = []string{
	"gpt-4.1-2025-04-14",
	"o3-2025-04-16",
	"gpt-4o-2024-08-06",
	"o4-mini-2025-04-16",
	"gpt-4.1-mini-2025-04-14",
	"gpt-4o-mini-2024-07-18",
	"gpt-3.5-turbo-0125",
}

// KnownModel reports whether name is in the catalog.
func KnownModel(name string) bool {
	for _, m := range AllModels {
		if m == name {
			return true
		}
	}
	return false
}

// AvailableModels returns the models this deployment may use: the configured
// subset when one is set, otherwise the full catalog.
func (c ModelsConfig) AvailableModels() []string {
	if len(c.Available) == 0 {
		return AllModels
	}
	return c.Available
}

// DefaultModel returns the most capable available model.
func (c ModelsConfig) DefaultModel() string {
	available := c.AvailableModels()
	for _, m := range modelPriority {
		for _, a := range available {
			if m == a {
				return m
			}
		}
	}
	return available[0]
}

// ResolveModel returns preferred if it is available, otherwise the default.
// Unknown names never fail a request; they silently fall back.
func (c ModelsConfig) ResolveModel(preferred string) string {
	for _, a := range c.AvailableModels() {
		if a == preferred {
			return preferred
		}
	}
	return c.DefaultModel()
}
