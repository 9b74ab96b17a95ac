package catalog

import "fmt"

// ConfigurationError reports a technology record that cannot be simulated.
// It is raised while a selection is adapted, before any state is touched.
type ConfigurationError struct {
	TechnologyID string
	Field        string
	Reason       string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("technology %q: %s", e.TechnologyID, e.Reason)
	}
	return fmt.Sprintf("technology %q: %s: %s", e.TechnologyID, e.Field, e.Reason)
}
