package core

// IntegrationCategory groups integrations by what they connect to
type IntegrationCategory string

const (
	CategoryIntelProvider IntegrationCategory = "Intel Provider"
	CategorySIEM          IntegrationCategory = "SIEM"
	CategoryNotification  IntegrationCategory = "Notification"
	CategoryScanner       IntegrationCategory = "Scanner"
)

// IntegrationStatus is the last observed health of an integration
type IntegrationStatus string

const (
	IntegrationOperational IntegrationStatus = "operational"
	IntegrationDegraded    IntegrationStatus = "degraded"
	IntegrationMaintenance IntegrationStatus = "maintenance"
	IntegrationUnknown     IntegrationStatus = "unknown"
)

// IntegrationField is one credential or parameter in an integration's
// configuration schema. Values are stored in plaintext in the local store;
// this is an accepted risk of the local-only deployment model.
type IntegrationField struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder,omitempty"`
}

// IntegrationConfig is one provider's connection configuration
type IntegrationConfig struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Category    IntegrationCategory `json:"category"`
	Description string              `json:"description,omitempty"`
	Enabled     bool                `json:"enabled"`
	IconName    string              `json:"icon_name,omitempty"`
	Fields      []IntegrationField  `json:"fields,omitempty"`
	Status      IntegrationStatus   `json:"status"`
	LastSync    string              `json:"last_sync,omitempty"`
}

// FieldValue returns the configured value for a field key, empty if unset
func (c *IntegrationConfig) FieldValue(key string) string {
	for _, f := range c.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// FieldValues flattens the field schema into a key/value map for provider
// construction.
func (c *IntegrationConfig) FieldValues() map[string]string {
	m := make(map[string]string, len(c.Fields))
	for _, f := range c.Fields {
		m[f.Key] = f.Value
	}
	return m
}
