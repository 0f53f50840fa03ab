package service

import "argus/core"

// DefaultCatalog returns the built-in integration entries. IDs for intel
// providers double as registry slugs; entries in other categories are
// configuration-only.
func DefaultCatalog() []core.IntegrationConfig {
	return []core.IntegrationConfig{
		{
			ID:          "vt",
			Name:        "VirusTotal",
			Category:    core.CategoryIntelProvider,
			Description: "File, URL, domain and IP reputation from 70+ antivirus engines",
			IconName:    "virustotal",
			Status:      core.IntegrationUnknown,
			Fields: []core.IntegrationField{
				{Key: "apiKey", Label: "API Key", Type: "password", Placeholder: "VirusTotal API key"},
			},
		},
		{
			ID:          "abuseipdb",
			Name:        "AbuseIPDB",
			Category:    core.CategoryIntelProvider,
			Description: "Crowdsourced IP abuse reports and confidence scoring",
			IconName:    "abuseipdb",
			Status:      core.IntegrationUnknown,
			Fields: []core.IntegrationField{
				{Key: "apiKey", Label: "API Key", Type: "password", Placeholder: "AbuseIPDB API key"},
			},
		},
		{
			ID:          "otx",
			Name:        "AlienVault OTX",
			Category:    core.CategoryIntelProvider,
			Description: "Open Threat Exchange pulses and indicator telemetry",
			IconName:    "otx",
			Status:      core.IntegrationUnknown,
			Fields: []core.IntegrationField{
				{Key: "apiKey", Label: "API Key", Type: "password", Placeholder: "OTX API key"},
			},
		},
		{
			ID:          "splunk",
			Name:        "Splunk",
			Category:    core.CategorySIEM,
			Description: "Forward analyses and alerts to a Splunk HTTP Event Collector",
			IconName:    "splunk",
			Status:      core.IntegrationUnknown,
			Fields: []core.IntegrationField{
				{Key: "url", Label: "HEC Endpoint", Type: "text", Placeholder: "https://splunk.example.com:8088"},
				{Key: "token", Label: "HEC Token", Type: "password"},
			},
		},
		{
			ID:          "slack",
			Name:        "Slack",
			Category:    core.CategoryNotification,
			Description: "Post triggered alerts to a Slack channel",
			IconName:    "slack",
			Status:      core.IntegrationUnknown,
			Fields: []core.IntegrationField{
				{Key: "webhookUrl", Label: "Webhook URL", Type: "password", Placeholder: "https://hooks.slack.com/services/..."},
			},
		},
		{
			ID:          "urlscan",
			Name:        "urlscan.io",
			Category:    core.CategoryScanner,
			Description: "Submit URLs for sandboxed scanning and screenshots",
			IconName:    "urlscan",
			Status:      core.IntegrationUnknown,
			Fields: []core.IntegrationField{
				{Key: "apiKey", Label: "API Key", Type: "password"},
			},
		},
	}
}
