package intel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"argus/core"

	"golang.org/x/time/rate"
)

// VirusTotalProvider queries the VirusTotal v3 API
type VirusTotalProvider struct {
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewVirusTotalProvider creates a new VirusTotal provider
func NewVirusTotalProvider(fields map[string]string, limiter *rate.Limiter) Provider {
	return &VirusTotalProvider{
		apiKey:  fields["apiKey"],
		client:  newIntelHTTPClient(),
		limiter: limiter,
	}
}

func (p *VirusTotalProvider) ID() string   { return "vt" }
func (p *VirusTotalProvider) Name() string { return "VirusTotal" }

// Supports reports the indicator types VirusTotal handles
func (p *VirusTotalProvider) Supports(t core.IndicatorType) bool {
	switch t {
	case core.IndicatorIP, core.IndicatorDomain, core.IndicatorHash, core.IndicatorURL:
		return true
	}
	return false
}

func (p *VirusTotalProvider) RequiredFields() []string { return []string{"apiKey"} }

// Lookup checks an indicator against VirusTotal
func (p *VirusTotalProvider) Lookup(ctx context.Context, value string, t core.IndicatorType) (*core.ExternalIntel, error) {
	var endpoint string

	switch t {
	case core.IndicatorIP:
		endpoint = fmt.Sprintf("https://www.virustotal.com/api/v3/ip_addresses/%s", url.PathEscape(value))
	case core.IndicatorDomain:
		endpoint = fmt.Sprintf("https://www.virustotal.com/api/v3/domains/%s", url.PathEscape(value))
	case core.IndicatorHash:
		endpoint = fmt.Sprintf("https://www.virustotal.com/api/v3/files/%s", url.PathEscape(value))
	case core.IndicatorURL:
		// VT addresses URLs by the unpadded base64 of the URL itself
		id := strings.TrimRight(base64.URLEncoding.EncodeToString([]byte(value)), "=")
		endpoint = fmt.Sprintf("https://www.virustotal.com/api/v3/urls/%s", id)
	default:
		return nil, fmt.Errorf("unsupported indicator type: %s", t)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-apikey", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query VirusTotal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &core.ExternalIntel{
			Source:  p.Name(),
			Score:   floatPtr(0),
			Details: "No threat intelligence found",
		}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("VirusTotal returned status %d", resp.StatusCode)
	}

	var vtResponse struct {
		Data struct {
			Attributes struct {
				LastAnalysisStats struct {
					Malicious  int `json:"malicious"`
					Suspicious int `json:"suspicious"`
					Harmless   int `json:"harmless"`
					Undetected int `json:"undetected"`
				} `json:"last_analysis_stats"`
				Categories map[string]string `json:"categories"`
				Tags       []string          `json:"tags"`
				Reputation int               `json:"reputation"`
			} `json:"attributes"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&vtResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	attrs := vtResponse.Data.Attributes
	stats := attrs.LastAnalysisStats
	totalEngines := stats.Malicious + stats.Suspicious + stats.Harmless + stats.Undetected

	tags := make([]string, 0, len(attrs.Categories)+len(attrs.Tags))
	for _, cat := range attrs.Categories {
		tags = append(tags, cat)
	}
	tags = append(tags, attrs.Tags...)

	details := "Clean"
	if stats.Malicious > 0 {
		details = fmt.Sprintf("Detected as malicious by %d/%d engines", stats.Malicious, totalEngines)
	}

	return &core.ExternalIntel{
		Source:   p.Name(),
		Score:    floatPtr(float64(stats.Malicious)),
		MaxScore: floatPtr(float64(totalEngines)),
		Tags:     tags,
		Details:  details,
	}, nil
}

// AbuseIPDBProvider queries the AbuseIPDB v2 API (IP addresses only)
type AbuseIPDBProvider struct {
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewAbuseIPDBProvider creates a new AbuseIPDB provider
func NewAbuseIPDBProvider(fields map[string]string, limiter *rate.Limiter) Provider {
	return &AbuseIPDBProvider{
		apiKey:  fields["apiKey"],
		client:  newIntelHTTPClient(),
		limiter: limiter,
	}
}

func (p *AbuseIPDBProvider) ID() string   { return "abuseipdb" }
func (p *AbuseIPDBProvider) Name() string { return "AbuseIPDB" }

func (p *AbuseIPDBProvider) Supports(t core.IndicatorType) bool {
	return t == core.IndicatorIP
}

func (p *AbuseIPDBProvider) RequiredFields() []string { return []string{"apiKey"} }

// abuseCategoryNames maps AbuseIPDB report category IDs to display names
var abuseCategoryNames = map[int]string{
	3:  "Fraud",
	4:  "DDoS Attack",
	9:  "Hacking",
	10: "Spam",
	14: "Port Scan",
	18: "Brute Force",
	19: "Bad Web Bot",
	20: "Exploited Host",
	21: "Web App Attack",
	22: "SSH",
	23: "IoT Targeted",
}

// Lookup checks an IP against AbuseIPDB
func (p *AbuseIPDBProvider) Lookup(ctx context.Context, value string, t core.IndicatorType) (*core.ExternalIntel, error) {
	if t != core.IndicatorIP {
		return nil, fmt.Errorf("AbuseIPDB only supports IP addresses")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	endpoint := fmt.Sprintf(
		"https://api.abuseipdb.com/api/v2/check?ipAddress=%s&maxAgeInDays=90&verbose",
		url.QueryEscape(value))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query AbuseIPDB: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AbuseIPDB returned status %d", resp.StatusCode)
	}

	var abuseResponse struct {
		Data struct {
			AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
			UsageType            string `json:"usageType"`
			ISP                  string `json:"isp"`
			CountryCode          string `json:"countryCode"`
			IsWhitelisted        bool   `json:"isWhitelisted"`
			TotalReports         int    `json:"totalReports"`
			Reports              []struct {
				Categories []int `json:"categories"`
			} `json:"reports"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&abuseResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	data := abuseResponse.Data

	categorySet := make(map[string]bool)
	for _, report := range data.Reports {
		for _, catID := range report.Categories {
			if name, exists := abuseCategoryNames[catID]; exists {
				categorySet[name] = true
			}
		}
	}

	var tags []string
	for cat := range categorySet {
		tags = append(tags, cat)
	}
	if data.UsageType != "" {
		tags = append(tags, data.UsageType)
	}

	details := "Clean"
	if data.IsWhitelisted {
		details = "Whitelisted"
	} else if data.AbuseConfidenceScore > 0 {
		details = fmt.Sprintf("Abuse confidence score: %d%% (%d reports)",
			data.AbuseConfidenceScore, data.TotalReports)
	}
	if data.CountryCode != "" {
		details += fmt.Sprintf(", country: %s", data.CountryCode)
	}
	if data.ISP != "" {
		details += fmt.Sprintf(", ISP: %s", data.ISP)
	}

	return &core.ExternalIntel{
		Source:   p.Name(),
		Score:    floatPtr(float64(data.AbuseConfidenceScore)),
		MaxScore: floatPtr(100),
		Tags:     tags,
		Details:  details,
	}, nil
}

// AlienVaultOTXProvider queries AlienVault OTX pulse data
type AlienVaultOTXProvider struct {
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewAlienVaultOTXProvider creates a new AlienVault OTX provider
func NewAlienVaultOTXProvider(fields map[string]string, limiter *rate.Limiter) Provider {
	return &AlienVaultOTXProvider{
		apiKey:  fields["apiKey"],
		client:  newIntelHTTPClient(),
		limiter: limiter,
	}
}

func (p *AlienVaultOTXProvider) ID() string   { return "otx" }
func (p *AlienVaultOTXProvider) Name() string { return "AlienVault OTX" }

func (p *AlienVaultOTXProvider) Supports(t core.IndicatorType) bool {
	switch t {
	case core.IndicatorIP, core.IndicatorDomain, core.IndicatorHash, core.IndicatorURL:
		return true
	}
	return false
}

func (p *AlienVaultOTXProvider) RequiredFields() []string { return []string{"apiKey"} }

// Lookup checks an indicator against AlienVault OTX
func (p *AlienVaultOTXProvider) Lookup(ctx context.Context, value string, t core.IndicatorType) (*core.ExternalIntel, error) {
	var endpoint string

	switch t {
	case core.IndicatorIP:
		endpoint = fmt.Sprintf("https://otx.alienvault.com/api/v1/indicators/IPv4/%s/general", url.PathEscape(value))
	case core.IndicatorDomain:
		endpoint = fmt.Sprintf("https://otx.alienvault.com/api/v1/indicators/domain/%s/general", url.PathEscape(value))
	case core.IndicatorHash:
		endpoint = fmt.Sprintf("https://otx.alienvault.com/api/v1/indicators/file/%s/general", url.PathEscape(value))
	case core.IndicatorURL:
		endpoint = fmt.Sprintf("https://otx.alienvault.com/api/v1/indicators/url/%s/general", url.PathEscape(value))
	default:
		return nil, fmt.Errorf("unsupported indicator type: %s", t)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-OTX-API-KEY", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query AlienVault OTX: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &core.ExternalIntel{
			Source:  p.Name(),
			Score:   floatPtr(0),
			Details: "No threat intelligence found",
		}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AlienVault OTX returned status %d", resp.StatusCode)
	}

	var otxResponse struct {
		PulseInfo struct {
			Count  int `json:"count"`
			Pulses []struct {
				Name string   `json:"name"`
				Tags []string `json:"tags"`
			} `json:"pulses"`
		} `json:"pulse_info"`
		Reputation int `json:"reputation"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&otxResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	tagSet := make(map[string]bool)
	for _, pulse := range otxResponse.PulseInfo.Pulses {
		for _, tag := range pulse.Tags {
			tagSet[tag] = true
		}
	}
	var tags []string
	for tag := range tagSet {
		tags = append(tags, tag)
	}

	pulseCount := otxResponse.PulseInfo.Count
	details := "Clean"
	if pulseCount > 0 {
		details = fmt.Sprintf("Found in %d threat pulses", pulseCount)
		if otxResponse.Reputation < 0 {
			details += fmt.Sprintf(", reputation: %d", otxResponse.Reputation)
		}
	}

	return &core.ExternalIntel{
		Source:  p.Name(),
		Score:   floatPtr(float64(pulseCount)),
		Tags:    tags,
		Details: details,
	}, nil
}
