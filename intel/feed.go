package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"argus/core"
)

// FeedPuller is implemented by providers that can deliver an indicator
// bundle in one shot, materializing analyses without a user submission.
type FeedPuller interface {
	PullFeed(ctx context.Context) ([]core.AnalysisResult, error)
}

// otxIndicatorTypes maps OTX indicator type names to ours. Types with no
// mapping (email, CVE, YARA) are skipped.
var otxIndicatorTypes = map[string]core.IndicatorType{
	"IPv4":     core.IndicatorIP,
	"domain":   core.IndicatorDomain,
	"hostname": core.IndicatorDomain,
	"FileHash-MD5":    core.IndicatorHash,
	"FileHash-SHA1":   core.IndicatorHash,
	"FileHash-SHA256": core.IndicatorHash,
	"URL":      core.IndicatorURL,
}

// PullFeed fetches the newest subscribed pulses and materializes one
// analysis per mappable indicator. Verdict and score reflect only that the
// indicator appeared in a curated pulse; rule evaluation downstream decides
// whether that is alert-worthy.
func (p *AlienVaultOTXProvider) PullFeed(ctx context.Context) ([]core.AnalysisResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://otx.alienvault.com/api/v1/pulses/subscribed?limit=10", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-OTX-API-KEY", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query AlienVault OTX: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AlienVault OTX returned status %d", resp.StatusCode)
	}

	var feed struct {
		Results []struct {
			Name       string   `json:"name"`
			TLP        string   `json:"TLP"`
			Tags       []string `json:"tags"`
			Malware    []struct {
				Name string `json:"name"`
			} `json:"malware_families"`
			Adversary  string `json:"adversary"`
			Indicators []struct {
				Indicator string `json:"indicator"`
				Type      string `json:"type"`
			} `json:"indicators"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var results []core.AnalysisResult
	now := time.Now().UTC()

	for _, pulse := range feed.Results {
		var families []string
		for _, m := range pulse.Malware {
			families = append(families, m.Name)
		}
		var actors []string
		if pulse.Adversary != "" {
			actors = []string{pulse.Adversary}
		}

		for _, ind := range pulse.Indicators {
			t, ok := otxIndicatorTypes[ind.Type]
			if !ok {
				continue
			}
			results = append(results, core.AnalysisResult{
				IOC:             ind.Indicator,
				Type:            t,
				RiskScore:       60,
				Verdict:         core.VerdictMedium,
				Description:     fmt.Sprintf("Imported from OTX pulse %q", pulse.Name),
				ThreatActors:    actors,
				MalwareFamilies: families,
				ExternalIntel: []core.ExternalIntel{{
					Source:  p.Name(),
					Tags:    pulse.Tags,
					Details: fmt.Sprintf("Listed in pulse %q", pulse.Name),
				}},
				Timestamp: now,
			})
		}
	}

	return results, nil
}
