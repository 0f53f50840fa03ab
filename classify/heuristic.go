package classify

import (
	"context"
	"net"
	"strings"
	"time"

	"argus/core"
)

// HeuristicClassifier produces a deterministic assessment from the
// indicator's shape alone. It backs offline CLI runs and tests, where model
// access is unavailable or undesirable.
type HeuristicClassifier struct{}

// NewHeuristicClassifier creates the offline classifier
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

// Classify scores the indicator with shape-based heuristics
func (c *HeuristicClassifier) Classify(_ context.Context, input string, typeHint core.IndicatorType) (*core.AnalysisResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &core.ClassificationError{Message: "empty input"}
	}

	indicatorType, err := resolveType(input, typeHint)
	if err != nil {
		return nil, err
	}

	result := &core.AnalysisResult{
		IOC:       input,
		Type:      indicatorType,
		RiskScore: 10,
		Verdict:   core.VerdictSafe,
		Timestamp: time.Now().UTC(),
	}

	switch indicatorType {
	case core.IndicatorIP:
		ip := net.ParseIP(input)
		if ip != nil && (ip.IsPrivate() || ip.IsLoopback()) {
			result.RiskScore = 2
			result.Description = "Private or loopback address; not routable on the public internet."
		} else {
			result.RiskScore = 25
			result.Verdict = core.VerdictLow
			result.Description = "Public IP address with no local reputation data; external intel required for a confident verdict."
			result.MitigationSteps = []string{"Review connection logs involving this address"}
		}
	case core.IndicatorHash:
		result.RiskScore = 40
		result.Verdict = core.VerdictMedium
		result.Description = "File hash submitted without local sample context; treat as suspicious until matched against intel sources."
		result.MitigationSteps = []string{"Search endpoint telemetry for this hash", "Submit the sample to a sandbox if available"}
	case core.IndicatorURL:
		result.RiskScore = 35
		result.Verdict = core.VerdictMedium
		result.Description = "URL submitted for review; path and host reputation unknown locally."
		result.MitigationSteps = []string{"Do not open the URL outside an isolated environment"}
		if strings.Contains(input, "@") || strings.Count(input, "//") > 1 {
			result.RiskScore = 70
			result.Verdict = core.VerdictHigh
			result.Description = "URL uses obfuscation patterns commonly seen in phishing links."
		}
	case core.IndicatorDomain:
		result.RiskScore = 20
		result.Verdict = core.VerdictLow
		result.Description = "Domain submitted for review; no local reputation data."
		if strings.Count(input, ".") >= 3 || strings.Contains(input, "xn--") {
			result.RiskScore = 55
			result.Verdict = core.VerdictMedium
			result.Description = "Deeply nested or punycode domain; frequently associated with phishing infrastructure."
		}
	}

	return result, nil
}
