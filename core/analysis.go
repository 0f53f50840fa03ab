package core

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// IndicatorType represents the kind of indicator being analyzed
type IndicatorType string

const (
	IndicatorIP     IndicatorType = "IP"
	IndicatorDomain IndicatorType = "Domain"
	IndicatorHash   IndicatorType = "Hash"
	IndicatorURL    IndicatorType = "URL"
)

// IsValid reports whether the indicator type is one of the supported kinds
func (t IndicatorType) IsValid() bool {
	switch t {
	case IndicatorIP, IndicatorDomain, IndicatorHash, IndicatorURL:
		return true
	}
	return false
}

// Verdict is the coarse severity classification assigned by the classifier.
// It correlates with RiskScore but is set independently.
type Verdict string

const (
	VerdictCritical Verdict = "CRITICAL"
	VerdictHigh     Verdict = "HIGH"
	VerdictMedium   Verdict = "MEDIUM"
	VerdictLow      Verdict = "LOW"
	VerdictSafe     Verdict = "SAFE"
)

// IsValid reports whether the verdict is a known value
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictCritical, VerdictHigh, VerdictMedium, VerdictLow, VerdictSafe:
		return true
	}
	return false
}

// TechnicalDetails holds optional low-level attributes of an indicator.
// Any subset may be absent.
type TechnicalDetails struct {
	ASN       string `json:"asn,omitempty"`
	Registrar string `json:"registrar,omitempty"`
	OpenPorts []int  `json:"open_ports,omitempty"`
	LastSeen  string `json:"last_seen,omitempty"`
}

// ThreatActor is a knowledgebase profile for a tracked adversary group
type ThreatActor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Origin      string   `json:"origin,omitempty"`
	Motivation  string   `json:"motivation,omitempty"`
	Description string   `json:"description,omitempty"`
	Targets     []string `json:"targets,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	FirstSeen   string   `json:"first_seen,omitempty"`
	Active      bool     `json:"active"`
}

// ExternalIntel is one provider's contribution to an analysis.
// Error is set iff the provider call failed; the entry is still recorded so
// partial failure is visible in the result rather than silently dropped.
type ExternalIntel struct {
	Source   string   `json:"source"`
	Score    *float64 `json:"score,omitempty"`
	MaxScore *float64 `json:"max_score,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Details  string   `json:"details,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// AnalysisResult is one enrichment outcome for one indicator
type AnalysisResult struct {
	ID                 string           `json:"id"`
	IOC                string           `json:"ioc"`
	Type               IndicatorType    `json:"type"`
	RiskScore          int              `json:"risk_score"`
	Verdict            Verdict          `json:"verdict"`
	Description        string           `json:"description"`
	MitigationSteps    []string         `json:"mitigation_steps,omitempty"`
	TechnicalDetails   TechnicalDetails `json:"technical_details"`
	ThreatActors       []string         `json:"threat_actors,omitempty"`
	ThreatActorDetails []ThreatActor    `json:"threat_actor_details,omitempty"`
	MalwareFamilies    []string         `json:"malware_families,omitempty"`
	Geolocation        string           `json:"geolocation,omitempty"`
	ExternalIntel      []ExternalIntel  `json:"external_intel,omitempty"`
	Timestamp          time.Time        `json:"timestamp"`
}

var (
	md5Re    = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)
	sha1Re   = regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	sha256Re = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
	domainRe = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)
)

// DetectIndicatorType infers the indicator type from the raw input string.
// Hash patterns are checked before domains since a hex string never contains
// a dot; URL detection requires an explicit scheme.
func DetectIndicatorType(input string) (IndicatorType, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}

	if ip := net.ParseIP(s); ip != nil {
		return IndicatorIP, true
	}

	if md5Re.MatchString(s) || sha1Re.MatchString(s) || sha256Re.MatchString(s) {
		return IndicatorHash, true
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			return IndicatorURL, true
		}
	}

	if domainRe.MatchString(s) {
		return IndicatorDomain, true
	}

	return "", false
}
