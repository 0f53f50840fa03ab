package intel

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"argus/core"

	"golang.org/x/time/rate"
)

// Provider is one external threat-intelligence source. Implementations
// declare which indicator types they support and which configuration fields
// they require; the orchestrator never calls a provider outside that
// declaration.
type Provider interface {
	// ID is the stable integration slug (e.g. "vt")
	ID() string
	// Name is the display name recorded as ExternalIntel.Source
	Name() string
	// Supports reports whether the provider handles this indicator type
	Supports(t core.IndicatorType) bool
	// RequiredFields lists configuration keys that must be non-empty
	// before the provider is called
	RequiredFields() []string
	// Lookup queries the provider for one indicator. A non-nil error is
	// isolated by the orchestrator into an error entry; it never fails
	// the enclosing enrichment.
	Lookup(ctx context.Context, value string, t core.IndicatorType) (*core.ExternalIntel, error)
}

// Constructor builds a provider from integration field values. The limiter
// is shared across calls so reconfiguring credentials does not reset rate
// accounting.
type Constructor func(fields map[string]string, limiter *rate.Limiter) Provider

// registration pairs a constructor with its provider's steady-state rate
type registration struct {
	construct Constructor
	limit     rate.Limit
	burst     int
}

// Registry binds integration slugs to provider constructors
type Registry struct {
	entries map[string]registration
	order   []string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRegistry creates a registry with the built-in providers registered
func NewRegistry() *Registry {
	r := &Registry{
		entries:  make(map[string]registration),
		limiters: make(map[string]*rate.Limiter),
	}

	// Public API tiers: VirusTotal allows 4 requests/minute, AbuseIPDB is
	// generous enough that 1/sec stays well clear, OTX has no published
	// hard limit.
	r.RegisterProvider("vt", NewVirusTotalProvider, rate.Every(15*time.Second), 4)
	r.RegisterProvider("abuseipdb", NewAbuseIPDBProvider, rate.Limit(1), 5)
	r.RegisterProvider("otx", NewAlienVaultOTXProvider, rate.Limit(2), 10)

	return r
}

// RegisterProvider adds a provider constructor under an integration slug
func (r *Registry) RegisterProvider(slug string, c Constructor, limit rate.Limit, burst int) {
	if _, exists := r.entries[slug]; !exists {
		r.order = append(r.order, slug)
	}
	r.entries[slug] = registration{construct: c, limit: limit, burst: burst}
}

// Resolve returns a provider for an integration slug, or false when the
// slug has no intel provider implementation (custom integration entries).
func (r *Registry) Resolve(slug string, fields map[string]string) (Provider, bool) {
	reg, ok := r.entries[slug]
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	limiter, ok := r.limiters[slug]
	if !ok {
		limiter = rate.NewLimiter(reg.limit, reg.burst)
		r.limiters[slug] = limiter
	}
	r.mu.Unlock()

	return reg.construct(fields, limiter), true
}

// newIntelHTTPClient builds the HTTP client shared by all providers,
// matching the transport policy used for every outbound intel call.
func newIntelHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// floatPtr is a small helper for optional score fields
func floatPtr(f float64) *float64 {
	return &f
}
