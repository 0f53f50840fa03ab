package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIndicatorType(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected IndicatorType
		ok       bool
	}{
		{"IPv4", "8.8.8.8", IndicatorIP, true},
		{"IPv6", "2001:db8::1", IndicatorIP, true},
		{"MD5", "d41d8cd98f00b204e9800998ecf8427e", IndicatorHash, true},
		{"SHA1", "da39a3ee5e6b4b0d3255bfef95601890afd80709", IndicatorHash, true},
		{"SHA256", strings.Repeat("ab", 32), IndicatorHash, true},
		{"URL http", "http://evil.example.com/payload", IndicatorURL, true},
		{"URL https", "https://evil.example.com", IndicatorURL, true},
		{"Domain", "evil.example.com", IndicatorDomain, true},
		{"Domain with hyphen", "my-site.co.uk", IndicatorDomain, true},
		{"Whitespace trimmed", "  8.8.8.8  ", IndicatorIP, true},
		{"Empty", "", "", false},
		{"Garbage", "not an indicator!!", "", false},
		{"Bare word", "localhost", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DetectIndicatorType(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}

func TestIndicatorType_IsValid(t *testing.T) {
	assert.True(t, IndicatorIP.IsValid())
	assert.True(t, IndicatorURL.IsValid())
	assert.False(t, IndicatorType("email").IsValid())
	assert.False(t, IndicatorType("").IsValid())
}
