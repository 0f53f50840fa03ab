package classify

import (
	"context"
	"testing"

	"argus/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		hint     core.IndicatorType
		wantType core.IndicatorType
		score    int
		verdict  core.Verdict
	}{
		{
			name:     "private IP scores near zero",
			input:    "192.168.1.10",
			wantType: core.IndicatorIP,
			score:    2,
			verdict:  core.VerdictSafe,
		},
		{
			name:     "loopback treated like private",
			input:    "127.0.0.1",
			wantType: core.IndicatorIP,
			score:    2,
			verdict:  core.VerdictSafe,
		},
		{
			name:     "public IP needs external intel",
			input:    "45.33.32.156",
			wantType: core.IndicatorIP,
			score:    25,
			verdict:  core.VerdictLow,
		},
		{
			name:     "file hash is suspicious by default",
			input:    "d41d8cd98f00b204e9800998ecf8427e",
			wantType: core.IndicatorHash,
			score:    40,
			verdict:  core.VerdictMedium,
		},
		{
			name:     "plain URL",
			input:    "https://example.com/download/update.exe",
			wantType: core.IndicatorURL,
			score:    35,
			verdict:  core.VerdictMedium,
		},
		{
			name:     "URL with userinfo obfuscation",
			input:    "https://login@evil.example/verify",
			wantType: core.IndicatorURL,
			score:    70,
			verdict:  core.VerdictHigh,
		},
		{
			name:     "plain domain",
			input:    "example.com",
			wantType: core.IndicatorDomain,
			score:    20,
			verdict:  core.VerdictLow,
		},
		{
			name:     "punycode domain raised to medium",
			input:    "xn--pple-43d.com",
			hint:     core.IndicatorDomain,
			wantType: core.IndicatorDomain,
			score:    55,
			verdict:  core.VerdictMedium,
		},
		{
			name:     "deeply nested domain raised to medium",
			input:    "secure.login.account.example.com",
			wantType: core.IndicatorDomain,
			score:    55,
			verdict:  core.VerdictMedium,
		},
	}

	c := NewHeuristicClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := c.Classify(context.Background(), tt.input, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.input, result.IOC)
			assert.Equal(t, tt.wantType, result.Type)
			assert.Equal(t, tt.score, result.RiskScore)
			assert.Equal(t, tt.verdict, result.Verdict)
			assert.False(t, result.Timestamp.IsZero())
		})
	}
}

func TestHeuristicClassifier_Classify_EmptyInput(t *testing.T) {
	c := NewHeuristicClassifier()

	_, err := c.Classify(context.Background(), "   ", "")
	require.Error(t, err)

	var cErr *core.ClassificationError
	assert.ErrorAs(t, err, &cErr)
}

func TestHeuristicClassifier_Classify_HintOverridesDetection(t *testing.T) {
	c := NewHeuristicClassifier()

	// "example.com" would auto-detect as a domain; an explicit URL hint wins.
	result, err := c.Classify(context.Background(), "example.com", core.IndicatorURL)
	require.NoError(t, err)
	assert.Equal(t, core.IndicatorURL, result.Type)
}
