package classify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"argus/core"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

// LLMClassifier calls an OpenAI-compatible chat-completions endpoint and
// parses the model's JSON reply into an analysis record. The model is asked
// for strict JSON; the reply is schema-validated before decoding.
type LLMClassifier struct {
	baseURL  string
	apiKey   string
	settings Settings
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewLLMClassifier creates a classifier against an OpenAI-compatible API
func NewLLMClassifier(baseURL, apiKey string, settings Settings, logger *zap.SugaredLogger) *LLMClassifier {
	return &LLMClassifier{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		settings: settings,
		client: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Classify submits the indicator to the model and decodes its assessment
func (c *LLMClassifier) Classify(ctx context.Context, input string, typeHint core.IndicatorType) (*core.AnalysisResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &core.ClassificationError{Message: "empty input"}
	}

	indicatorType, err := resolveType(input, typeHint)
	if err != nil {
		return nil, err
	}

	reqBody := chatRequest{
		Model: c.settings.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt()},
			{Role: "user", Content: fmt.Sprintf("Indicator: %s\nType: %s", input, indicatorType)},
		},
		Temperature: c.settings.Temperature,
		MaxTokens:   c.settings.MaxTokens,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &core.ClassificationError{Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &core.ClassificationError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &core.ClassificationError{Message: "model request failed", Err: err}
	}
	defer resp.Body.Close()

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, &core.ClassificationError{Message: "failed to decode model response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("model returned status %d", resp.StatusCode)
		if chat.Error != nil && chat.Error.Message != "" {
			msg = chat.Error.Message
		}
		return nil, &core.ClassificationError{Message: msg}
	}

	if len(chat.Choices) == 0 {
		return nil, &core.ClassificationError{Message: "model returned no choices"}
	}

	content := stripCodeFence(chat.Choices[0].Message.Content)

	result, err := decodeResult(content)
	if err != nil {
		return nil, err
	}

	// The model's echo of the indicator is advisory; the submitted value
	// and resolved type are authoritative.
	result.IOC = input
	result.Type = indicatorType
	result.Timestamp = time.Now().UTC()

	return result, nil
}

func (c *LLMClassifier) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a threat intelligence analyst. Assess the given indicator of compromise ")
	b.WriteString("and respond with a single JSON object containing: ioc, type, risk_score (0-100), ")
	b.WriteString("verdict (CRITICAL|HIGH|MEDIUM|LOW|SAFE), description, mitigation_steps, ")
	b.WriteString("technical_details {asn, registrar, open_ports, last_seen}, threat_actors, ")
	b.WriteString("malware_families, geolocation. Respond with JSON only, no prose.")
	if c.settings.Language != "" {
		fmt.Fprintf(&b, " Write free-text fields in %s.", c.settings.Language)
	}
	if c.settings.DetailLevel != "" {
		fmt.Fprintf(&b, " Detail level: %s.", c.settings.DetailLevel)
	}
	if c.settings.RiskTolerance != "" {
		fmt.Fprintf(&b, " Risk tolerance: %s.", c.settings.RiskTolerance)
	}
	if c.settings.CustomInstructions != "" {
		b.WriteString(" " + c.settings.CustomInstructions)
	}
	return b.String()
}

// decodeResult validates the model's JSON against the result schema before
// unmarshalling it.
func decodeResult(content string) (*core.AnalysisResult, error) {
	schemaLoader := gojsonschema.NewStringLoader(resultSchema)
	documentLoader := gojsonschema.NewStringLoader(content)

	validation, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, &core.ClassificationError{Message: "model output is not valid JSON", Err: err}
	}
	if !validation.Valid() {
		var issues []string
		for _, desc := range validation.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, &core.ClassificationError{
			Message: "model output failed schema validation: " + strings.Join(issues, "; "),
		}
	}

	var result core.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, &core.ClassificationError{Message: "failed to decode model output", Err: err}
	}
	return &result, nil
}

// stripCodeFence removes a markdown code fence if the model wrapped its
// JSON despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
