package notify

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"argus/core"

	"go.uber.org/zap"
)

// ChannelType represents the kind of notification channel
type ChannelType string

const (
	ChannelWebhook ChannelType = "webhook"
	ChannelSlack   ChannelType = "slack"
)

// ChannelConfig holds configuration for one action channel. Rules reference
// channels by ID through their actionChannels list.
type ChannelConfig struct {
	ID          string      `json:"id" mapstructure:"id"`
	Type        ChannelType `json:"type" mapstructure:"type"`
	URL         string      `json:"url" mapstructure:"url"`
	MinSeverity string      `json:"min_severity" mapstructure:"min_severity"`
}

// Notifier delivers triggered alerts to action channels. Delivery is
// best-effort and informational: failures are logged, never propagated into
// rule evaluation.
type Notifier struct {
	channels map[string]ChannelConfig
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewNotifier creates a notifier over the configured channels
func NewNotifier(channels []ChannelConfig, logger *zap.SugaredLogger) *Notifier {
	byID := make(map[string]ChannelConfig, len(channels))
	for _, ch := range channels {
		byID[ch.ID] = ch
	}
	return &Notifier{
		channels: byID,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		logger: logger,
	}
}

var severityOrder = map[core.Severity]int{
	core.SeverityLow:      1,
	core.SeverityMedium:   2,
	core.SeverityHigh:     3,
	core.SeverityCritical: 4,
}

// NotifyAlert sends one alert to each referenced channel that passes the
// channel's severity floor. Unknown channel IDs are skipped.
func (n *Notifier) NotifyAlert(alert *core.TriggeredAlert, channelIDs []string) {
	for _, id := range channelIDs {
		ch, ok := n.channels[id]
		if !ok {
			n.logger.Debugw("Alert references unconfigured channel", "channel", id, "alert_id", alert.ID)
			continue
		}

		if ch.MinSeverity != "" {
			min := severityOrder[core.Severity(ch.MinSeverity)]
			if severityOrder[alert.Severity] < min {
				continue
			}
		}

		var err error
		switch ch.Type {
		case ChannelSlack:
			err = n.sendSlack(ch, alert)
		case ChannelWebhook:
			err = n.sendWebhook(ch, alert)
		default:
			n.logger.Warnw("Unknown channel type", "channel", id, "type", ch.Type)
			continue
		}

		if err != nil {
			n.logger.Errorw("Failed to deliver alert notification",
				"channel", id, "alert_id", alert.ID, "error", err)
		}
	}
}

func (n *Notifier) sendWebhook(ch ChannelConfig, alert *core.TriggeredAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	resp, err := n.client.Post(ch.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) sendSlack(ch ChannelConfig, alert *core.TriggeredAlert) error {
	message := map[string]interface{}{
		"text": fmt.Sprintf("*[%s]* %s\nIndicator: `%s`\n%s",
			alert.Severity, alert.RuleName, alert.IOC, alert.Details),
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode Slack message: %w", err)
	}

	resp, err := n.client.Post(ch.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}
