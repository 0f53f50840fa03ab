package core

import "time"

// ReportStatus tracks report generation progress
type ReportStatus string

const (
	ReportGenerating ReportStatus = "GENERATING"
	ReportReady      ReportStatus = "READY"
)

// ReportConfig is one generated narrative report
type ReportConfig struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        string       `json:"type"`
	GeneratedAt time.Time    `json:"generated_at"`
	Status      ReportStatus `json:"status"`
	Summary     string       `json:"summary,omitempty"`
}
