package service

import (
	"context"

	"argus/core"
	"argus/storage"

	"go.uber.org/zap"
)

// AlertService manages the lifecycle of triggered alerts. Status moves
// forward only; the state machine in core rejects anything else before a
// write is attempted.
type AlertService struct {
	alerts storage.AlertStorageInterface
	logger *zap.SugaredLogger
}

// NewAlertService creates an alert service
func NewAlertService(alerts storage.AlertStorageInterface, logger *zap.SugaredLogger) *AlertService {
	if alerts == nil {
		panic("alert storage is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &AlertService{alerts: alerts, logger: logger}
}

// GetAlerts returns all triggered alerts, newest first
func (s *AlertService) GetAlerts(ctx context.Context) ([]core.TriggeredAlert, error) {
	return s.alerts.GetAlerts(ctx)
}

// UpdateAlertStatus validates and persists a status transition. The
// transition is checked against the stored alert, not the caller's copy, so
// a stale client can't skip states.
func (s *AlertService) UpdateAlertStatus(ctx context.Context, id string, status core.AlertStatus) (*core.TriggeredAlert, error) {
	alert, err := s.alerts.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := alert.TransitionTo(status); err != nil {
		return nil, &core.ValidationError{Field: "status", Message: err.Error()}
	}

	if err := s.alerts.UpdateAlertStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Infow("Alert status updated", "alert_id", id, "status", status)
	return alert, nil
}
