package services

import (
	"context"
	"fmt"
	"time"

	"github.com/username/tradeguard/backend/src/engine"
	"github.com/username/tradeguard/backend/src/logger"
	"github.com/username/tradeguard/backend/src/models"
	"github.com/username/tradeguard/backend/src/repository"
)

type anomalyServiceImpl struct {
	repo     repository.TransactionRepository
	detector *engine.AnomalyDetector
	notifier Notifier
}

func NewAnomalyService(repo repository.TransactionRepository, detector *engine.AnomalyDetector, notifier Notifier) AnomalyService {
	return &anomalyServiceImpl{repo: repo, detector: detector, notifier: notifier}
}

func (s *anomalyServiceImpl) ScanPortfolio(ctx context.Context, portfolioID string, from, to time.Time) (models.SuspicionReport, error) {
	history, err := s.repo.ListByPortfolio(ctx, portfolioID, from, to)
	if err != nil {
		return models.SuspicionReport{}, fmt.Errorf("loading history for scan of %s: %w", portfolioID, err)
	}

	report := s.detector.Scan(portfolioID, history, from, to)
	logger.L.Info("Anomaly scan finished",
		"portfolioID", portfolioID,
		"transactions", len(history),
		"flags", len(report.Flags),
	)

	if len(report.Flags) > 0 && s.notifier != nil {
		// Notification failure must not fail the scan; the report is still
		// returned to the caller.
		if err := s.notifier.NotifySuspicion(ctx, report); err != nil {
			logger.L.Error("Failed to deliver suspicion report", "portfolioID", portfolioID, "error", err)
		}
	}
	return report, nil
}
