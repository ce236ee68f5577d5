package engine

import (
	"math"
	"sort"
	"time"

	"github.com/username/tradeguard/backend/src/models"
)

// AnomalyConfig tunes the suspicious-activity heuristics. The zero value is
// not usable; start from DefaultAnomalyConfig.
type AnomalyConfig struct {
	// VelocityLimit is the number of transactions tolerated inside one
	// rolling VelocityWindow before further ones are flagged.
	VelocityLimit  int
	VelocityWindow time.Duration

	// TradingHoursStart and TradingHoursEnd bound the normal trading day,
	// as local hours of day. A transaction executed before start or at or
	// after end is flagged off-hours.
	TradingHoursStart int
	TradingHoursEnd   int

	// SigmaThreshold is how many standard deviations above the trailing
	// mean transaction size a total must be to count as unusual. The
	// heuristic stays silent until MinSample transactions exist.
	SigmaThreshold float64
	MinSample      int
}

// DefaultAnomalyConfig returns the stock thresholds: 5 transactions per
// 60 seconds, 09:00-17:00 trading hours, 3 sigma on amounts with a minimum
// sample of 5.
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		VelocityLimit:     5,
		VelocityWindow:    60 * time.Second,
		TradingHoursStart: 9,
		TradingHoursEnd:   17,
		SigmaThreshold:    3,
		MinSample:         5,
	}
}

// AnomalyDetector scans a portfolio's transaction history for suspicious
// patterns. It is independent of the state machine and operates on whatever
// history snapshot the caller supplies.
type AnomalyDetector struct {
	cfg AnomalyConfig
}

func NewAnomalyDetector(cfg AnomalyConfig) *AnomalyDetector {
	def := DefaultAnomalyConfig()
	if cfg.VelocityLimit <= 0 {
		cfg.VelocityLimit = def.VelocityLimit
	}
	if cfg.VelocityWindow <= 0 {
		cfg.VelocityWindow = def.VelocityWindow
	}
	if cfg.TradingHoursEnd <= cfg.TradingHoursStart {
		cfg.TradingHoursStart = def.TradingHoursStart
		cfg.TradingHoursEnd = def.TradingHoursEnd
	}
	if cfg.SigmaThreshold <= 0 {
		cfg.SigmaThreshold = def.SigmaThreshold
	}
	if cfg.MinSample <= 0 {
		cfg.MinSample = def.MinSample
	}
	return &AnomalyDetector{cfg: cfg}
}

// Scan runs every heuristic over the history of one portfolio and returns
// the union of their flags in a SuspicionReport covering [from, to]. Each
// flag carries one reason code; a transaction tripping several heuristics
// appears once per reason. Empty or sub-minimum history produces a report
// with no flags, not an error.
func (d *AnomalyDetector) Scan(portfolioID string, history []models.Transaction, from, to time.Time) models.SuspicionReport {
	report := models.SuspicionReport{PortfolioID: portfolioID, From: from, To: to}
	if len(history) == 0 {
		return report
	}

	ordered := make([]models.Transaction, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExecutedAt.Before(ordered[j].ExecutedAt)
	})

	report.Flags = append(report.Flags, d.velocityFlags(ordered)...)
	report.Flags = append(report.Flags, d.offHoursFlags(ordered)...)
	report.Flags = append(report.Flags, d.unusualAmountFlags(ordered)...)
	return report
}

// velocityFlags slides a window over the time-ordered history and flags
// every transaction that pushes the rolling count past the limit. The first
// VelocityLimit transactions of a burst stay clean; the overflow is flagged.
func (d *AnomalyDetector) velocityFlags(ordered []models.Transaction) []models.AnomalyFlag {
	var flags []models.AnomalyFlag
	left := 0
	for i, tx := range ordered {
		for tx.ExecutedAt.Sub(ordered[left].ExecutedAt) >= d.cfg.VelocityWindow {
			left++
		}
		count := i - left + 1
		if count > d.cfg.VelocityLimit {
			severity := float64(count-d.cfg.VelocityLimit) / float64(d.cfg.VelocityLimit)
			flags = append(flags, models.AnomalyFlag{
				TransactionID: tx.ID,
				Reason:        models.ReasonVelocity,
				Severity:      severity,
			})
		}
	}
	return flags
}

// offHoursFlags marks transactions executed outside the configured trading
// hours. Severity is the distance in whole hours from the nearest boundary,
// normalized by the width of the trading day.
func (d *AnomalyDetector) offHoursFlags(ordered []models.Transaction) []models.AnomalyFlag {
	var flags []models.AnomalyFlag
	width := float64(d.cfg.TradingHoursEnd - d.cfg.TradingHoursStart)
	for _, tx := range ordered {
		hour := tx.ExecutedAt.Hour()
		if hour >= d.cfg.TradingHoursStart && hour < d.cfg.TradingHoursEnd {
			continue
		}
		var distance float64
		if hour < d.cfg.TradingHoursStart {
			distance = float64(d.cfg.TradingHoursStart - hour)
		} else {
			distance = float64(hour - d.cfg.TradingHoursEnd + 1)
		}
		flags = append(flags, models.AnomalyFlag{
			TransactionID: tx.ID,
			Reason:        models.ReasonOffHours,
			Severity:      math.Max(0, distance/width),
		})
	}
	return flags
}

// unusualAmountFlags compares every total against the trailing mean over the
// supplied history and flags totals more than SigmaThreshold standard
// deviations above it. With fewer than MinSample transactions the heuristic
// stays silent to avoid false positives on sparse history.
func (d *AnomalyDetector) unusualAmountFlags(ordered []models.Transaction) []models.AnomalyFlag {
	if len(ordered) < d.cfg.MinSample {
		return nil
	}

	var sum float64
	for _, tx := range ordered {
		sum += tx.Total
	}
	mean := sum / float64(len(ordered))

	var variance float64
	for _, tx := range ordered {
		delta := tx.Total - mean
		variance += delta * delta
	}
	stddev := math.Sqrt(variance / float64(len(ordered)))

	threshold := mean + d.cfg.SigmaThreshold*stddev
	if threshold <= 0 {
		return nil
	}

	var flags []models.AnomalyFlag
	for _, tx := range ordered {
		if tx.Total <= threshold {
			continue
		}
		flags = append(flags, models.AnomalyFlag{
			TransactionID: tx.ID,
			Reason:        models.ReasonUnusualAmount,
			Severity:      math.Max(0, (tx.Total-threshold)/threshold),
		})
	}
	return flags
}
