package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/username/tradeguard/backend/src/config"
	"github.com/username/tradeguard/backend/src/logger"
	"github.com/username/tradeguard/backend/src/models"
)

// NewNotifier selects the suspicion-report sink from configuration.
// Providers: "mailgun" (email to the alert recipient), "log" (structured
// log only). Anything else, or incomplete mailgun settings, falls back to
// the log notifier so a scan never goes unrecorded.
func NewNotifier() Notifier {
	if config.Cfg == nil {
		logger.L.Warn("Configuration not loaded; defaulting to log notifier")
		return &LogNotifier{}
	}

	provider := strings.ToLower(config.Cfg.NotifierProvider)
	logger.L.Info("Initializing suspicion notifier", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunAPIKey == "" || config.Cfg.AlertRecipient == "" {
			logger.L.Warn("Mailgun configuration incomplete (domain, API key or recipient missing). Falling back to log notifier.")
			return &LogNotifier{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunNotifier{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
			recipient:   config.Cfg.AlertRecipient,
		}
	default:
		return &LogNotifier{}
	}
}

// MailgunNotifier emails each suspicion report to a fixed alert recipient.
type MailgunNotifier struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
	recipient   string
}

func (n *MailgunNotifier) NotifySuspicion(ctx context.Context, report models.SuspicionReport) error {
	from := fmt.Sprintf("%s <%s>", n.senderName, n.senderEmail)
	subject := fmt.Sprintf("Suspicious activity on portfolio %s (%d flags)", report.PortfolioID, len(report.Flags))

	var body strings.Builder
	fmt.Fprintf(&body, "Portfolio %s, window %s to %s:\n\n",
		report.PortfolioID,
		report.From.Format(time.RFC3339),
		report.To.Format(time.RFC3339),
	)
	for _, flag := range report.Flags {
		fmt.Fprintf(&body, "- transaction %s: %s (severity %.2f)\n", flag.TransactionID, flag.Reason, flag.Severity)
	}

	message := n.mg.NewMessage(from, subject, body.String(), n.recipient)
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, _, err := n.mg.Send(sendCtx, message)
	if err != nil {
		return fmt.Errorf("sending suspicion report via mailgun: %w", err)
	}
	logger.L.Info("Suspicion report emailed", "portfolioID", report.PortfolioID, "recipient", n.recipient)
	return nil
}

// LogNotifier writes suspicion reports to the structured log. It is the
// default sink and the fallback when mailgun is misconfigured.
type LogNotifier struct{}

func (n *LogNotifier) NotifySuspicion(_ context.Context, report models.SuspicionReport) error {
	for _, flag := range report.Flags {
		logger.L.Warn("Suspicious transaction flagged",
			"portfolioID", report.PortfolioID,
			"transactionID", flag.TransactionID,
			"reason", flag.Reason,
			"severity", flag.Severity,
		)
	}
	return nil
}

// MockNotifier records reports for tests.
type MockNotifier struct {
	mu      sync.Mutex
	Reports []models.SuspicionReport
}

func (n *MockNotifier) NotifySuspicion(_ context.Context, report models.SuspicionReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Reports = append(n.Reports, report)
	return nil
}
