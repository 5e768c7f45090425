package workers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"purchase-tracking/internal/config"
	"purchase-tracking/internal/database"
	"purchase-tracking/internal/email"
	"purchase-tracking/internal/parser"
)

// EmailProcessor periodically scans the inbox, parses new purchase
// emails, and records the outcomes.
type EmailProcessor struct {
	client email.EmailClient
	store  *database.EmailStore
	parser *parser.EmailParser
	search config.SearchConfig
	cfg    config.ProcessingConfig
	logger *slog.Logger
}

// RunStats summarizes one processing pass
type RunStats struct {
	Found     int
	Processed int
	Skipped   int
	Failed    int
}

// NewEmailProcessor creates a processor over the given client and store
func NewEmailProcessor(client email.EmailClient, store *database.EmailStore, emailParser *parser.EmailParser, search config.SearchConfig, cfg config.ProcessingConfig, logger *slog.Logger) *EmailProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailProcessor{
		client: client,
		store:  store,
		parser: emailParser,
		search: search,
		cfg:    cfg,
		logger: logger,
	}
}

// Run processes emails on the configured interval until the context is
// cancelled. One pass runs immediately on start.
func (p *EmailProcessor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.CheckInterval)
	defer ticker.Stop()

	if _, err := p.ProcessOnce(ctx); err != nil {
		p.logger.Error("processing pass failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.logger.Error("processing pass failed", "error", err)
			}
		}
	}
}

// ProcessOnce performs a single scan-parse-store pass. Failures on
// individual emails are recorded and do not abort the pass.
func (p *EmailProcessor) ProcessOnce(ctx context.Context) (*RunStats, error) {
	query := p.buildQuery()
	p.logger.Info("scanning for purchase emails", "query", query)

	messages, err := p.client.Search(query)
	if err != nil {
		return nil, fmt.Errorf("email search failed: %w", err)
	}

	stats := &RunStats{Found: len(messages)}
	for i := range messages {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if stats.Processed+stats.Failed >= p.cfg.MaxEmailsPerRun {
			p.logger.Info("per-run email limit reached", "limit", p.cfg.MaxEmailsPerRun)
			break
		}
		p.processEmail(&messages[i], stats)
	}

	p.logger.Info("processing pass complete",
		"found", stats.Found,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}

func (p *EmailProcessor) processEmail(msg *email.InboundEmail, stats *RunStats) {
	done, err := p.store.IsProcessed(msg.ID)
	if err != nil {
		p.logger.Error("failed to check processed state", "message_id", msg.ID, "error", err)
		stats.Failed++
		return
	}
	if done {
		stats.Skipped++
		return
	}

	result := p.parser.Parse(msg)

	if p.cfg.DryRun {
		p.logger.Info("dry run: would store parse result",
			"message_id", msg.ID,
			"from", msg.From,
			"retailer", result.RetailerName,
			"tracking_links", len(result.TrackingURLs),
			"products", len(result.ProductDescriptions))
		stats.Processed++
		return
	}

	status := database.StatusProcessed
	if result.IsEmpty() {
		status = database.StatusSkipped
	}

	if _, err := p.store.Save(msg, result, status, ""); err != nil {
		p.logger.Error("failed to store parse result", "message_id", msg.ID, "error", err)
		stats.Failed++
		return
	}

	p.logger.Debug("email processed",
		"message_id", msg.ID,
		"status", status,
		"retailer", result.RetailerName)
	stats.Processed++
}

// buildQuery assembles the provider search query from the configured
// base query plus date and unread filters.
func (p *EmailProcessor) buildQuery() string {
	parts := []string{}
	if p.search.Query != "" {
		parts = append(parts, p.search.Query)
	} else {
		parts = append(parts, `(subject:order OR subject:shipped OR subject:delivery OR subject:dispatched)`)
	}
	if p.search.AfterDays > 0 {
		after := time.Now().AddDate(0, 0, -p.search.AfterDays)
		parts = append(parts, fmt.Sprintf("after:%s", after.Format("2006/01/02")))
	}
	if p.search.UnreadOnly {
		parts = append(parts, "is:unread")
	}
	return strings.Join(parts, " ")
}
