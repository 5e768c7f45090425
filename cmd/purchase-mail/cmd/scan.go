package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"purchase-tracking/internal/config"
	"purchase-tracking/internal/database"
	"purchase-tracking/internal/email"
	"purchase-tracking/internal/workers"
)

var (
	scanWatch  bool
	scanDryRun bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a Gmail inbox for purchase emails",
	Long: `Scan searches the configured Gmail account for purchase emails,
parses each new message, and stores the results. By default it runs one
pass and exits; with --watch it keeps scanning on the configured interval.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Keep scanning on the configured interval")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "Parse emails without storing results")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	formatter := newFormatter()

	cfg, err := config.LoadEmailConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if scanDryRun {
		cfg.Processing.DryRun = true
	}

	if cfg.Gmail.ClientID == "" || cfg.Gmail.RefreshToken == "" {
		return fmt.Errorf("gmail credentials not configured (set PURCHASE_TRACKER_GMAIL_CLIENT_ID etc.)")
	}

	client, err := email.NewGmailClient(&email.GmailConfig{
		ClientID:       cfg.Gmail.ClientID,
		ClientSecret:   cfg.Gmail.ClientSecret,
		RefreshToken:   cfg.Gmail.RefreshToken,
		AccessToken:    cfg.Gmail.AccessToken,
		UserEmail:      cfg.Gmail.UserEmail,
		MaxResults:     cfg.Gmail.MaxResults,
		RequestTimeout: cfg.Gmail.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gmail client: %w", err)
	}
	defer client.Close()

	db, err := database.Open(cfg.Processing.StateDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	emailParser, err := buildParser(cfg.Processing.ShippingConfigPath)
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	processor := workers.NewEmailProcessor(client, db.Emails, emailParser, cfg.Search, cfg.Processing, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if scanWatch {
		formatter.PrintInfo(fmt.Sprintf("Watching inbox every %s", cfg.Processing.CheckInterval))
		err := processor.Run(ctx)
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	}

	stats, err := processor.ProcessOnce(ctx)
	if err != nil {
		return err
	}
	formatter.PrintSuccess(fmt.Sprintf("Found %d emails: %d processed, %d skipped, %d failed",
		stats.Found, stats.Processed, stats.Skipped, stats.Failed))
	return nil
}
