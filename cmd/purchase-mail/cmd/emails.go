package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"purchase-tracking/internal/config"
	"purchase-tracking/internal/database"
)

var emailsLimit int

var emailsCmd = &cobra.Command{
	Use:   "emails",
	Short: "List stored parse results",
	RunE:  runEmails,
}

func init() {
	emailsCmd.Flags().IntVarP(&emailsLimit, "limit", "n", 50, "Maximum number of emails to show")
	rootCmd.AddCommand(emailsCmd)
}

func runEmails(cmd *cobra.Command, args []string) error {
	formatter := newFormatter()

	cfg, err := config.LoadEmailConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.Open(cfg.Processing.StateDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	emails, err := db.Emails.List(emailsLimit)
	if err != nil {
		return fmt.Errorf("failed to list emails: %w", err)
	}
	return formatter.PrintEmails(emails)
}
