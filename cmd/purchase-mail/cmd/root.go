package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	cliapi "purchase-tracking/internal/cli"
)

var (
	configFile string
	format     string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "purchase-mail",
	Short: "Extract purchase data from e-commerce emails",
	Long: `Purchase Mail parses order confirmation and shipping emails and
extracts tracking links, order references, product details, and estimated
delivery dates. It can parse a single email from a file or scan a Gmail
inbox in batch.`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	fang.Execute(context.Background(), rootCmd)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", defaultFormat(), "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (minimal output)")
}

// defaultFormat picks table output for interactive terminals and JSON
// when output is piped.
func defaultFormat() string {
	if val := os.Getenv("PURCHASE_TRACKER_FORMAT"); val != "" {
		return val
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}

func newFormatter() *cliapi.OutputFormatter {
	return cliapi.NewOutputFormatter(format, quiet)
}
