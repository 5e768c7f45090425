package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"purchase-tracking/internal/delivery"
	"purchase-tracking/internal/email"
	"purchase-tracking/internal/parser"
)

var (
	parseSubject      string
	parseFrom         string
	parseDate         string
	parseHTMLFile     string
	parseShippingPath string
)

var parseCmd = &cobra.Command{
	Use:   "parse [text-file]",
	Short: "Parse a single email from a file or stdin",
	Long: `Parse extracts purchase data from one email. The positional
argument is a plain-text body file; use --html for an HTML body. With no
argument the plain-text body is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseSubject, "subject", "s", "", "Email subject line")
	parseCmd.Flags().StringVar(&parseFrom, "from", "", "Sender address")
	parseCmd.Flags().StringVar(&parseDate, "date", "", "Email date (YYYY-MM-DD, defaults to today)")
	parseCmd.Flags().StringVar(&parseHTMLFile, "html", "", "Path to HTML body file")
	parseCmd.Flags().StringVar(&parseShippingPath, "shipping-config", "", "Path to shipping methods config")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	formatter := newFormatter()

	msg := &email.InboundEmail{
		From:    parseFrom,
		Subject: parseSubject,
		Date:    time.Now(),
	}

	if parseDate != "" {
		parsed, err := time.Parse("2006-01-02", parseDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", parseDate, err)
		}
		msg.Date = parsed
	}

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read body file: %w", err)
		}
		msg.BodyText = string(data)
	} else if parseHTMLFile == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		msg.BodyText = string(data)
	}

	if parseHTMLFile != "" {
		data, err := os.ReadFile(parseHTMLFile)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}
		msg.BodyHTML = string(data)
	}

	if msg.BodyText == "" && msg.BodyHTML == "" && msg.Subject == "" {
		return fmt.Errorf("no email content provided")
	}

	emailParser, err := buildParser(parseShippingPath)
	if err != nil {
		return err
	}

	result := emailParser.Parse(msg)
	return formatter.PrintParseResult(result)
}

// buildParser constructs an email parser with the configured shipping
// methods, falling back to the built-in defaults.
func buildParser(shippingPath string) (*parser.EmailParser, error) {
	shippingConfig, err := delivery.LoadShippingConfig(shippingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping config: %w", err)
	}
	if shippingConfig == nil {
		shippingConfig = delivery.DefaultShippingConfig()
	}

	deliveryExtractor, err := delivery.NewExtractor(shippingConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build delivery extractor: %w", err)
	}

	logLevel := slog.LevelWarn
	if !quiet {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	return parser.NewEmailParser(parser.NewPatternTable(), deliveryExtractor, logger), nil
}
