package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"purchase-tracking/internal/database"
	"purchase-tracking/internal/email"
)

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format string
	quiet  bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(format string, quiet bool) *OutputFormatter {
	return &OutputFormatter{
		format: format,
		quiet:  quiet,
	}
}

// PrintParseResult prints one parse outcome
func (f *OutputFormatter) PrintParseResult(result *email.ParseResult) error {
	if f.quiet {
		fmt.Println(result.RetailerName)
		return nil
	}

	switch f.format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "table":
		return f.printResultTable(result)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintEmails prints a list of stored emails
func (f *OutputFormatter) PrintEmails(emails []database.ProcessedEmail) error {
	if f.quiet {
		for _, entry := range emails {
			fmt.Printf("%d\n", entry.ID)
		}
		return nil
	}

	switch f.format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(emails)
	case "table":
		return f.printEmailsTable(emails)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Printf("✓ %s\n", message)
	}
}

// PrintError prints an error message
func (f *OutputFormatter) PrintError(err error) {
	if !f.quiet {
		fmt.Fprintf(os.Stderr, "✗ Error: %v\n", err)
	}
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Printf("ℹ %s\n", message)
	}
}

// printResultTable prints a parse result in readable field-per-line form
func (f *OutputFormatter) printResultTable(result *email.ParseResult) error {
	if result.IsEmpty() {
		fmt.Println("No purchase data found.")
		return nil
	}

	if result.RetailerName != "" {
		fmt.Printf("Retailer: %s\n", result.RetailerName)
	}
	if result.OrderReference != "" {
		fmt.Printf("Order Reference: %s\n", result.OrderReference)
	}
	if result.DeliveryInfo != nil {
		fmt.Printf("Estimated Delivery: %s (confidence %.1f, %s)\n",
			result.DeliveryInfo.EstimatedDelivery.Format("2006-01-02"),
			result.DeliveryInfo.Confidence,
			result.DeliveryInfo.Source)
		if result.DeliveryInfo.ShippingMethod != "" {
			fmt.Printf("Shipping Method: %s\n", result.DeliveryInfo.ShippingMethod)
		}
	}

	if len(result.TrackingURLs) > 0 {
		fmt.Println("\nTracking:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  CARRIER\tNUMBER\tURL")
		for _, link := range result.TrackingURLs {
			fmt.Fprintf(w, "  %s\t%s\t%s\n",
				strings.ToUpper(link.Carrier),
				link.TrackingNumber,
				truncate(link.URL, 60))
		}
		w.Flush()
	}

	if len(result.ProductDescriptions) > 0 {
		fmt.Println("\nProducts:")
		for _, desc := range result.ProductDescriptions {
			fmt.Printf("  - %s\n", desc)
		}
	}

	if len(result.ProductURLs) > 0 {
		fmt.Println("\nProduct URLs:")
		for _, pu := range result.ProductURLs {
			fmt.Printf("  - %s\n", truncate(pu.URL, 80))
		}
	}

	return nil
}

// printEmailsTable prints stored emails in table format
func (f *OutputFormatter) printEmailsTable(emails []database.ProcessedEmail) error {
	if len(emails) == 0 {
		fmt.Println("No emails found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tFROM\tSUBJECT\tSTATUS\tDATE")
	for _, entry := range emails {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			entry.ID,
			truncate(entry.Sender, 30),
			truncate(entry.Subject, 40),
			entry.Status,
			entry.Date.Format("2006-01-02"))
	}

	return nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
